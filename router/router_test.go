// file: router/router_test.go

package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"go-todo-api/handler"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/router"
	"go-todo-api/service"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testRouter http.Handler

func TestMain(m *testing.M) {
	logger.Init("error")
	logger.Log.SetOutput(io.Discard)

	issuer := service.NewJWTIssuer("router-test-secret-0123456789abcdef", time.Hour)
	ledger := newMemLedger()
	creds := newMemCredentials()

	guard := handler.NewAccessGuard(issuer, ledger)
	userHandler := handler.NewUserHandler(creds, issuer, ledger, false)
	todoHandler := handler.NewTodoHandler(newMemTodos())

	testRouter = router.NewRouter(router.Options{AllowedOrigins: []string{"http://localhost:3000"}}, guard, userHandler, todoHandler)

	os.Exit(m.Run())
}

// --- In-memory collaborators ---

type memCredentials struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
}

func newMemCredentials() *memCredentials {
	return &memCredentials{users: make(map[string]*model.User)}
}

func (c *memCredentials) Register(_ context.Context, email, password, lastname, avatar string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	email = service.NormalizeEmail(email)
	if _, ok := c.users[email]; ok {
		return 0, service.ErrConflict
	}
	salt, err := service.GenerateSalt()
	if err != nil {
		return 0, err
	}
	hash, err := service.HashPassword(password, salt, bcrypt.MinCost)
	if err != nil {
		return 0, err
	}
	c.nextID++
	c.users[email] = &model.User{ID: c.nextID, Email: email, Salt: salt, PasswordHash: hash, Lastname: lastname, Avatar: avatar, IsActive: true}
	return c.nextID, nil
}

func (c *memCredentials) Verify(_ context.Context, email, password string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[service.NormalizeEmail(email)]
	if !ok {
		return 0, service.ErrUserNotFound
	}
	if !service.CheckPassword(password, u.Salt, u.PasswordHash) {
		return 0, service.ErrInvalidCredentials
	}
	return u.ID, nil
}

func (c *memCredentials) GetUser(_ context.Context, id int64) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, service.ErrUserNotFound
}

func (c *memCredentials) ListUsers(context.Context) ([]*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.User, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	return out, nil
}

type memLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemLedger() *memLedger { return &memLedger{revoked: make(map[string]time.Time)} }

func (l *memLedger) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.revoked[jti]; !ok {
		l.revoked[jti] = expiresAt
	}
	return nil
}

func (l *memLedger) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.revoked[jti]
	return ok, nil
}

type memTodos struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]*model.Todo
}

func newMemTodos() *memTodos { return &memTodos{todos: make(map[int64]*model.Todo)} }

func (m *memTodos) List(_ context.Context, userID int64) ([]*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Todo, 0)
	for _, td := range m.todos {
		if td.UserID == userID {
			out = append(out, td)
		}
	}
	return out, nil
}

func (m *memTodos) Create(_ context.Context, userID int64, label string, isDone bool) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	td := &model.Todo{ID: m.nextID, Label: label, IsDone: isDone, UserID: userID}
	m.todos[td.ID] = td
	return td, nil
}

func (m *memTodos) Update(_ context.Context, userID, id int64, label *string, isDone *bool) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	td, ok := m.todos[id]
	if !ok || td.UserID != userID {
		return nil, service.ErrTodoNotFound
	}
	if label != nil {
		td.Label = *label
	}
	if isDone != nil {
		td.IsDone = *isDone
	}
	return td, nil
}

func (m *memTodos) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	td, ok := m.todos[id]
	if !ok || td.UserID != userID {
		return service.ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}

// --- Test Helper Functions ---

func do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)
	return rr
}

func registerForTest(t *testing.T, email, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"lastname":"Tester"}`, email, password)
	rr := do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func loginForTest(t *testing.T, email, password string) string {
	t.Helper()
	rr := do(t, http.MethodPost, "/login", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Greater(t, resp.ExpiresAt, time.Now().Unix())
	return resp.Token
}

// --- Test Suites ---

func TestHealthCheck_Integration(t *testing.T) {
	for _, path := range []string{"/health", "/health-check"} {
		rr := do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())
	}
}

func TestLoginLogout_Integration(t *testing.T) {
	registerForTest(t, "a@x.io", "pw")
	token := loginForTest(t, "A@X.io", "pw")

	rr := do(t, http.MethodGet, "/protected", token, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, http.MethodPost, "/logout", token, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out"}`, rr.Body.String())

	rr = do(t, http.MethodGet, "/protected", token, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":401,"message":"Invalid or expired token"}`, rr.Body.String())

	rr = do(t, http.MethodPost, "/logout", token, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	fresh := loginForTest(t, "a@x.io", "pw")
	rr = do(t, http.MethodGet, "/protected", fresh, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginFailures_Integration(t *testing.T) {
	registerForTest(t, "b@x.io", "right")

	rr := do(t, http.MethodPost, "/login", "", `{"email":"b@x.io","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":401,"message":"Invalid credentials"}`, rr.Body.String())

	rr = do(t, http.MethodPost, "/login", "", `{"email":"ghost@x.io","password":"right"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterDuplicate_Integration(t *testing.T) {
	registerForTest(t, "dup@x.io", "pw")

	rr := do(t, http.MethodPost, "/register", "", `{"email":"DUP@x.io","password":"other","lastname":"Again"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"code":409,"message":"User already exists"}`, rr.Body.String())
}

func TestProtectedRoutesRejectBadTokens_Integration(t *testing.T) {
	rr := do(t, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":401,"message":"Authorization header is required"}`, rr.Body.String())

	rr = do(t, http.MethodGet, "/me", "not.a.jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"code":401,"message":"Invalid or expired token"}`, rr.Body.String())

	foreign := service.NewJWTIssuer("some-other-secret", time.Hour)
	issued, err := foreign.Issue(1)
	require.NoError(t, err)
	rr = do(t, http.MethodGet, "/todos", issued.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMeAndUsers_Integration(t *testing.T) {
	registerForTest(t, "me@x.io", "pw")
	token := loginForTest(t, "me@x.io", "pw")

	rr := do(t, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var me model.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "me@x.io", me.Email)
	assert.NotContains(t, rr.Body.String(), "salt")
	assert.NotContains(t, rr.Body.String(), "password")

	rr = do(t, http.MethodGet, "/users", token, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTodos_AreScopedToOwner_Integration(t *testing.T) {
	registerForTest(t, "owner@x.io", "pw")
	registerForTest(t, "other@x.io", "pw")
	owner := loginForTest(t, "owner@x.io", "pw")
	other := loginForTest(t, "other@x.io", "pw")

	rr := do(t, http.MethodPost, "/todos", owner, `{"label":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var todo model.Todo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &todo))

	path := fmt.Sprintf("/todos/%d", todo.ID)

	rr = do(t, http.MethodPut, path, other, `{"is_done":true}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, http.MethodDelete, path, other, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, http.MethodGet, "/todos", other, "")
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, http.MethodPut, path, owner, `{"is_done":true}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, http.MethodDelete, path, owner, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestSwaggerDisabledByDefault(t *testing.T) {
	rr := do(t, http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	testRouter.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterNormalizesPaddedEmail_Integration(t *testing.T) {
	rr := do(t, http.MethodPost, "/register", "", `{"email":"  Trim@X.io ","password":"pw","lastname":"Padded"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	loginForTest(t, "trim@x.io", "pw")
	loginForTest(t, " TRIM@x.io", "pw")
}

func TestLegacyUserListPath_Integration(t *testing.T) {
	registerForTest(t, "legacy@x.io", "pw")
	token := loginForTest(t, "legacy@x.io", "pw")

	rr := do(t, http.MethodGet, "/user", token, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"legacy@x.io"`)

	rr = do(t, http.MethodGet, "/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
