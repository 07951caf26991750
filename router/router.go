package router

import (
	"go-todo-api/handler"
	"go-todo-api/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Options holds the router settings taken from config.
type Options struct {
	AllowedOrigins []string
	Swagger        bool
}

func NewRouter(opts Options, guard *handler.AccessGuard, userHandler *handler.UserHandler, todoHandler *handler.TodoHandler) *chi.Mux {
	r := chi.NewRouter()

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.HealthCheck)
	r.Get("/health-check", handler.HealthCheck)

	if opts.Swagger {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Post("/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	r.Post("/login", handler.ErrorHandlingMiddleware(userHandler.Login))

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware)

		r.Post("/logout", handler.ErrorHandlingMiddleware(userHandler.Logout))
		r.Get("/me", handler.ErrorHandlingMiddleware(userHandler.Me))
		r.Get("/users", handler.ErrorHandlingMiddleware(userHandler.ListUsers))
		r.Get("/user", handler.ErrorHandlingMiddleware(userHandler.ListUsers))
		r.Get("/protected", handler.ErrorHandlingMiddleware(userHandler.Protected))

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", handler.ErrorHandlingMiddleware(todoHandler.ListTodos))
			r.Post("/", handler.ErrorHandlingMiddleware(todoHandler.CreateTodo))
			r.Put("/{id}", handler.ErrorHandlingMiddleware(todoHandler.UpdateTodo))
			r.Delete("/{id}", handler.ErrorHandlingMiddleware(todoHandler.DeleteTodo))
		})
	})

	return r
}
