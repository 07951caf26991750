// cmd/main.go
package main

import (
	"go-todo-api/app"
)

// @title           Go-Todo API
// @version         1.0
// @description     Multi-tenant todo API with token revocation on logout.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
