// Package docs Inkwell API
//
// @title  Inkwell API
// @version 0.1.0
// @description Personal notes with sharing, encryption and AI text transforms.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "inkwell/cmd/server/handlers/httperr"
	_ "inkwell/internal/services/auth"
	_ "inkwell/internal/services/notes"
)
