package main

import (
	"context"
	"strings"
	"time"

	"inkwell/cmd/server/handlers"
	aiHandlers "inkwell/cmd/server/handlers/ai"
	"inkwell/cmd/server/handlers/auth"
	"inkwell/cmd/server/handlers/httperr"
	notesHandlers "inkwell/cmd/server/handlers/notes"
	"inkwell/cmd/server/middlewares"
	"inkwell/internal/clients/completions"
	"inkwell/internal/clients/mongo"
	"inkwell/internal/clients/ocr"
	"inkwell/internal/config"
	"inkwell/internal/logger"
	aiServices "inkwell/internal/services/ai"
	authServices "inkwell/internal/services/auth"
	notesServices "inkwell/internal/services/notes"
	"inkwell/internal/utils/crypto"

	_ "inkwell/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) *fiber.App {

	// Initialize validator and register password validation
	v := validator.New()
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		logger.L().Error("failed to register password validator", "err", err)
		panic(err)
	}

	// Validate JWT algorithm at boot
	alg := strings.ToUpper(cfg.JWTAlgorithm)
	switch alg {
	case "HS256", "HS384", "HS512":
		// Valid algorithm
	default:
		logger.L().Error("unsupported JWT algorithm", "algorithm", cfg.JWTAlgorithm)
		panic("unsupported JWT algorithm: " + cfg.JWTAlgorithm)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	hub := notesServices.NewHub(cfg.WSOutboxBuffer)

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, hub)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	app.Static("/", "./web-ui", fiber.Static{
		Browse: false,
		Index:  "index.html",
	})

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)

	// Auth routes
	usersRepo := mongo.NewUsersRepo(mongo.DB())
	authSvc := authServices.NewService(usersRepo, cfg, logger.L())
	authHandlers := auth.NewHandlers(authSvc, v)

	authGrp := v1.Group("/auth", middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration))
	authGrp.Post("/sign-up", authHandlers.SignUp)
	authGrp.Post("/sign-in", authHandlers.SignIn)

	// Notes routes
	notesRepo, err := mongo.NewNotesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(notesServices.ErrCreateNotesRepo.Error(), "error", err)
		panic(err)
	}
	box := crypto.NewBox(crypto.NewStaticKeyProvider(cfg.NotesCipherSecret))
	notesSvc := notesServices.NewService(notesRepo, hub, box, logger.L())
	notesH := notesHandlers.NewHandlers(notesSvc, v)

	notesGrp := v1.Group("/notes", jwtMiddleware)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Put("/reorder", notesH.Reorder)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)

	// Shared notes are readable without auth
	v1.Get("/public/notes/:public_id", notesH.GetPublic)

	// AI routes
	completer := completions.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	recognizer := ocr.NewClient(cfg.OCRBaseURL)
	aiSvc := aiServices.NewService(completer, recognizer, cfg.OCRLang, logger.L())
	aiH := aiHandlers.NewHandlers(aiSvc, v)

	aiGrp := v1.Group("/ai", jwtMiddleware, middlewares.BuildRateLimiter(cfg.AIRatePerMin, RateLimitExpiration))
	aiGrp.Post("/summarize", aiH.Summarize)
	aiGrp.Post("/fix-grammar", aiH.FixGrammar)
	aiGrp.Post("/transcribe", aiH.Transcribe)

	// WebSocket routes
	wsHandlers := notesHandlers.NewWebSocketHandlers(hub, cfg.JWTSecret, cfg.WSMaxSessionSec)
	app.Use("/ws", notesHandlers.LogWSConnections(cfg.JWTSecret))
	app.Get("/ws/notes/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	// User profile endpoint (for testing JWT middleware and for future use)
	v1.Get("/me", jwtMiddleware, handlers.Me)

	return app
}
