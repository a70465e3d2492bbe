package main

import (
	"context"
	"time"

	"note-keep/cmd/server/handlers"
	authHandlers "note-keep/cmd/server/handlers/auth"
	categoriesHandlers "note-keep/cmd/server/handlers/categories"
	"note-keep/cmd/server/handlers/httperr"
	notesHandlers "note-keep/cmd/server/handlers/notes"
	"note-keep/cmd/server/middlewares"
	"note-keep/internal/clients/mongo"
	"note-keep/internal/config"
	"note-keep/internal/logger"
	authServices "note-keep/internal/services/auth"
	categoriesServices "note-keep/internal/services/categories"
	notesServices "note-keep/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) *fiber.App {
	v := validator.New()

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

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside the versioned API so probes stay unlogged
	app.Get("/healthz", handlers.Healthz)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)
	limiterMW := middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration)

	// Repositories
	usersRepo := mongo.NewUsersRepo(mongo.DB())
	refreshTokensRepo := mongo.NewRefreshTokensRepo(mongo.DB())

	notesRepo, err := mongo.NewNotesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(notesServices.ErrCreateNotesRepo.Error(), "error", err)
		panic(err)
	}
	categoriesRepo, err := mongo.NewCategoriesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(categoriesServices.ErrCreateCategoriesRepo.Error(), "error", err)
		panic(err)
	}

	// Services. The notes repo doubles as the category store's note
	// maintainer (counts and unlink-on-delete).
	categoriesSvc := categoriesServices.NewService(categoriesRepo, notesRepo, logger.L())
	notesSvc := notesServices.NewService(notesRepo, categoriesRepo, logger.L())
	authSvc := authServices.NewService(usersRepo, refreshTokensRepo, categoriesSvc, cfg, logger.L())

	// Auth routes
	authH := authHandlers.NewHandlers(authSvc, v)
	authGrp := v1.Group("/auth", limiterMW)
	authGrp.Post("/sign-up", authH.SignUp)
	authGrp.Post("/sign-in", authH.SignIn)
	authGrp.Post("/refresh", authH.Refresh)
	authGrp.Post("/sign-out", jwtMiddleware, authH.SignOut)
	authGrp.Post("/sign-out-all", jwtMiddleware, authH.SignOutAll)

	// Notes routes. Literal paths are registered before /:id so "archived",
	// "pinned" and "stats" never parse as note ids.
	notesH := notesHandlers.NewHandlers(notesSvc, v)
	notesGrp := v1.Group("/notes", jwtMiddleware)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Get("/archived", notesH.ListArchived)
	notesGrp.Get("/pinned", notesH.ListPinned)
	notesGrp.Get("/stats", notesH.Stats)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Put("/:id", notesH.Update)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)
	notesGrp.Post("/:id/toggle-pin", notesH.TogglePin)
	notesGrp.Post("/:id/toggle-archive", notesH.ToggleArchive)

	// Categories routes
	categoriesH := categoriesHandlers.NewHandlers(categoriesSvc, v)
	categoriesGrp := v1.Group("/categories", jwtMiddleware)
	categoriesGrp.Post("/", categoriesH.Create)
	categoriesGrp.Get("/", categoriesH.List)
	categoriesGrp.Get("/:id", categoriesH.Get)
	categoriesGrp.Put("/:id", categoriesH.Update)
	categoriesGrp.Patch("/:id", categoriesH.Update)
	categoriesGrp.Delete("/:id", categoriesH.Delete)

	// User profile endpoint
	v1.Get("/me", jwtMiddleware, handlers.Me)

	return app
}
