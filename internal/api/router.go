package api

import (
	"errors"

	"expense-tracker/docs"
	"expense-tracker/internal/api/handlers"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"
	"expense-tracker/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Workspace   *handlers.WorkspaceHandler
	Category    *handlers.CategoryHandler
	Transaction *handlers.TransactionHandler
	Report      *handlers.ReportHandler
	AI          *handlers.AIHandler
}

type Options struct {
	Server          config.ServerConfig
	StrictWorkspace bool
}

func SetupRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	workspaces middleware.WorkspaceResolver,
	opts Options,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    opts.Server.BodyLimit,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.Server.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.WorkspaceHeader,
	}))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/health", handlers.Health)

	// Auth routes (public except /me)
	authGroup := api.Group("/Authentication")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)

	requireAuth := middleware.AuthMiddleware(jwtManager, appLogger)
	authGroup.Get("/me", requireAuth, h.Auth.Me)

	// Workspace management works on explicit ids, no header resolution
	ws := api.Group("/workspaces", requireAuth)
	ws.Get("/me", h.Workspace.Me)
	ws.Post("/", h.Workspace.Create)
	ws.Get("/invites", h.Workspace.Invites)
	ws.Post("/accept", h.Workspace.Accept)
	ws.Post("/reject", h.Workspace.Reject)
	ws.Post("/:id/invite", h.Workspace.Invite)

	scoped := middleware.WorkspaceMiddleware(workspaces, opts.StrictWorkspace, appLogger)

	categories := api.Group("/categories", requireAuth, scoped)
	categories.Get("/", h.Category.List)
	categories.Post("/", h.Category.Create)
	categories.Get("/:id", h.Category.Get)
	categories.Put("/:id", h.Category.Update)
	categories.Delete("/:id", h.Category.Delete)

	transactions := api.Group("/transactions", requireAuth, scoped)
	transactions.Get("/", h.Transaction.List)
	transactions.Post("/", h.Transaction.Create)
	transactions.Get("/search", h.Transaction.Search)
	transactions.Get("/:id", h.Transaction.Get)
	transactions.Put("/:id", h.Transaction.Update)
	transactions.Delete("/:id", h.Transaction.Delete)

	reports := api.Group("/reports", requireAuth, scoped)
	reports.Get("/summary", h.Report.Summary)
	reports.Get("/by-category", h.Report.ByCategory)
	reports.Get("/by-category/chart", h.Report.ByCategoryChart)
	reports.Get("/recent", h.Report.Recent)

	ai := api.Group("/ai/transactions", requireAuth, scoped)
	ai.Post("/from-text", h.AI.FromText)
	ai.Post("/from-receipt", h.AI.FromReceipt)

	return app
}
