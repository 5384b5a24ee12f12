package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expense-tracker/internal/api"
	"expense-tracker/internal/api/handlers"
	"expense-tracker/internal/repository"
	"expense-tracker/internal/repository/memory"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"
	"expense-tracker/pkg/logger"
	"expense-tracker/pkg/postgres"

	"go.uber.org/zap"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal and family expense tracking with shared workspaces and AI-assisted entry.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

type stores struct {
	users        service.UserStore
	workspaces   service.WorkspaceStore
	invites      service.InviteStore
	categories   service.CategoryStore
	transactions service.TransactionStore
	reports      service.ReportStore
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()

	if cfg.JWT.IsDefaultSecret() {
		appLogger.Warn("JWT_SECRET_KEY is not set, using the built-in development secret")
	}

	appLogger.Info("Starting expense tracker", zap.String("db_driver", cfg.Database.Driver))

	ctx := context.Background()
	st, err := openStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer st.close()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiration)

	var extractor service.Extractor = service.DisabledExtractor{}
	if cfg.GigaChat.Enabled() {
		gc, err := service.NewGigaChatExtractor(ctx, &cfg.GigaChat, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize GigaChat", zap.Error(err))
		}
		defer gc.Close()
		extractor = gc
	} else {
		appLogger.Warn("GIGACHAT_API_KEY is not set, AI endpoints will answer 503")
	}

	authService := service.NewAuthService(st.users, jwtManager, appLogger)
	workspaceService := service.NewWorkspaceService(st.workspaces, st.invites, appLogger)
	categoryService := service.NewCategoryService(st.categories, appLogger)
	transactionService := service.NewTransactionService(st.transactions, st.categories, appLogger)
	reportService := service.NewReportService(st.reports, service.NewChartRenderer(), appLogger)
	aiService := service.NewAITransactionService(extractor, categoryService, st.transactions, appLogger)

	app := api.SetupRouter(api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, appLogger),
		Workspace:   handlers.NewWorkspaceHandler(workspaceService, appLogger),
		Category:    handlers.NewCategoryHandler(categoryService, appLogger),
		Transaction: handlers.NewTransactionHandler(transactionService, appLogger),
		Report:      handlers.NewReportHandler(reportService, appLogger),
		AI:          handlers.NewAIHandler(aiService, appLogger),
	}, jwtManager, workspaceService, api.Options{
		Server:          cfg.Server,
		StrictWorkspace: cfg.Workspace.StrictHeader,
	}, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		appLogger.Warn("Using in-memory storage, data is lost on restart")
		m := memory.NewStore()
		return &stores{
			users:        m.Users(),
			workspaces:   m.Workspaces(),
			invites:      m.Invites(),
			categories:   m.Categories(),
			transactions: m.Transactions(),
			reports:      m.Reports(),
			close:        func() {},
		}, nil

	case config.DriverPostgres:
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(&cfg.Database, appLogger); err != nil {
				return nil, err
			}
		}
		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        repository.NewUserRepository(db, appLogger),
			workspaces:   repository.NewWorkspaceRepository(db, appLogger),
			invites:      repository.NewInviteRepository(db, appLogger),
			categories:   repository.NewCategoryRepository(db, appLogger),
			transactions: repository.NewTransactionRepository(db, appLogger),
			reports:      repository.NewReportRepository(db, appLogger),
			close:        db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
}
