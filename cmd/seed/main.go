package main

import (
	"context"
	"errors"
	"log"
	"os"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/repository"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"
	"expense-tracker/pkg/logger"
	"expense-tracker/pkg/postgres"

	"go.uber.org/zap"
)

type seedCategory struct {
	name  string
	typ   models.CategoryType
	color string
}

var defaultCategories = []seedCategory{
	{"Groceries", models.CategoryTypeExpense, "#4CAF50"},
	{"Transport", models.CategoryTypeExpense, "#2196F3"},
	{"Utilities", models.CategoryTypeExpense, "#FF9800"},
	{"Salary", models.CategoryTypeIncome, "#9C27B0"},
	{"Other", models.CategoryTypeBoth, "#9E9E9E"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if cfg.JWT.IsDefaultSecret() {
		appLogger.Warn("JWT_SECRET_KEY is not set, using the built-in development secret")
	}

	ctx := context.Background()
	if err := postgres.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiration)
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	workspaceService := service.NewWorkspaceService(
		repository.NewWorkspaceRepository(db, appLogger),
		repository.NewInviteRepository(db, appLogger),
		appLogger,
	)
	categoryService := service.NewCategoryService(repository.NewCategoryRepository(db, appLogger), appLogger)

	appLogger.Info("Starting database seeding...")

	email := getEnv("SEED_EMAIL", "demo@example.com")
	_, err = authService.Register(ctx, &dto.RegisterRequest{
		Email:    email,
		FullName: getEnv("SEED_FULL_NAME", "Demo User"),
		Password: getEnv("SEED_PASSWORD", "Demo#2024"),
	})
	switch {
	case err == nil:
		appLogger.Info("Demo user created", zap.String("email", email))
	case errors.Is(err, service.ErrUserExists):
		appLogger.Info("Demo user already exists", zap.String("email", email))
	default:
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		appLogger.Fatal("Failed to load demo user", zap.Error(err))
	}

	workspaceID, err := workspaceService.GetOrCreatePersonalWorkspace(ctx, user.ID)
	if err != nil {
		appLogger.Fatal("Failed to ensure personal workspace", zap.Error(err))
	}

	created := 0
	for _, sc := range defaultCategories {
		color := sc.color
		_, err := categoryService.Create(ctx, user.ID, workspaceID, &dto.CategoryRequest{
			Name:  sc.name,
			Type:  int(sc.typ),
			Color: &color,
		})
		if errors.Is(err, service.ErrCategoryNameTaken) {
			appLogger.Debug("Category already exists, skipping", zap.String("name", sc.name))
			continue
		}
		if err != nil {
			appLogger.Fatal("Failed to create category", zap.String("name", sc.name), zap.Error(err))
		}
		created++
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("workspace_id", workspaceID.String()),
		zap.Int("categories_created", created),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
