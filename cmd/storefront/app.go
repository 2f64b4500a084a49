package main

import (
	"context"
	"fmt"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/jmoiron/sqlx"
)

type repositories struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	cart       domain.CartRepository
	orders     domain.OrderRepository
	profiles   domain.ProfileRepository
	auth       domain.AuthRepository
}

type useCases struct {
	auth       usecase.AuthUseCase
	products   usecase.ProductUseCase
	categories usecase.CategoryUseCase
	orders     usecase.OrderUseCase
	profiles   usecase.ProfileUseCase
}

func connectDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	logger.Infof("Connecting to database (driver %s)...", cfg.DBDriver)
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{
		Driver:          cfg.DBDriver,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established successfully.")
	return conn, nil
}

func closeDB(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Errorf("Error closing database connection: %v", err)
	} else {
		logger.Info("Database connection closed.")
	}
}

func newRepositories(conn *sqlx.DB) repositories {
	return repositories{
		products:   repository.NewPostgresProductRepository(conn, logger),
		categories: repository.NewPostgresCategoryRepository(conn, logger),
		cart:       repository.NewPostgresCartRepository(conn, logger),
		orders:     repository.NewPostgresOrderRepository(conn, logger),
		profiles:   repository.NewPostgresProfileRepository(conn, logger),
		auth:       repository.NewPostgresAuthRepository(conn, logger),
	}
}

func newUseCases(cfg *config.Config, repos repositories) useCases {
	size := cfg.DefaultPageSize
	return useCases{
		auth: usecase.NewAuthUseCase(repos.auth, repos.profiles, auth.NewTokenIssuer(cfg.JWTSecret),
			cfg.SessionTTL, cfg.AdminUsersEnabled(), logger),
		products:   usecase.NewProductUseCase(repos.products, repos.categories, size, logger),
		categories: usecase.NewCategoryUseCase(repos.categories, repos.products, size, logger),
		orders:     usecase.NewOrderUseCase(repos.orders, size, logger),
		profiles:   usecase.NewProfileUseCase(repos.profiles, size, logger),
	}
}
