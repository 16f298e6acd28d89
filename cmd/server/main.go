package main

import (
	"context"
	"log"
	"net/http"

	_ "taskboard/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/router"
	"taskboard/internal/service"
)

// @title Taskboard API
// @version 1.0
// @description Multi-tenant task management API with role-aware access control and JWT authentication.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.AuthzPolicy != config.PolicyRole && cfg.AuthzPolicy != config.PolicyStrict {
		log.Fatalf("unknown AUTHZ_POLICY %q (want %q or %q)", cfg.AuthzPolicy, config.PolicyRole, config.PolicyStrict)
	}

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.TaskActivity{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	activityRepo := repository.NewTaskActivityRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	taskService := service.NewTaskService(taskRepo, userRepo, activityRepo, cfg.AuthzPolicy)
	userService := service.NewUserService(userRepo)

	// Demo data is seeded only on explicit opt-in. Dev/demo deployments only.
	if cfg.SeedDemoUsers {
		if _, err := authService.SeedDemoUsers(context.Background()); err != nil {
			log.Fatalf("seed demo users: %v", err)
		}
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	userHandler := handler.NewUserHandler(userService)

	// Register routes
	router.Register(
		e,
		cfg,
		userRepo,
		tokenStore,
		authHandler,
		taskHandler,
		userHandler,
	)

	log.Printf("authorization policy: %s", cfg.AuthzPolicy)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
