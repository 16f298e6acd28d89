package main

import (
	"context"
	"log"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// Seeds the demo accounts (one admin, two members) into the configured
// database. Intended for fresh dev/demo deployments; running it against an
// already-seeded database is a no-op.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, auth.NewJWTService(cfg.JWTSecret), auth.NewTokenStore(nil))

	created, err := authService.SeedDemoUsers(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users created: %d", created)
	if created > 0 {
		log.Printf("  - Admin: %s", service.SeedAdminEmail)
		log.Printf("  - Members: %s, %s", service.SeedMember1Email, service.SeedMember2Email)
	}
}
