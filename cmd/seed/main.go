package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/config"
	"shopkart/internal/domain/entity"
	"shopkart/internal/infrastructure/mongodb"
	"shopkart/pkg/helpers"
)

// Seeds an admin account from ADMIN_EMAIL / ADMIN_PASSWORD. Safe to run
// repeatedly; an existing account keeps its password.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoConnTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB)

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	res, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"email": cfg.AdminEmail},
		bson.M{
			"$set": bson.M{
				"role":        entity.RoleAdmin,
				"is_verified": true,
				"updated_at":  now,
			},
			"$setOnInsert": bson.M{
				"email":         cfg.AdminEmail,
				"password":      hash,
				"first_name":    "Admin",
				"last_name":     "User",
				"auth_provider": entity.ProviderLocal,
				"created_at":    now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	if res.UpsertedCount > 0 {
		fmt.Printf("seeded admin: email=%s\n", cfg.AdminEmail)
	} else {
		fmt.Printf("admin already present, role/verification ensured: email=%s\n", cfg.AdminEmail)
	}
}
