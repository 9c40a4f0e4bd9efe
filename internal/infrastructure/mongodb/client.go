package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	usersCollection      = "users"
	brandsCollection     = "brands"
	categoriesCollection = "categories"
	productsCollection   = "products"
)

// Connect establishes a MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the application relies on.
// Slug and email uniqueness is enforced here; the in-process slug scan is
// only an optimization on top of these constraints.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, unique("email")); err != nil {
		return err
	}
	if _, err := db.Collection(brandsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("name"), unique("slug"),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(categoriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("name"), unique("slug"),
	}); err != nil {
		return err
	}
	_, err := db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("slug"),
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "description", Value: "text"},
			{Key: "tags", Value: "text"},
		}},
		{Keys: bson.D{{Key: "brand.id", Value: 1}}},
		{Keys: bson.D{{Key: "category.id", Value: 1}}},
		{Keys: bson.D{{Key: "seller.id", Value: 1}}},
		{Keys: bson.D{{Key: "price.final_price", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
