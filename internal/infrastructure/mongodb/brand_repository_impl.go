package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
)

type BrandRepository struct {
	coll *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{coll: db.Collection(brandsCollection)}
}

func (r *BrandRepository) Create(ctx context.Context, b *entity.Brand) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Brand, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BrandRepository) GetBySlug(ctx context.Context, slug string) (*entity.Brand, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *BrandRepository) findOne(ctx context.Context, filter bson.M) (*entity.Brand, error) {
	var b entity.Brand
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BrandRepository) List(ctx context.Context, f repository.BrandFilter) ([]entity.Brand, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": f.Search, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	if f.IsActive != nil {
		filter["is_active"] = *f.IsActive
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	applyPaging(opts, f.Page, f.Limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []entity.Brand
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BrandRepository) Update(ctx context.Context, b *entity.Brand) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *BrandRepository) SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	return slugTaken(ctx, r.coll, slug, excludeID)
}

var _ repository.BrandRepository = (*BrandRepository)(nil)

// slugTaken counts sibling documents holding the slug, excluding the entity
// itself on update. Shared by all sluggable collections.
func slugTaken(ctx context.Context, coll *mongo.Collection, slug string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// applyPaging translates 1-based page/limit into skip/limit options.
func applyPaging(opts *options.FindOptions, page, limit int64) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	opts.SetSkip((page - 1) * limit).SetLimit(limit)
}
