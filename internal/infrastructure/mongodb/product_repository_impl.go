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

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var p entity.Product
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// sortable lists the fields callers may sort product listings by, mapped to
// their document paths. Unknown fields fall back to created_at.
var sortable = map[string]string{
	"created_at": "created_at",
	"price":      "price.final_price",
	"rating":     "ratings.average",
	"title":      "title",
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int64, error) {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["status.is_active"] = true
		filter["status.is_approved"] = true
	}
	if f.Brand != nil {
		filter["brand.id"] = *f.Brand
	}
	if f.Category != nil {
		filter["category.id"] = *f.Category
	}
	if f.Seller != nil {
		filter["seller.id"] = *f.Seller
	}
	if f.Availability != "" {
		filter["stock.availability"] = f.Availability
	}
	if f.FeaturedOnly {
		filter["status.is_featured"] = true
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price.final_price"] = price
	}
	if f.MinRating != nil {
		filter["ratings.average"] = bson.M{"$gte": *f.MinRating}
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField, ok := sortable[f.SortBy]
	if !ok {
		sortField = "created_at"
	}
	order := 1
	if f.SortDesc {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}}).
		SetProjection(bson.M{"reviews": 0}) // reviews excluded from list views
	applyPaging(opts, f.Page, f.Limit)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []entity.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
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

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ProductRepository) SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	return slugTaken(ctx, r.coll, slug, excludeID)
}

func (r *ProductRepository) SyncBrandName(ctx context.Context, brandID primitive.ObjectID, name string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"brand.id": brandID},
		bson.M{"$set": bson.M{"brand.name": name, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (r *ProductRepository) SyncCategoryName(ctx context.Context, categoryID primitive.ObjectID, name string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"category.id": categoryID},
		bson.M{"$set": bson.M{"category.name": name, "updated_at": time.Now().UTC()}},
	)
	return err
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
