package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
)

// BrandFilter narrows brand listings. Zero values mean "no filter".
type BrandFilter struct {
	Search   string // case-insensitive match on name or description
	IsActive *bool
	Page     int64
	Limit    int64
}

// CategoryFilter narrows category listings. A non-nil Parent filters by
// parent category; the zero ObjectID selects root categories only.
type CategoryFilter struct {
	Search   string
	IsActive *bool
	Parent   *primitive.ObjectID
	Page     int64
	Limit    int64
}

// ProductFilter narrows product listings. Unless IncludeInactive is set,
// only active and approved products are returned.
type ProductFilter struct {
	Brand           *primitive.ObjectID
	Category        *primitive.ObjectID
	Seller          *primitive.ObjectID
	Availability    string
	FeaturedOnly    bool
	MinPrice        *float64
	MaxPrice        *float64
	MinRating       *float64
	Search          string // text search on title, description, tags
	IncludeInactive bool
	SortBy          string // document field path, defaults to created_at
	SortDesc        bool
	Page            int64
	Limit           int64
}

// BrandRepository persists brands. Lookups return (nil, nil) when no
// document matches; Delete reports how many documents were removed.
type BrandRepository interface {
	Create(ctx context.Context, b *entity.Brand) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Brand, error)
	List(ctx context.Context, f BrandFilter) ([]entity.Brand, int64, error)
	Update(ctx context.Context, b *entity.Brand) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
}

// CategoryRepository persists categories. ListAll returns every category
// and exists for tree assembly.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context, f CategoryFilter) ([]entity.Category, int64, error)
	ListAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, c *entity.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
}

// ProductRepository persists products. SyncBrandName and SyncCategoryName
// rewrite the cached display names on products referencing the given
// document after a rename.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int64, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
	SyncBrandName(ctx context.Context, brandID primitive.ObjectID, name string) error
	SyncCategoryName(ctx context.Context, categoryID primitive.ObjectID, name string) error
}
