package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
	"shopkart/internal/domain/slug"
)

// BrandService manages the brand catalog. Renames cascade into the display
// names cached on product documents.
type BrandService struct {
	Brands   repository.BrandRepository
	Products repository.ProductRepository
	Slugs    *slug.Generator
	Logger   *logrus.Logger
}

func NewBrandService(brands repository.BrandRepository, products repository.ProductRepository, logger *logrus.Logger) *BrandService {
	return &BrandService{
		Brands:   brands,
		Products: products,
		Slugs:    slug.NewGenerator(brands),
		Logger:   logger,
	}
}

type BrandInput struct {
	Name        string
	Description string
	Logo        string
	Website     string
	IsActive    *bool
}

func (s *BrandService) Create(ctx context.Context, in BrandInput) (*entity.Brand, error) {
	sl, err := s.Slugs.Generate(ctx, in.Name, primitive.NilObjectID)
	if err != nil {
		if errors.Is(err, slug.ErrEmpty) {
			return nil, ErrInvalidName
		}
		return nil, err
	}
	now := time.Now()
	b := &entity.Brand{
		Name:        in.Name,
		Slug:        sl,
		Description: in.Description,
		Logo:        in.Logo,
		Website:     in.Website,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	if err := s.Brands.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

// Get resolves a brand by hex id or, failing that, by slug.
func (s *BrandService) Get(ctx context.Context, idOrSlug string) (*entity.Brand, error) {
	var (
		b   *entity.Brand
		err error
	)
	if id, hexErr := primitive.ObjectIDFromHex(idOrSlug); hexErr == nil {
		b, err = s.Brands.GetByID(ctx, id)
	} else {
		b, err = s.Brands.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *BrandService) List(ctx context.Context, f repository.BrandFilter) ([]entity.Brand, int64, error) {
	return s.Brands.List(ctx, f)
}

// Update applies the input to an existing brand. The slug is recomputed only
// when the name actually changes; unrelated edits leave it untouched.
func (s *BrandService) Update(ctx context.Context, id primitive.ObjectID, in BrandInput) (*entity.Brand, error) {
	b, err := s.Brands.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	renamed := in.Name != "" && in.Name != b.Name
	if renamed {
		sl, err := s.Slugs.Generate(ctx, in.Name, b.ID)
		if err != nil {
			if errors.Is(err, slug.ErrEmpty) {
				return nil, ErrInvalidName
			}
			return nil, err
		}
		b.Name = in.Name
		b.Slug = sl
	}
	if in.Description != "" {
		b.Description = in.Description
	}
	if in.Logo != "" {
		b.Logo = in.Logo
	}
	if in.Website != "" {
		b.Website = in.Website
	}
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	b.UpdatedAt = time.Now()

	if err := s.Brands.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if renamed {
		if err := s.Products.SyncBrandName(ctx, b.ID, b.Name); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("brand_id", b.ID.Hex()).Error("failed to sync brand name onto products")
		}
	}
	return b, nil
}

func (s *BrandService) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.Brands.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
