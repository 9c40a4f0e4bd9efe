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

// CategoryService manages the category tree. Like brands, category renames
// cascade into the names cached on products.
type CategoryService struct {
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Slugs      *slug.Generator
	Logger     *logrus.Logger
}

func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		Categories: categories,
		Products:   products,
		Slugs:      slug.NewGenerator(categories),
		Logger:     logger,
	}
}

type CategoryInput struct {
	Name           string
	Description    string
	Image          string
	ParentCategory *primitive.ObjectID
	IsActive       *bool
}

// CategoryNode is a category plus its children, for the tree endpoint.
type CategoryNode struct {
	entity.Category
	Children []*CategoryNode `json:"children"`
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	if in.ParentCategory != nil {
		parent, err := s.Categories.GetByID(ctx, *in.ParentCategory)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}
	sl, err := s.Slugs.Generate(ctx, in.Name, primitive.NilObjectID)
	if err != nil {
		if errors.Is(err, slug.ErrEmpty) {
			return nil, ErrInvalidName
		}
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		Name:           in.Name,
		Slug:           sl,
		Description:    in.Description,
		Image:          in.Image,
		ParentCategory: in.ParentCategory,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// Get resolves a category by hex id or, failing that, by slug.
func (s *CategoryService) Get(ctx context.Context, idOrSlug string) (*entity.Category, error) {
	var (
		c   *entity.Category
		err error
	)
	if id, hexErr := primitive.ObjectIDFromHex(idOrSlug); hexErr == nil {
		c, err = s.Categories.GetByID(ctx, id)
	} else {
		c, err = s.Categories.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, f repository.CategoryFilter) ([]entity.Category, int64, error) {
	return s.Categories.List(ctx, f)
}

// Tree assembles all categories into parent/child nodes. Categories whose
// parent no longer exists are surfaced as roots rather than dropped.
func (s *CategoryService) Tree(ctx context.Context) ([]*CategoryNode, error) {
	all, err := s.Categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make(map[primitive.ObjectID]*CategoryNode, len(all))
	for i := range all {
		nodes[all[i].ID] = &CategoryNode{Category: all[i], Children: []*CategoryNode{}}
	}
	roots := make([]*CategoryNode, 0)
	for _, n := range nodes {
		if n.ParentCategory != nil {
			if parent, ok := nodes[*n.ParentCategory]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots, nil
}

// Update applies the input to an existing category, recomputing the slug
// only on a real rename.
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*entity.Category, error) {
	c, err := s.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	renamed := in.Name != "" && in.Name != c.Name
	if renamed {
		sl, err := s.Slugs.Generate(ctx, in.Name, c.ID)
		if err != nil {
			if errors.Is(err, slug.ErrEmpty) {
				return nil, ErrInvalidName
			}
			return nil, err
		}
		c.Name = in.Name
		c.Slug = sl
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Image != "" {
		c.Image = in.Image
	}
	if in.ParentCategory != nil {
		if *in.ParentCategory == c.ID {
			return nil, ErrInvalidParent
		}
		parent, err := s.Categories.GetByID(ctx, *in.ParentCategory)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		c.ParentCategory = in.ParentCategory
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now()

	if err := s.Categories.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if renamed {
		if err := s.Products.SyncCategoryName(ctx, c.ID, c.Name); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("category_id", c.ID.Hex()).Error("failed to sync category name onto products")
		}
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.Categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
