package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
	"shopkart/internal/domain/slug"
	"shopkart/pkg/helpers"
)

// ProductService manages the product catalog: CRUD, reviews, image uploads
// to GCS, and the Elasticsearch search index.
type ProductService struct {
	Products   repository.ProductRepository
	Brands     repository.BrandRepository
	Categories repository.CategoryRepository
	Users      repository.UserRepository
	Slugs      *slug.Generator
	Logger     *logrus.Logger

	GCS       *storage.Client
	GCSBucket string

	ES      *elasticsearch.Client
	ESIndex string
}

func NewProductService(
	products repository.ProductRepository,
	brands repository.BrandRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	logger *logrus.Logger,
	gcs *storage.Client, gcsBucket string,
	es *elasticsearch.Client, esIndex string,
) *ProductService {
	return &ProductService{
		Products:   products,
		Brands:     brands,
		Categories: categories,
		Users:      users,
		Slugs:      slug.NewGenerator(products),
		Logger:     logger,
		GCS:        gcs,
		GCSBucket:  gcsBucket,
		ES:         es,
		ESIndex:    esIndex,
	}
}

type ProductInput struct {
	Title        string
	Description  string
	BrandID      primitive.ObjectID
	CategoryID   primitive.ObjectID
	BasePrice    float64
	DiscountType string
	Discount     float64
	StockTotal   *int
	Images       []string
	Tags         []string
	Highlights   []string
	IsFeatured   *bool
	IsActive     *bool
}

// resolveRefs loads the referenced brand, category, and seller and returns
// them as denormalized refs with the current display names.
func (s *ProductService) resolveRefs(ctx context.Context, brandID, categoryID, sellerID primitive.ObjectID) (brand, category, seller entity.ProductRef, err error) {
	b, err := s.Brands.GetByID(ctx, brandID)
	if err != nil {
		return
	}
	if b == nil {
		err = ErrNotFound
		return
	}
	c, err := s.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return
	}
	if c == nil {
		err = ErrNotFound
		return
	}
	u, err := s.Users.GetByID(ctx, sellerID)
	if err != nil {
		return
	}
	if u == nil {
		err = ErrNotFound
		return
	}
	brand = entity.ProductRef{ID: b.ID, Name: b.Name}
	category = entity.ProductRef{ID: c.ID, Name: c.Name}
	seller = entity.ProductRef{ID: u.ID, Name: u.FullName()}
	return
}

// Create inserts a product owned by sellerID. New products start active but
// unapproved; an admin flips approval separately.
func (s *ProductService) Create(ctx context.Context, sellerID primitive.ObjectID, in ProductInput) (*entity.Product, error) {
	brand, category, seller, err := s.resolveRefs(ctx, in.BrandID, in.CategoryID, sellerID)
	if err != nil {
		return nil, err
	}
	sl, err := s.Slugs.Generate(ctx, in.Title, primitive.NilObjectID)
	if err != nil {
		if errors.Is(err, slug.ErrEmpty) {
			return nil, ErrInvalidName
		}
		return nil, err
	}

	now := time.Now()
	p := &entity.Product{
		Title:       in.Title,
		Slug:        sl,
		Description: in.Description,
		Brand:       brand,
		Category:    category,
		Seller:      seller,
		Price: entity.Price{
			BasePrice: in.BasePrice,
			Discount:  entity.Discount{Type: in.DiscountType, Value: in.Discount},
		},
		Stock:      entity.Stock{},
		Images:     in.Images,
		Tags:       in.Tags,
		Highlights: in.Highlights,
		Status:     entity.ProductStatus{IsActive: true, IsFeatured: false, IsApproved: false},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.StockTotal != nil {
		p.Stock.Total = *in.StockTotal
	}
	if in.IsFeatured != nil {
		p.Status.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		p.Status.IsActive = *in.IsActive
	}
	p.Reprice()
	p.RefreshAvailability()
	p.RecalculateRatings()

	if err := s.Products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	_ = s.indexProduct(ctx, p)
	return p, nil
}

// Get resolves a product by hex id or, failing that, by slug.
func (s *ProductService) Get(ctx context.Context, idOrSlug string) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	if id, hexErr := primitive.ObjectIDFromHex(idOrSlug); hexErr == nil {
		p, err = s.Products.GetByID(ctx, id)
	} else {
		p, err = s.Products.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int64, error) {
	return s.Products.List(ctx, f)
}

// Update applies the input, re-resolving refs when either changes and
// regenerating the slug only on a title change. Only the owning seller or
// an admin may update.
func (s *ProductService) Update(ctx context.Context, id, actorID primitive.ObjectID, isAdmin bool, in ProductInput) (*entity.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if !isAdmin && p.Seller.ID != actorID {
		return nil, ErrForbidden
	}

	if in.Title != "" && in.Title != p.Title {
		sl, err := s.Slugs.Generate(ctx, in.Title, p.ID)
		if err != nil {
			if errors.Is(err, slug.ErrEmpty) {
				return nil, ErrInvalidName
			}
			return nil, err
		}
		p.Title = in.Title
		p.Slug = sl
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if !in.BrandID.IsZero() && in.BrandID != p.Brand.ID {
		b, err := s.Brands.GetByID(ctx, in.BrandID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, ErrNotFound
		}
		p.Brand = entity.ProductRef{ID: b.ID, Name: b.Name}
	}
	if !in.CategoryID.IsZero() && in.CategoryID != p.Category.ID {
		c, err := s.Categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrNotFound
		}
		p.Category = entity.ProductRef{ID: c.ID, Name: c.Name}
	}
	if in.BasePrice > 0 {
		p.Price.BasePrice = in.BasePrice
	}
	if in.DiscountType != "" {
		p.Price.Discount = entity.Discount{Type: in.DiscountType, Value: in.Discount}
	}
	if in.StockTotal != nil {
		p.Stock.Total = *in.StockTotal
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Highlights != nil {
		p.Highlights = in.Highlights
	}
	if in.IsFeatured != nil {
		p.Status.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		p.Status.IsActive = *in.IsActive
	}
	p.Reprice()
	p.RefreshAvailability()
	p.UpdatedAt = time.Now()

	if err := s.Products.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	_ = s.indexProduct(ctx, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id, actorID primitive.ObjectID, isAdmin bool) error {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	if !isAdmin && p.Seller.ID != actorID {
		return ErrForbidden
	}
	n, err := s.Products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.removeFromIndex(ctx, id.Hex())
	return nil
}

type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// AddReview attaches a review from the given user and rebuilds the rating
// summary. A user gets one review per product.
func (s *ProductService) AddReview(ctx context.Context, productID, userID primitive.ObjectID, in ReviewInput) (*entity.Product, error) {
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.ReviewBy(userID) != nil {
		return nil, ErrDuplicate
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	p.Reviews = append(p.Reviews, entity.Review{
		UserID:  userID,
		Name:    u.FullName(),
		Rating:  in.Rating,
		Title:   in.Title,
		Comment: in.Comment,
		Date:    time.Now(),
	})
	p.RecalculateRatings()
	p.UpdatedAt = time.Now()

	if err := s.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	_ = s.indexProduct(ctx, p)
	return p, nil
}

// Reviews returns the review list for a product.
func (s *ProductService) Reviews(ctx context.Context, productID primitive.ObjectID) ([]entity.Review, error) {
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.Reviews == nil {
		return []entity.Review{}, nil
	}
	return p.Reviews, nil
}

// UploadImage stores a product image in GCS and appends its public URL to
// the product's image list.
func (s *ProductService) UploadImage(ctx context.Context, productID, actorID primitive.ObjectID, isAdmin bool, r io.Reader, filename, contentType string) (string, error) {
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", ErrNotFound
	}
	if !isAdmin && p.Seller.ID != actorID {
		return "", ErrForbidden
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", productID.Hex(), id+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	p.Images = append(p.Images, url)
	p.UpdatedAt = time.Now()
	if err := s.Products.Update(ctx, p); err != nil {
		return "", err
	}
	return url, nil
}

func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":           p.ID.Hex(),
		"title":        p.Title,
		"slug":         p.Slug,
		"description":  p.Description,
		"brand":        p.Brand.Name,
		"category":     p.Category.Name,
		"tags":         p.Tags,
		"final_price":  p.Price.FinalPrice,
		"rating":       p.Ratings.Average,
		"availability": p.Stock.Availability,
		"is_active":    p.Status.IsActive,
		"created_at":   p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID.Hex(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID.Hex()).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID.Hex()).Warn("es index response error")
	}
	return nil
}

func (s *ProductService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over title, description, and tags.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "tags"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
