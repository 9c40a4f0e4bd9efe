package application

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
)

type fakeBrandRepo struct {
	byID map[primitive.ObjectID]*entity.Brand
}

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{byID: map[primitive.ObjectID]*entity.Brand{}}
}

func (r *fakeBrandRepo) Create(_ context.Context, b *entity.Brand) error {
	for _, e := range r.byID {
		if e.Slug == b.Slug || e.Name == b.Name {
			return repository.ErrDuplicateKey
		}
	}
	b.ID = primitive.NewObjectID()
	cp := *b
	r.byID[b.ID] = &cp
	return nil
}

func (r *fakeBrandRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Brand, error) {
	if b, ok := r.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeBrandRepo) GetBySlug(_ context.Context, slug string) (*entity.Brand, error) {
	for _, b := range r.byID {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBrandRepo) List(_ context.Context, _ repository.BrandFilter) ([]entity.Brand, int64, error) {
	out := make([]entity.Brand, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBrandRepo) Update(_ context.Context, b *entity.Brand) error {
	if _, ok := r.byID[b.ID]; !ok {
		return errors.New("no document")
	}
	cp := *b
	r.byID[b.ID] = &cp
	return nil
}

func (r *fakeBrandRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

func (r *fakeBrandRepo) SlugTaken(_ context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	for id, b := range r.byID {
		if b.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// syncRecorder implements just enough of ProductRepository to observe the
// denormalized-name sync calls from the brand and category services.
type syncRecorder struct {
	brandSyncs    map[primitive.ObjectID]string
	categorySyncs map[primitive.ObjectID]string
}

func newSyncRecorder() *syncRecorder {
	return &syncRecorder{
		brandSyncs:    map[primitive.ObjectID]string{},
		categorySyncs: map[primitive.ObjectID]string{},
	}
}

func (s *syncRecorder) Create(context.Context, *entity.Product) error { return nil }
func (s *syncRecorder) GetByID(context.Context, primitive.ObjectID) (*entity.Product, error) {
	return nil, nil
}
func (s *syncRecorder) GetBySlug(context.Context, string) (*entity.Product, error) { return nil, nil }
func (s *syncRecorder) List(context.Context, repository.ProductFilter) ([]entity.Product, int64, error) {
	return nil, 0, nil
}
func (s *syncRecorder) Update(context.Context, *entity.Product) error { return nil }
func (s *syncRecorder) Delete(context.Context, primitive.ObjectID) (int64, error) {
	return 0, nil
}
func (s *syncRecorder) SlugTaken(context.Context, string, primitive.ObjectID) (bool, error) {
	return false, nil
}
func (s *syncRecorder) SyncBrandName(_ context.Context, id primitive.ObjectID, name string) error {
	s.brandSyncs[id] = name
	return nil
}
func (s *syncRecorder) SyncCategoryName(_ context.Context, id primitive.ObjectID, name string) error {
	s.categorySyncs[id] = name
	return nil
}

func TestBrandCreateSlugs(t *testing.T) {
	repo := newFakeBrandRepo()
	s := NewBrandService(repo, newSyncRecorder(), nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Samsung Electronics!"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Slug != "samsung-electronics" {
		t.Fatalf("slug = %q, want samsung-electronics", b.Slug)
	}
	if !b.IsActive {
		t.Fatal("brands default to active")
	}
}

func TestBrandCreateCollidingNamesGetSuffixes(t *testing.T) {
	repo := newFakeBrandRepo()
	s := NewBrandService(repo, newSyncRecorder(), nil)
	ctx := context.Background()

	first, err := s.Create(ctx, BrandInput{Name: "Acme Inc"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create(ctx, BrandInput{Name: "Acme, Inc."})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if first.Slug != "acme-inc" || second.Slug != "acme-inc-1" {
		t.Fatalf("slugs = %q, %q; want acme-inc, acme-inc-1", first.Slug, second.Slug)
	}
}

func TestBrandCreateEmptySlug(t *testing.T) {
	s := NewBrandService(newFakeBrandRepo(), newSyncRecorder(), nil)
	if _, err := s.Create(context.Background(), BrandInput{Name: "!!!"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("got %v, want ErrInvalidName", err)
	}
}

func TestBrandRenameRecomputesSlugAndSyncs(t *testing.T) {
	repo := newFakeBrandRepo()
	products := newSyncRecorder()
	s := NewBrandService(repo, products, nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := s.Update(ctx, b.ID, BrandInput{Name: "Acme Global"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "acme-global" {
		t.Fatalf("slug = %q, want acme-global", updated.Slug)
	}
	if got := products.brandSyncs[b.ID]; got != "Acme Global" {
		t.Fatalf("product sync = %q, want Acme Global", got)
	}
}

func TestBrandUnrelatedEditKeepsSlug(t *testing.T) {
	repo := newFakeBrandRepo()
	products := newSyncRecorder()
	s := NewBrandService(repo, products, nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := s.Update(ctx, b.ID, BrandInput{Description: "new description"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "acme" {
		t.Fatalf("slug changed on unrelated edit: %q", updated.Slug)
	}
	if len(products.brandSyncs) != 0 {
		t.Fatal("sync must not run without a rename")
	}
}

func TestBrandRenameExcludesSelf(t *testing.T) {
	repo := newFakeBrandRepo()
	s := NewBrandService(repo, newSyncRecorder(), nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// renaming to a name that maps to its own slug must not suffix
	updated, err := s.Update(ctx, b.ID, BrandInput{Name: "ACME"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "acme" {
		t.Fatalf("slug = %q, want acme", updated.Slug)
	}
}

func TestBrandDelete(t *testing.T) {
	repo := newFakeBrandRepo()
	s := NewBrandService(repo, newSyncRecorder(), nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestBrandGetByIDOrSlug(t *testing.T) {
	repo := newFakeBrandRepo()
	s := NewBrandService(repo, newSyncRecorder(), nil)
	ctx := context.Background()

	b, err := s.Create(ctx, BrandInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	byID, err := s.Get(ctx, b.ID.Hex())
	if err != nil || byID.ID != b.ID {
		t.Fatalf("Get by id: %v", err)
	}
	bySlug, err := s.Get(ctx, "acme")
	if err != nil || bySlug.ID != b.ID {
		t.Fatalf("Get by slug: %v", err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
