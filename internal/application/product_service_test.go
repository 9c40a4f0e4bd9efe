package application

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
)

type fakeCategoryRepo struct {
	byID map[primitive.ObjectID]*entity.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: map[primitive.ObjectID]*entity.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	c.ID = primitive.NewObjectID()
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Category, error) {
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*entity.Category, error) {
	for _, c := range r.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, _ repository.CategoryFilter) ([]entity.Category, int64, error) {
	return nil, 0, nil
}

func (r *fakeCategoryRepo) ListAll(_ context.Context) ([]entity.Category, error) {
	out := make([]entity.Category, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	if _, ok := r.byID[c.ID]; !ok {
		return errors.New("no document")
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

func (r *fakeCategoryRepo) SlugTaken(_ context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	for id, c := range r.byID {
		if c.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeProductRepo struct {
	byID map[primitive.ObjectID]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: map[primitive.ObjectID]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	for _, e := range r.byID {
		if e.Slug == p.Slug {
			return repository.ErrDuplicateKey
		}
	}
	p.ID = primitive.NewObjectID()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*entity.Product, error) {
	for _, p := range r.byID {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]entity.Product, int64, error) {
	out := make([]entity.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errors.New("no document")
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

func (r *fakeProductRepo) SlugTaken(_ context.Context, slug string, excludeID primitive.ObjectID) (bool, error) {
	for id, p := range r.byID {
		if p.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) SyncBrandName(_ context.Context, brandID primitive.ObjectID, name string) error {
	for _, p := range r.byID {
		if p.Brand.ID == brandID {
			p.Brand.Name = name
		}
	}
	return nil
}

func (r *fakeProductRepo) SyncCategoryName(_ context.Context, categoryID primitive.ObjectID, name string) error {
	for _, p := range r.byID {
		if p.Category.ID == categoryID {
			p.Category.Name = name
		}
	}
	return nil
}

func stock(n int) *int { return &n }

type catalogFixture struct {
	svc      *ProductService
	products *fakeProductRepo
	brand    *entity.Brand
	category *entity.Category
	seller   *entity.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	ctx := context.Background()

	brands := newFakeBrandRepo()
	categories := newFakeCategoryRepo()
	users := newFakeUserRepo()
	products := newFakeProductRepo()

	brand := &entity.Brand{Name: "Samsung", Slug: "samsung", IsActive: true}
	if err := brands.Create(ctx, brand); err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	category := &entity.Category{Name: "Phones", Slug: "phones", IsActive: true}
	if err := categories.Create(ctx, category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	seller := &entity.User{Email: "seller@example.com", FirstName: "Sam", LastName: "Seller", Role: entity.RoleSeller, IsVerified: true}
	if err := users.Create(ctx, seller); err != nil {
		t.Fatalf("seed seller: %v", err)
	}

	svc := NewProductService(products, brands, categories, users, nil, nil, "", nil, "")
	return &catalogFixture{svc: svc, products: products, brand: brand, category: category, seller: seller}
}

func (f *catalogFixture) create(t *testing.T, in ProductInput) *entity.Product {
	t.Helper()
	if in.BrandID.IsZero() {
		in.BrandID = f.brand.ID
	}
	if in.CategoryID.IsZero() {
		in.CategoryID = f.category.ID
	}
	p, err := f.svc.Create(context.Background(), f.seller.ID, in)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return p
}

func TestProductCreateDerivesFields(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{
		Title:        "Galaxy S23 Ultra!",
		Description:  "flagship phone",
		BasePrice:    1000,
		DiscountType: entity.DiscountPercentage,
		Discount:     10,
		StockTotal:   stock(5),
	})

	if p.Slug != "galaxy-s23-ultra" {
		t.Fatalf("slug = %q", p.Slug)
	}
	if p.Price.FinalPrice != 900 {
		t.Fatalf("final price = %v, want 900", p.Price.FinalPrice)
	}
	if p.Stock.Availability != entity.StockLimited {
		t.Fatalf("availability = %q, want limited", p.Stock.Availability)
	}
	if p.Brand.Name != "Samsung" || p.Category.Name != "Phones" || p.Seller.Name != "Sam Seller" {
		t.Fatalf("denormalized refs wrong: %+v %+v %+v", p.Brand, p.Category, p.Seller)
	}
	if !p.Status.IsActive || p.Status.IsApproved {
		t.Fatal("new products start active and unapproved")
	}
}

func TestProductPricing(t *testing.T) {
	f := newCatalogFixture(t)

	fixed := f.create(t, ProductInput{Title: "Fixed deal", Description: "ten dollars off", BasePrice: 100, DiscountType: entity.DiscountFixed, Discount: 10, StockTotal: stock(50)})
	if fixed.Price.FinalPrice != 90 {
		t.Fatalf("fixed discount final = %v, want 90", fixed.Price.FinalPrice)
	}

	over := f.create(t, ProductInput{Title: "Over discounted", Description: "discount exceeds price", BasePrice: 5, DiscountType: entity.DiscountFixed, Discount: 10, StockTotal: stock(50)})
	if over.Price.FinalPrice != 0 {
		t.Fatalf("final price must floor at 0, got %v", over.Price.FinalPrice)
	}

	plain := f.create(t, ProductInput{Title: "No discount", Description: "plain pricing", BasePrice: 42, StockTotal: stock(50)})
	if plain.Price.FinalPrice != 42 {
		t.Fatalf("no-discount final = %v, want 42", plain.Price.FinalPrice)
	}
}

func TestProductAvailabilityThresholds(t *testing.T) {
	f := newCatalogFixture(t)

	cases := []struct {
		total int
		want  string
	}{
		{0, entity.StockOutOfStock},
		{1, entity.StockLimited},
		{10, entity.StockLimited},
		{11, entity.StockInStock},
	}
	for i, tc := range cases {
		p := f.create(t, ProductInput{
			Title:       "Stock case " + string(rune('A'+i)),
			Description: "availability threshold",
			BasePrice:   10,
			StockTotal:  stock(tc.total),
		})
		if p.Stock.Availability != tc.want {
			t.Errorf("total=%d: availability = %q, want %q", tc.total, p.Stock.Availability, tc.want)
		}
	}
}

func TestProductUpdateSlugOnlyOnTitleChange(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{Title: "Galaxy S23", Description: "flagship phone", BasePrice: 1000, StockTotal: stock(20)})

	updated, err := f.svc.Update(context.Background(), p.ID, f.seller.ID, false, ProductInput{BasePrice: 1100})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "galaxy-s23" {
		t.Fatalf("slug changed without a title change: %q", updated.Slug)
	}
	if updated.Price.FinalPrice != 1100 {
		t.Fatalf("final price = %v, want 1100", updated.Price.FinalPrice)
	}

	renamed, err := f.svc.Update(context.Background(), p.ID, f.seller.ID, false, ProductInput{Title: "Galaxy S24"})
	if err != nil {
		t.Fatalf("Update rename: %v", err)
	}
	if renamed.Slug != "galaxy-s24" {
		t.Fatalf("slug = %q, want galaxy-s24", renamed.Slug)
	}
}

func TestProductUpdateOwnership(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{Title: "Galaxy S23", Description: "flagship phone", BasePrice: 1000, StockTotal: stock(20)})

	stranger := primitive.NewObjectID()
	if _, err := f.svc.Update(context.Background(), p.ID, stranger, false, ProductInput{BasePrice: 1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	// admins bypass ownership
	if _, err := f.svc.Update(context.Background(), p.ID, stranger, true, ProductInput{BasePrice: 1200}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestProductReviews(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{Title: "Galaxy S23", Description: "flagship phone", BasePrice: 1000, StockTotal: stock(20)})
	ctx := context.Background()

	reviewer := &entity.User{Email: "buyer@example.com", FirstName: "Bea", LastName: "Buyer", IsVerified: true}
	if err := f.svc.Users.Create(ctx, reviewer); err != nil {
		t.Fatalf("seed reviewer: %v", err)
	}

	updated, err := f.svc.AddReview(ctx, p.ID, reviewer.ID, ReviewInput{Rating: 4, Comment: "solid"})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if updated.Ratings.Count != 1 || updated.Ratings.Average != 4 {
		t.Fatalf("ratings = %+v", updated.Ratings)
	}
	if updated.Reviews[0].Name != "Bea Buyer" {
		t.Fatalf("review name = %q", updated.Reviews[0].Name)
	}

	// one review per user
	if _, err := f.svc.AddReview(ctx, p.ID, reviewer.ID, ReviewInput{Rating: 5}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}

	second := &entity.User{Email: "other@example.com", FirstName: "Oli", LastName: "Other", IsVerified: true}
	if err := f.svc.Users.Create(ctx, second); err != nil {
		t.Fatalf("seed second reviewer: %v", err)
	}
	updated, err = f.svc.AddReview(ctx, p.ID, second.ID, ReviewInput{Rating: 5, Title: "great"})
	if err != nil {
		t.Fatalf("AddReview second: %v", err)
	}
	if updated.Ratings.Count != 2 || updated.Ratings.Average != 4.5 {
		t.Fatalf("ratings after second review = %+v", updated.Ratings)
	}
	if updated.Ratings.Breakdown["4"] != 1 || updated.Ratings.Breakdown["5"] != 1 {
		t.Fatalf("breakdown = %v", updated.Ratings.Breakdown)
	}
}

func TestProductRatingRounding(t *testing.T) {
	p := &entity.Product{Reviews: []entity.Review{{Rating: 5}, {Rating: 5}, {Rating: 4}}}
	p.RecalculateRatings()
	// 14/3 = 4.666..., rounded to one decimal
	if p.Ratings.Average != 4.7 {
		t.Fatalf("average = %v, want 4.7", p.Ratings.Average)
	}
}

func TestProductDeleteOwnership(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{Title: "Galaxy S23", Description: "flagship phone", BasePrice: 1000, StockTotal: stock(20)})
	ctx := context.Background()

	if err := f.svc.Delete(ctx, p.ID, primitive.NewObjectID(), false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(ctx, p.ID, f.seller.ID, false); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, p.ID, f.seller.ID, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestProductCreateUnknownRefs(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.svc.Create(context.Background(), f.seller.ID, ProductInput{
		Title:       "Ghost brand",
		Description: "missing brand reference",
		BrandID:     primitive.NewObjectID(),
		CategoryID:  f.category.ID,
		BasePrice:   10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestBrandRenameFlowsToProducts(t *testing.T) {
	f := newCatalogFixture(t)
	p := f.create(t, ProductInput{Title: "Galaxy S23", Description: "flagship phone", BasePrice: 1000, StockTotal: stock(20)})

	brands := f.svc.Brands.(*fakeBrandRepo)
	brandSvc := NewBrandService(brands, f.products, nil)
	if _, err := brandSvc.Update(context.Background(), f.brand.ID, BrandInput{Name: "Samsung Electronics"}); err != nil {
		t.Fatalf("brand Update: %v", err)
	}

	got, _ := f.products.GetByID(context.Background(), p.ID)
	if got.Brand.Name != "Samsung Electronics" {
		t.Fatalf("product brand name = %q, want Samsung Electronics", got.Brand.Name)
	}
}
