package application

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCategoryCreateWithParent(t *testing.T) {
	categories := newFakeCategoryRepo()
	s := NewCategoryService(categories, newSyncRecorder(), nil)
	ctx := context.Background()

	root, err := s.Create(ctx, CategoryInput{Name: "Electronics"})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	child, err := s.Create(ctx, CategoryInput{Name: "Phones", ParentCategory: &root.ID})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}
	if child.ParentCategory == nil || *child.ParentCategory != root.ID {
		t.Fatal("child parent not set")
	}
}

func TestCategoryCreateUnknownParent(t *testing.T) {
	categories := newFakeCategoryRepo()
	s := NewCategoryService(categories, newSyncRecorder(), nil)

	ghost := primitive.NewObjectID()
	if _, err := s.Create(context.Background(), CategoryInput{Name: "Phones", ParentCategory: &ghost}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCategoryTree(t *testing.T) {
	categories := newFakeCategoryRepo()
	s := NewCategoryService(categories, newSyncRecorder(), nil)
	ctx := context.Background()

	root, err := s.Create(ctx, CategoryInput{Name: "Electronics"})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	phones, err := s.Create(ctx, CategoryInput{Name: "Phones", ParentCategory: &root.ID})
	if err != nil {
		t.Fatalf("Create phones: %v", err)
	}
	if _, err := s.Create(ctx, CategoryInput{Name: "Android", ParentCategory: &phones.ID}); err != nil {
		t.Fatalf("Create android: %v", err)
	}
	if _, err := s.Create(ctx, CategoryInput{Name: "Fashion"}); err != nil {
		t.Fatalf("Create fashion: %v", err)
	}

	roots, err := s.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("root count = %d, want 2", len(roots))
	}
	var electronics *CategoryNode
	for _, n := range roots {
		if n.Name == "Electronics" {
			electronics = n
		}
	}
	if electronics == nil {
		t.Fatal("electronics root missing")
	}
	if len(electronics.Children) != 1 || electronics.Children[0].Name != "Phones" {
		t.Fatalf("electronics children = %+v", electronics.Children)
	}
	if len(electronics.Children[0].Children) != 1 || electronics.Children[0].Children[0].Name != "Android" {
		t.Fatal("nested child missing")
	}
}

func TestCategoryRenameSyncsProducts(t *testing.T) {
	categories := newFakeCategoryRepo()
	products := newSyncRecorder()
	s := NewCategoryService(categories, products, nil)
	ctx := context.Background()

	c, err := s.Create(ctx, CategoryInput{Name: "Phones"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Update(ctx, c.ID, CategoryInput{Name: "Smartphones"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := products.categorySyncs[c.ID]; got != "Smartphones" {
		t.Fatalf("sync = %q, want Smartphones", got)
	}
}

func TestCategorySelfParentRejected(t *testing.T) {
	categories := newFakeCategoryRepo()
	s := NewCategoryService(categories, newSyncRecorder(), nil)
	ctx := context.Background()

	c, err := s.Create(ctx, CategoryInput{Name: "Phones"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Update(ctx, c.ID, CategoryInput{ParentCategory: &c.ID}); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("got %v, want ErrInvalidParent", err)
	}
}
