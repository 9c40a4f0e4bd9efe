package slug

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Samsung Galaxy S23!!", "samsung-galaxy-s23"},
		{"  Mixed   CASE  Name ", "mixed-case-name"},
		{"already-hyphenated-name", "already-hyphenated-name"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
		{"--- trim me ---", "trim-me"},
		{"Ünïcode stripped", "ncode-stripped"},
		{"100% cotton", "100-cotton"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.name); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

type fakeChecker struct {
	taken map[string]bool
	err   error
}

func (f *fakeChecker) SlugTaken(_ context.Context, slug string, _ primitive.ObjectID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[slug], nil
}

func TestGenerateBaseFree(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{}})
	got, err := g.Generate(context.Background(), "Acme Corp", primitive.NilObjectID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "acme-corp" {
		t.Fatalf("got %q, want acme-corp", got)
	}
}

func TestGenerateSuffixes(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{
		"acme-corp":   true,
		"acme-corp-1": true,
	}})
	got, err := g.Generate(context.Background(), "Acme Corp", primitive.NilObjectID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "acme-corp-2" {
		t.Fatalf("got %q, want acme-corp-2", got)
	}
}

func TestGenerateEmpty(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{}})
	if _, err := g.Generate(context.Background(), "!!!", primitive.NilObjectID); !errors.Is(err, ErrEmpty) {
		t.Fatalf("got %v, want ErrEmpty", err)
	}
}

func TestGenerateExhausted(t *testing.T) {
	taken := map[string]bool{"x": true}
	for i := 1; i <= maxAttempts; i++ {
		taken[fmt.Sprintf("x-%d", i)] = true
	}
	g := NewGenerator(&fakeChecker{taken: taken})
	if _, err := g.Generate(context.Background(), "x", primitive.NilObjectID); !errors.Is(err, ErrExhausted) {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}

func TestGenerateCheckerError(t *testing.T) {
	want := errors.New("boom")
	g := NewGenerator(&fakeChecker{err: want})
	if _, err := g.Generate(context.Background(), "x", primitive.NilObjectID); !errors.Is(err, want) {
		t.Fatalf("got %v, want checker error", err)
	}
}
