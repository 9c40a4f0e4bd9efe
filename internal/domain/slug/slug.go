// Package slug derives URL-safe unique identifiers from display names.
// Brands, categories, and products all share the same routine; uniqueness
// is scoped to the entity's own collection through the Checker capability.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrEmpty is returned when the name reduces to nothing after
	// stripping, e.g. a name made only of special characters.
	ErrEmpty = errors.New("slug: name produces an empty slug")

	// ErrExhausted is returned when no free suffix is found within the
	// attempt cap. The unique index on the collection remains the
	// authoritative guard either way.
	ErrExhausted = errors.New("slug: no free slug within attempt limit")
)

// maxAttempts bounds the sequential uniqueness scan so a pathological
// collision storm cannot loop forever.
const maxAttempts = 500

// Make builds the base slug: lowercase, strip everything but letters,
// digits and whitespace, collapse whitespace and hyphen runs into single
// hyphens, trim leading and trailing hyphens.
func Make(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteByte('-')
		}
	}
	s := b.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Checker reports whether a slug is already held by another entity of the
// same kind. excludeID removes the entity itself from the check on update;
// pass primitive.NilObjectID on create.
type Checker interface {
	SlugTaken(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
}

// Generator produces collision-free slugs for one entity kind.
type Generator struct {
	checker Checker
}

func NewGenerator(c Checker) *Generator {
	return &Generator{checker: c}
}

// Generate returns the base slug when it is free, otherwise the first free
// "-1", "-2", ... suffixed candidate. The scan is best-effort: two racing
// creators can both see a candidate as free, and the collection's unique
// index is what actually rejects the loser.
func (g *Generator) Generate(ctx context.Context, name string, excludeID primitive.ObjectID) (string, error) {
	base := Make(name)
	if base == "" {
		return "", ErrEmpty
	}
	taken, err := g.checker.SlugTaken(ctx, base, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for i := 1; i <= maxAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := g.checker.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}
