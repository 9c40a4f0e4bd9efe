package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
)

// ErrDuplicateKey is returned by implementations when a write violates a
// unique index (email, name, or slug). The storage-level constraint is the
// authoritative uniqueness guard; application-level checks are best effort.
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository defines user persistence. Lookups return (nil, nil) when
// no document matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
