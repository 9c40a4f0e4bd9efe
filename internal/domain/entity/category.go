package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products. Categories form a tree through ParentCategory;
// a nil parent marks a root category. Name and slug are unique within the
// collection.
type Category struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name           string              `json:"name" bson:"name"`
	Slug           string              `json:"slug" bson:"slug"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	Image          string              `json:"image,omitempty" bson:"image,omitempty"`
	ParentCategory *primitive.ObjectID `json:"parent_category,omitempty" bson:"parent_category,omitempty"`
	IsActive       bool                `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
