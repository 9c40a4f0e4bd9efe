package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Brand is a product manufacturer. Name and slug are unique within the
// brands collection.
type Brand struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Logo        string             `json:"logo,omitempty" bson:"logo,omitempty"`
	Website     string             `json:"website,omitempty" bson:"website,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
