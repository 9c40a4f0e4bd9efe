package entity

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Stock availability states, derived from the total on every save.
const (
	StockInStock    = "in_stock"
	StockLimited    = "limited"
	StockOutOfStock = "out_of_stock"
)

// limitedStockThreshold is the total at or below which a product is
// reported as "limited".
const limitedStockThreshold = 10

// ProductRef points at a related document and caches its display name so
// product listings render without extra lookups. The cached name is resynced
// by the product service whenever the referenced document changes.
type ProductRef struct {
	ID   primitive.ObjectID `json:"id" bson:"id"`
	Name string             `json:"name" bson:"name"`
}

type Discount struct {
	Type  string  `json:"type" bson:"type"`
	Value float64 `json:"value" bson:"value"`
}

type Price struct {
	BasePrice  float64  `json:"base_price" bson:"base_price"`
	Discount   Discount `json:"discount" bson:"discount"`
	FinalPrice float64  `json:"final_price" bson:"final_price"`
}

type Stock struct {
	Total        int    `json:"total" bson:"total"`
	Availability string `json:"availability" bson:"availability"`
}

type Review struct {
	UserID             primitive.ObjectID `json:"user_id" bson:"user_id"`
	Name               string             `json:"name" bson:"name"`
	Rating             int                `json:"rating" bson:"rating"`
	Title              string             `json:"title,omitempty" bson:"title,omitempty"`
	Comment            string             `json:"comment,omitempty" bson:"comment,omitempty"`
	Date               time.Time          `json:"date" bson:"date"`
	IsVerifiedPurchase bool               `json:"is_verified_purchase" bson:"is_verified_purchase"`
}

// RatingSummary aggregates reviews. Breakdown keys are the star values
// "1" through "5".
type RatingSummary struct {
	Average   float64        `json:"average" bson:"average"`
	Count     int            `json:"count" bson:"count"`
	Breakdown map[string]int `json:"breakdown" bson:"breakdown"`
}

type ProductStatus struct {
	IsActive   bool `json:"is_active" bson:"is_active"`
	IsFeatured bool `json:"is_featured" bson:"is_featured"`
	IsApproved bool `json:"is_approved" bson:"is_approved"`
}

// Product is a catalog item. Slug is unique within the products collection
// and derived from Title.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Brand       ProductRef         `json:"brand" bson:"brand"`
	Category    ProductRef         `json:"category" bson:"category"`
	Seller      ProductRef         `json:"seller" bson:"seller"`
	Price       Price              `json:"price" bson:"price"`
	Stock       Stock              `json:"stock" bson:"stock"`
	Images      []string           `json:"images" bson:"images"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Highlights  []string           `json:"highlights,omitempty" bson:"highlights,omitempty"`
	Reviews     []Review           `json:"reviews,omitempty" bson:"reviews,omitempty"`
	Ratings     RatingSummary      `json:"ratings" bson:"ratings"`
	Status      ProductStatus      `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Reprice recomputes FinalPrice from the base price and discount.
func (p *Product) Reprice() {
	base := p.Price.BasePrice
	switch p.Price.Discount.Type {
	case DiscountPercentage:
		p.Price.FinalPrice = base - base*p.Price.Discount.Value/100
	case DiscountFixed:
		p.Price.FinalPrice = math.Max(0, base-p.Price.Discount.Value)
	default:
		p.Price.FinalPrice = base
	}
}

// RefreshAvailability recomputes the availability label from the stock total.
func (p *Product) RefreshAvailability() {
	switch {
	case p.Stock.Total == 0:
		p.Stock.Availability = StockOutOfStock
	case p.Stock.Total <= limitedStockThreshold:
		p.Stock.Availability = StockLimited
	default:
		p.Stock.Availability = StockInStock
	}
}

// RecalculateRatings rebuilds the rating summary from the review list.
// The average is rounded to one decimal place.
func (p *Product) RecalculateRatings() {
	breakdown := map[string]int{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0}
	if len(p.Reviews) == 0 {
		p.Ratings = RatingSummary{Breakdown: breakdown}
		return
	}
	total := 0
	for _, r := range p.Reviews {
		total += r.Rating
		switch r.Rating {
		case 5:
			breakdown["5"]++
		case 4:
			breakdown["4"]++
		case 3:
			breakdown["3"]++
		case 2:
			breakdown["2"]++
		case 1:
			breakdown["1"]++
		}
	}
	avg := float64(total) / float64(len(p.Reviews))
	p.Ratings = RatingSummary{
		Average:   math.Round(avg*10) / 10,
		Count:     len(p.Reviews),
		Breakdown: breakdown,
	}
}

// ReviewBy returns the review left by the given user, if any.
func (p *Product) ReviewBy(userID primitive.ObjectID) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].UserID == userID {
			return &p.Reviews[i]
		}
	}
	return nil
}
