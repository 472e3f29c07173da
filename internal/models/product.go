package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the availability state of a catalog item.
type ProductStatus string

const (
	StatusInStock      ProductStatus = "IN_STOCK"
	StatusOutOfStock   ProductStatus = "OUT_OF_STOCK"
	StatusPreorder     ProductStatus = "PREORDER"
	StatusDiscontinued ProductStatus = "DISCONTINUED"
)

// ProductStatuses returns the declared statuses in declaration order.
func ProductStatuses() []ProductStatus {
	return []ProductStatus{StatusInStock, StatusOutOfStock, StatusPreorder, StatusDiscontinued}
}

// Valid reports whether s is one of the declared statuses.
func (s ProductStatus) Valid() bool {
	for _, known := range ProductStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Product represents an item in the catalog.
// Pointer fields are optional; nil means the value was not supplied.
type Product struct {
	ID              int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           *string          `json:"title" gorm:"type:varchar(100);not null"`
	Keywords        *string          `json:"keywords" gorm:"type:varchar(200)"`
	Description     *string          `json:"description" gorm:"type:text"`
	Rating          *int             `json:"rating"`
	QuantityInStock int              `json:"quantityInStock" gorm:"not null"`
	Dimensions      *string          `json:"dimensions" gorm:"type:varchar(50)"`
	Price           *decimal.Decimal `json:"price" gorm:"type:decimal(6,2);not null"`
	Status          ProductStatus    `json:"status" gorm:"type:varchar(32);not null"`
	Weight          *float64         `json:"weight"`
	DateAdded       *time.Time       `json:"dateAdded" gorm:"not null"`
}

// TableName overrides the table name used by GORM.
func (Product) TableName() string {
	return "products"
}

// Equal reports whether p and o hold the same values in every field.
// Prices compare by numeric value and timestamps by instant.
func (p Product) Equal(o Product) bool {
	if p.ID != o.ID || p.QuantityInStock != o.QuantityInStock || p.Status != o.Status {
		return false
	}
	if !equalPtr(p.Title, o.Title) || !equalPtr(p.Keywords, o.Keywords) ||
		!equalPtr(p.Description, o.Description) || !equalPtr(p.Dimensions, o.Dimensions) {
		return false
	}
	if !equalPtr(p.Rating, o.Rating) || !equalPtr(p.Weight, o.Weight) {
		return false
	}
	switch {
	case p.Price == nil || o.Price == nil:
		if p.Price != o.Price {
			return false
		}
	case !p.Price.Equal(*o.Price):
		return false
	}
	switch {
	case p.DateAdded == nil || o.DateAdded == nil:
		return p.DateAdded == o.DateAdded
	default:
		return p.DateAdded.Equal(*o.DateAdded)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
