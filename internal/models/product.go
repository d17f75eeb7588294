package models

import (
	"time"
)

// Product statuses
const (
	ProductStatusAvailable = "available"
	ProductStatusSoldOut   = "sold_out"
)

// DefaultUnit is used when a product is listed without a unit.
const DefaultUnit = "kg"

// Product is a farmer's listing in the marketplace catalog
type Product struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	FarmerID          string     `json:"farmer_id" gorm:"type:uuid;not null;index"`
	Name              string     `json:"name" gorm:"not null"`
	Description       string     `json:"description,omitempty"`
	QuantityAvailable int        `json:"quantity_available" gorm:"not null"`
	PricePerUnit      float64    `json:"price_per_unit" gorm:"not null"`
	Unit              string     `json:"unit" gorm:"not null"`
	Status            string     `json:"status" gorm:"not null;index"`
	HarvestDate       *time.Time `json:"harvest_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Farmer *Profile `json:"farmer,omitempty" gorm:"foreignKey:FarmerID;references:UserID"`
}

// FarmerName returns the owner's display name, or "Unknown".
func (p *Product) FarmerName() string {
	if p.Farmer == nil || p.Farmer.DisplayName == "" {
		return "Unknown"
	}
	return p.Farmer.DisplayName
}

// Profile is a marketplace member (farmer, vendor, distributor, consumer)
type Profile struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
