package models

import "time"

// Supply is an input (seed, fertiliser, tool) farmers can buy
type Supply struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name              string    `json:"name" gorm:"not null;index"`
	Category          string    `json:"category" gorm:"not null"`
	Description       string    `json:"description,omitempty"`
	Price             float64   `json:"price" gorm:"not null"`
	QuantityAvailable int       `json:"quantity_available" gorm:"not null"`
	Unit              string    `json:"unit" gorm:"not null"`
	SupplierName      string    `json:"supplier_name" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName keeps the plural used by the marketplace schema.
func (Supply) TableName() string {
	return "supplies"
}
