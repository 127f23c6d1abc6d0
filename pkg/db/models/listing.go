package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// Listing is a seller's sellable inventory. Quantity is only mutated through
// conditional updates issued by the settlement engine.
type Listing struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID     uuid.UUID             `gorm:"column:seller_id;type:uuid;not null"`
	Title        string                `gorm:"column:title;type:text;not null"`
	Category     enums.ListingCategory `gorm:"column:category;type:listing_category;not null"`
	Quantity     decimal.Decimal       `gorm:"column:quantity;type:numeric(14,3);not null"`
	Unit         enums.QuantityUnit    `gorm:"column:unit;type:quantity_unit;not null"`
	PricePerUnit decimal.Decimal       `gorm:"column:price_per_unit;type:numeric(14,2);not null"`
	Status       enums.ListingStatus   `gorm:"column:status;type:listing_status;not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
