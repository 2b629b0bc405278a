package models

import "time"

// Product is one storefront package. Checkout happens on an external hosted
// page; CheckoutURL is handed to the client as-is and no payment state ever
// flows back through this service.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Bottles     int       `gorm:"not null" json:"bottles"`
	PriceCents  int       `gorm:"not null" json:"price_cents"`
	Badge       string    `gorm:"size:64" json:"badge,omitempty"`
	Featured    bool      `gorm:"default:false" json:"featured"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CheckoutURL string    `gorm:"size:512;not null" json:"checkout_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
