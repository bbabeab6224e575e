package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"-"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// CartItem is the cart/product pivot. Price is the product price when the
// line was last written, not a live value.
type CartItem struct {
	ID        uint            `gorm:"primaryKey"`
	CartID    uint            `gorm:"uniqueIndex:idx_cart_product;not null"`
	ProductID uint            `gorm:"uniqueIndex:idx_cart_product;not null"`
	Product   Product         `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal is price × quantity for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
