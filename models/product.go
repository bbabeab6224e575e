package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	Img         string          `gorm:"not null" json:"img"` // relative path in the content store
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	User        *User           `json:"user,omitempty"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
