package models

import "time"

// Category is never hard-deleted; destroy flips IsAvailable.
type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsAvailable bool      `gorm:"not null;default:true;index" json:"is_available"`
	Products    []Product `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
