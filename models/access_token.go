package models

import "time"

// AccessToken backs an issued bearer token. The ID is the JWT "jti"; a token
// whose row is gone is revoked.
type AccessToken struct {
	ID         string     `gorm:"primaryKey;size:36"`
	UserID     uint       `gorm:"index;not null"`
	User       User       `gorm:"constraint:OnDelete:CASCADE"`
	Name       string     `gorm:"size:64"`
	ExpiresAt  time.Time  `gorm:"not null"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
