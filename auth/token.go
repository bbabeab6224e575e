package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens issues HS256 bearer tokens. Every token has an access_tokens row
// keyed by its jti, and deleting the row revokes the token.
type Tokens struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(db *gorm.DB, secret string, ttl time.Duration) *Tokens {
	return &Tokens{db: db, secret: []byte(secret), ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// WithDB returns a copy bound to db, typically a transaction.
func (t *Tokens) WithDB(db *gorm.DB) *Tokens {
	cp := *t
	cp.db = db
	return &cp
}

func (t *Tokens) Issue(ctx context.Context, userID uint) (string, error) {
	now := t.now().UTC()
	row := models.AccessToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "auth_token",
		ExpiresAt: now.Add(t.ttl),
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}

	claims := jwt.RegisteredClaims{
		ID:        row.ID,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id behind raw, or ErrInvalidToken when the token
// is malformed, expired, signed with another key, or revoked.
func (t *Tokens) Verify(ctx context.Context, raw string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return 0, ErrInvalidToken
	}

	now := t.now().UTC()
	res := t.db.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ? AND user_id = ? AND expires_at > ?", claims.ID, userID, now).
		UpdateColumn("last_used_at", now)
	if res.Error != nil {
		return 0, fmt.Errorf("look up access token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// RevokeAll deletes every token of userID.
func (t *Tokens) RevokeAll(ctx context.Context, userID uint) error {
	if err := t.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AccessToken{}).Error; err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}
