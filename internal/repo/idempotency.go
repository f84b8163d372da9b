// Package repo implements the data layer. This file provides the
// Idempotency repository used to implement safe-retry semantics for POST
// endpoints.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-product-api/internal/domain"
)

var (
	// ErrNotFound is returned when no live idempotency record matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates that a record already exists for (scope, key).
	ErrDuplicate = errors.New("duplicate")
)

// IdempotencyRepo persists idempotency records through GORM.
type IdempotencyRepo struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewIdempotencyRepo returns a repository bound to db. ttl <= 0 defaults to 24h.
func NewIdempotencyRepo(db *gorm.DB, ttl time.Duration) *IdempotencyRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyRepo{DB: db, TTL: ttl}
}

// Get returns a non-expired record for (scope, key) or ErrNotFound.
func (r *IdempotencyRepo) Get(ctx context.Context, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return GetIdempotency(ctx, r.DB, scope, key, now)
}

// Save records that (scope, key) produced resourceID with status.
func (r *IdempotencyRepo) Save(ctx context.Context, scope, key, resourceID string, status int) error {
	_, err := CreateIdempotency(ctx, r.DB, scope, key, resourceID, status, r.TTL)
	return err
}

// Rebind points (scope, key) at resourceID, replacing whatever the key
// produced before. It is used when the earlier resource no longer exists.
func (r *IdempotencyRepo) Rebind(ctx context.Context, scope, key, resourceID string, status int) error {
	_, err := RebindIdempotency(ctx, r.DB, scope, key, resourceID, status, r.TTL)
	return err
}

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(scope) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND key = ? AND expires_at > ?", scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique
// violation. Expired rows for the same (scope, key) are purged first so the
// key can be reused once its TTL has passed.
func CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).
		Where("scope = ? AND key = ? AND expires_at <= ?", scope, key, now).
		Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, err
	}

	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// RebindIdempotency moves a record to resourceID and restarts its TTL. When
// no row exists for (scope, key) it inserts one.
func RebindIdempotency(ctx context.Context, db *gorm.DB, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Idempotency{}).
		Where("scope = ? AND key = ?", scope, key).
		Updates(map[string]any{
			"resource_id": resourceID,
			"status":      status,
			"created_at":  now,
			"expires_at":  now.Add(ttl),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return CreateIdempotency(ctx, db, scope, key, resourceID, status, ttl)
	}
	return GetIdempotency(ctx, db, scope, key, now)
}
