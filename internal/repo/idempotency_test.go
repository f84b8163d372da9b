package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-product-api/internal/domain"
)

func newIdemDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetIdempotency_BlankScopeOrKey_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	if rec, err := GetIdempotency(context.Background(), db, "   ", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank scope, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "products", "", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:         "expired",
		Scope:      "products",
		Key:        "k1",
		ResourceID: "p1",
		Status:     201,
		CreatedAt:  now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "products", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}

	rec2, err2 := GetIdempotency(context.Background(), db, "products", "missing", now)
	if rec2 != nil || err2 != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec2, err2)
	}
}

func TestIdempotencyRepo_SaveGetAndDuplicate(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	r := NewIdempotencyRepo(db, 90*time.Minute)
	ctx := context.Background()
	start := time.Now().UTC()

	if err := r.Save(ctx, "products", "k9", "p9", 201); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := r.Get(ctx, "products", "k9", time.Now().UTC())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ResourceID != "p9" || rec.Status != 201 || rec.ID == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	if err := r.Save(ctx, "products", "k9", "pX", 201); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateIdempotency_ReusesExpiredKey(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	old := &domain.Idempotency{
		ID:         "old",
		Scope:      "products",
		Key:        "k1",
		ResourceID: "p-old",
		Status:     201,
		CreatedAt:  now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := CreateIdempotency(context.Background(), db, "products", "k1", "p-new", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ResourceID != "p-new" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestNewIdempotencyRepo_DefaultTTL(t *testing.T) {
	if r := NewIdempotencyRepo(nil, 0); r.TTL != 24*time.Hour {
		t.Fatalf("default TTL = %v", r.TTL)
	}
}

// Generic DB error path: attempt insert without migrating the table.
func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newIdemDB(t)
	_, err := CreateIdempotency(context.Background(), db, "products", "kX", "pX", 201, time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}

func TestIdempotencyRepo_RebindMovesKeyAndRestartsTTL(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	r := NewIdempotencyRepo(db, time.Hour)
	ctx := context.Background()

	if err := r.Save(ctx, "products", "k1", "p-old", 201); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, _ := r.Get(ctx, "products", "k1", time.Now().UTC())

	if err := r.Rebind(ctx, "products", "k1", "p-new", 201); err != nil {
		t.Fatalf("Rebind: %v", err)
	}
	rec, err := r.Get(ctx, "products", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ResourceID != "p-new" || rec.ID != before.ID {
		t.Fatalf("expected same row pointing at p-new, got %+v", rec)
	}
	if rec.ExpiresAt.Before(before.ExpiresAt) {
		t.Fatalf("TTL not restarted: %v < %v", rec.ExpiresAt, before.ExpiresAt)
	}

	var n int64
	db.Model(&domain.Idempotency{}).Where("scope = ? AND key = ?", "products", "k1").Count(&n)
	if n != 1 {
		t.Fatalf("expected one row, got %d", n)
	}
}

func TestRebindIdempotency_InsertsWhenMissing(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	rec, err := RebindIdempotency(context.Background(), db, "products", "fresh", "p1", 201, time.Hour)
	if err != nil {
		t.Fatalf("RebindIdempotency: %v", err)
	}
	if rec.ResourceID != "p1" || rec.ID == "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
