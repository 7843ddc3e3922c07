package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store defines the interface for all database operations.
type Store interface {
	UserStore
	RoomStore
	RentStore
	RoomRentStore
	InviteStore
	SubscriptionStore

	// DB exposes the underlying handle for health checks and tests.
	DB() *gorm.DB
	// WithTx runs fn inside one transaction. The Store passed to fn is bound
	// to that transaction; fn must not use the outer Store.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// utc normalises instants before they reach the database so that every
// stored and compared timestamp shares one offset.
func utc(t time.Time) time.Time {
	return t.UTC()
}
