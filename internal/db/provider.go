package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Provider owns the connection pool and hands out scoped sessions.
type Provider struct {
	db *gorm.DB
}

func NewProvider(gdb *gorm.DB) *Provider {
	return &Provider{db: gdb}
}

// WithSession runs fn inside a transaction bound to ctx. The session is
// committed when fn returns nil and rolled back when fn returns an error,
// panics, or ctx is cancelled. The underlying connection goes back to the
// pool in every case.
func (p *Provider) WithSession(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// Ping checks that a connection can be acquired from the pool.
func (p *Provider) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases every pooled connection.
func (p *Provider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	return sqlDB.Close()
}
