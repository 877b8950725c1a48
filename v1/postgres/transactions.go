package postgres

import (
	"context"

	"gorm.io/gorm"
)

// cloneWithTx returns a Postgres whose DB() is bound to tx. The clone shares
// the parent's configuration but must not be used after fn returns.
func (p *Postgres) cloneWithTx(tx *gorm.DB) *Postgres {
	clone := &Postgres{
		cfg:             p.cfg,
		log:             p.log,
		shutdownSignal:  p.shutdownSignal,
		retryChanSignal: p.retryChanSignal,
	}
	clone.client.Store(tx)
	return clone
}

// Transaction runs fn inside a single database transaction. Returning an
// error from fn, or panicking, rolls everything back; returning nil commits.
// The returned error is passed through TranslateError.
func (p *Postgres) Transaction(ctx context.Context, fn func(tx *Postgres) error) error {
	err := p.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(p.cloneWithTx(tx))
	})
	return TranslateError(err)
}
