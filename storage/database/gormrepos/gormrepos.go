// Package gormrepos implements the domain repositories on top of GORM.
package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
)

type txKey struct{}

// Transactor runs functions inside a GORM transaction stored in the context.
type Transactor struct {
	db *gorm.DB
}

var _ core.Transactor = (*Transactor)(nil) // interface compliance check

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx starts a transaction, unless ctx already carries one, in which case fn joins it.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// AutoMigrate creates the schema from the storage models.
// Production databases are migrated with goose; this serves tests running on SQLite.
func AutoMigrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(allModels...), "auto-migrating")
}

// trapNotFound maps gorm "record not found" to notFound.
func trapNotFound(err, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapDuplicate maps unique constraint violations to conflict.
// Requires gorm.Config.TranslateError.
func trapDuplicate(err, conflict error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return errors.Wrap(err, msg)
}

func applyOrdering(q *gorm.DB, ordering []core.DBOrdering) *gorm.DB {
	for _, ord := range ordering {
		q = q.Order(ord.String())
	}
	return q
}

func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
