// Package store is the authoritative store (§4.G): the single
// durable, transactional source of truth for invoices, batches,
// transactions, and audit entries. Every cross-component invariant in
// the system lives here; nothing else holds a cross-entity in-memory
// graph (§9 "Arena + index versus pointer graphs") — navigation is
// always a query through this package.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"payrecon/internal/domain"
	"payrecon/pkg/logger"
)

// Store wraps a *sql.DB with the query set the core depends on. It is
// safe for concurrent use; callers never hold a Store-level lock
// across requests (§5 "no in-memory locks span requests").
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB { return s.db }

// Ping reports whether the store is reachable, used by the readiness
// health check (SPEC_FULL.md supplement 4).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx runs fn inside a single transaction, rolling back on any
// error fn returns and on panic (§4.G with_tx, §4.L step 1-5). This is
// the smallest unit of abort in the system (§5).
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewError(domain.KindTransientStore, "begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.GetLogger().WithError(rbErr).Error("failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewError(domain.KindTransientStore, "commit transaction", err)
	}

	return nil
}

func wrapStoreErr(action string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return domain.NewError(domain.KindNotFound, action, err)
	}
	return domain.NewError(domain.KindTransientStore, action, err)
}

func sprintfArgs(n int, start int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("$%d", start+i)
	}
	return out
}
