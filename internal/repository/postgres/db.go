package postgres

import (
	"context"
	"database/sql"

	"hail/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// TxManager implements repository.TxManager over database/sql transactions.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// InTx begins a transaction, hands transaction-scoped repositories to fn,
// and commits if fn returns nil. Any error rolls the transaction back.
func (m *TxManager) InTx(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&txRepos{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// txRepos hands out repositories bound to a single transaction.
type txRepos struct {
	tx *sql.Tx
}

func (r *txRepos) Rides() repository.RideTxRepository {
	return NewRideRepositoryWithTx(r.tx)
}

func (r *txRepos) Bids() repository.BidRepository {
	return NewBidRepositoryWithTx(r.tx)
}
