package repository

import "context"

// TxRepos exposes transaction-scoped repositories. Every call made through
// them participates in the same store transaction.
type TxRepos interface {
	Rides() RideTxRepository
	Bids() BidRepository
}

// TxManager runs a function within a single all-or-nothing store
// transaction. The function's error aborts the transaction; any prior
// writes made through the TxRepos are rolled back.
type TxManager interface {
	InTx(ctx context.Context, fn func(tx TxRepos) error) error
}
