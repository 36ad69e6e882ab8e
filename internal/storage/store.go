// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/tzuhanw/gearbot/internal/models"
)

// ErrItemNotFound is returned by GetItem when the named item is not in
// the catalog. Callers check it with errors.Is to distinguish "absent"
// from infrastructure failure.
var ErrItemNotFound = errors.New("item not found")

// Filter narrows a transaction scan. The zero value matches all
// transactions; empty fields are ignored.
type Filter struct {
	// Item restricts to transactions on this item name.
	Item string

	// UserID restricts to transactions by this user.
	UserID string
}

// Matches reports whether tx passes the filter.
func (f Filter) Matches(tx *models.Transaction) bool {
	if f.Item != "" && tx.Item != f.Item {
		return false
	}
	if f.UserID != "" && tx.UserID != f.UserID {
		return false
	}
	return true
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, CSV files,
// etc.) without changing the service layer.
//
// Implementations must provide atomic upserts for UpsertItem and
// append-atomicity for AppendTransaction; the service layer performs no
// locking of its own.
type Store interface {
	// UpsertItem creates the item if absent, else overwrites its
	// total and note entirely. Last write wins on concurrent upserts
	// of the same name.
	UpsertItem(ctx context.Context, item *models.Item) error

	// GetItem retrieves an item by name. Returns ErrItemNotFound when
	// the item is not registered.
	GetItem(ctx context.Context, name string) (*models.Item, error)

	// ListItems returns all registered items. Order carries no
	// meaning but is stable across repeated calls.
	ListItems(ctx context.Context) ([]models.Item, error)

	// AppendTransaction durably appends a movement to the ledger.
	// Never fails silently; any error is an infrastructure fault.
	AppendTransaction(ctx context.Context, tx *models.Transaction) error

	// ListTransactions returns ledger entries matching the filter, in
	// append order. A zero Filter returns the full ledger.
	ListTransactions(ctx context.Context, f Filter) ([]models.Transaction, error)

	// Close releases any resources held by the store.
	Close() error
}
