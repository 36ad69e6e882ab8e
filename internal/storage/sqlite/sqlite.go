// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tzuhanw/gearbot/internal/models"
	"github.com/tzuhanw/gearbot/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertItem creates or wholesale-replaces a catalog entry.
func (s *SQLiteStore) UpsertItem(ctx context.Context, item *models.Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (item, total, note) VALUES (?, ?, ?)
		 ON CONFLICT(item) DO UPDATE SET total = excluded.total, note = excluded.note`,
		item.Name, item.Total, item.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by name.
func (s *SQLiteStore) GetItem(ctx context.Context, name string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.QueryRowContext(ctx,
		"SELECT item, total, note FROM items WHERE item = ?",
		name,
	).Scan(&item.Name, &item.Total, &item.Note)
	if err == sql.ErrNoRows {
		return nil, storage.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns all catalog entries in insertion order.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item, total, note FROM items ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.Name, &item.Total, &item.Note); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// AppendTransaction appends a movement to the ledger.
func (s *SQLiteStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (ts, group_id, user_id, user_name, item, delta, note) VALUES (?, ?, ?, ?, ?, ?, ?)",
		tx.Timestamp.Format(time.RFC3339), tx.GroupID, tx.UserID, tx.UserName, tx.Item, tx.Delta, tx.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// ListTransactions returns ledger entries matching the filter, oldest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, f storage.Filter) ([]models.Transaction, error) {
	query := "SELECT ts, group_id, user_id, user_name, item, delta, note FROM transactions"
	var conds []string
	var args []any
	if f.Item != "" {
		conds = append(conds, "item = ?")
		args = append(args, f.Item)
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var ts string
		if err := rows.Scan(&ts, &tx.GroupID, &tx.UserID, &tx.UserName, &tx.Item, &tx.Delta, &tx.Note); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			tx.Timestamp = parsed
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}
