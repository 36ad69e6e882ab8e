// Package csvfile provides a flat-file implementation of the
// storage.Store interface, keeping the catalog and the ledger in two
// CSV files whose first row is a fixed column header.
//
// Every read re-scans the file, so there is no in-process state to go
// stale. The ledger file is only ever appended to.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/tzuhanw/gearbot/internal/models"
	"github.com/tzuhanw/gearbot/internal/storage"
)

// Ensure CSVStore implements storage.Store
var _ storage.Store = (*CSVStore)(nil)

var (
	itemsHeader = []string{"item", "total", "note"}
	txHeader    = []string{"ts", "group_id", "user_id", "user_name", "item", "delta", "note"}
)

// CSVStore implements storage.Store over items.csv and transactions.csv
// in a single directory.
type CSVStore struct {
	itemsPath string
	txPath    string

	// Guards the read-rewrite cycle in UpsertItem and serializes
	// appends so concurrent writers cannot interleave partial rows.
	mu sync.Mutex
}

// New creates a CSVStore rooted at dir, creating the directory and both
// files (with headers) as needed. An existing file whose first row does
// not match the expected header is rejected rather than overwritten.
func New(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &CSVStore{
		itemsPath: filepath.Join(dir, "items.csv"),
		txPath:    filepath.Join(dir, "transactions.csv"),
	}
	if err := ensureHeader(s.itemsPath, itemsHeader); err != nil {
		return nil, err
	}
	if err := ensureHeader(s.txPath, txHeader); err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op; files are opened per call.
func (s *CSVStore) Close() error {
	return nil
}

// ensureHeader creates path with the header row if the file is missing
// or empty, and verifies the existing header otherwise.
func ensureHeader(path string, header []string) error {
	rows, err := readAll(path)
	if os.IsNotExist(err) || (err == nil && len(rows) == 0) {
		return writeAll(path, [][]string{header})
	}
	if err != nil {
		return err
	}
	if !slices.Equal(rows[0], header) {
		return fmt.Errorf("%s: unexpected header %v, want %v", path, rows[0], header)
	}
	return nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short or long rows
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func writeAll(path string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	// Atomic replace so readers never observe a half-written file.
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func appendRow(path string, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// UpsertItem creates or wholesale-replaces a catalog row, preserving
// file order for existing items.
func (s *CSVStore) UpsertItem(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readAll(s.itemsPath)
	if err != nil {
		return err
	}
	newRow := []string{item.Name, strconv.Itoa(item.Total), item.Note}
	for i, row := range rows[1:] {
		if len(row) >= 1 && row[0] == item.Name {
			rows[i+1] = newRow
			return writeAll(s.itemsPath, rows)
		}
	}
	return appendRow(s.itemsPath, newRow)
}

// GetItem retrieves a catalog row by name.
func (s *CSVStore) GetItem(ctx context.Context, name string) (*models.Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == name {
			return &items[i], nil
		}
	}
	return nil, storage.ErrItemNotFound
}

// ListItems returns all catalog rows in file order.
func (s *CSVStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := readAll(s.itemsPath)
	if err != nil {
		return nil, err
	}
	var items []models.Item
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		total, err := strconv.Atoi(row[1])
		if err != nil {
			// A corrupt total means the item effectively has no
			// capacity; keep the row visible rather than dropping it.
			total = 0
		}
		item := models.Item{Name: row[0], Total: total}
		if len(row) >= 3 {
			item.Note = row[2]
		}
		items = append(items, item)
	}
	return items, nil
}

// AppendTransaction appends a movement row to the ledger file.
func (s *CSVStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRow(s.txPath, []string{
		tx.Timestamp.Format(time.RFC3339),
		tx.GroupID,
		tx.UserID,
		tx.UserName,
		tx.Item,
		strconv.Itoa(tx.Delta),
		tx.Note,
	})
}

// ListTransactions scans the ledger file, oldest first. Rows that are
// too short are skipped; a row whose delta fails to parse is kept with
// delta 0 so one corrupt cell cannot poison a whole fold.
func (s *CSVStore) ListTransactions(ctx context.Context, f storage.Filter) ([]models.Transaction, error) {
	rows, err := readAll(s.txPath)
	if err != nil {
		return nil, err
	}
	var txs []models.Transaction
	for _, row := range rows[1:] {
		if len(row) < 6 {
			continue
		}
		tx := models.Transaction{
			GroupID:  row[1],
			UserID:   row[2],
			UserName: row[3],
			Item:     row[4],
		}
		if ts, err := time.Parse(time.RFC3339, row[0]); err == nil {
			tx.Timestamp = ts
		}
		if delta, err := strconv.Atoi(row[5]); err == nil {
			tx.Delta = delta
		}
		if len(row) >= 7 {
			tx.Note = row[6]
		}
		if f.Matches(&tx) {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}
