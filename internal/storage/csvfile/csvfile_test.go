package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzuhanw/gearbot/internal/models"
	"github.com/tzuhanw/gearbot/internal/storage"
)

func TestNewCreatesHeaders(t *testing.T) {
	dir := t.TempDir()
	_, err := New(dir)
	require.NoError(t, err)

	items, err := os.ReadFile(filepath.Join(dir, "items.csv"))
	require.NoError(t, err)
	assert.Equal(t, "item,total,note", strings.TrimSpace(string(items)))

	txs, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ts,group_id,user_id,user_name,item,delta,note", strings.TrimSpace(string(txs)))
}

func TestNewRejectsForeignHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.csv"), []byte("a,b,c\n"), 0644))

	_, err := New(dir)
	assert.ErrorContains(t, err, "unexpected header")
}

func TestUpsertItem(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.UpsertItem(ctx, &models.Item{Name: "projector", Total: 2, Note: "AV closet"}))
	require.NoError(t, store.UpsertItem(ctx, &models.Item{Name: "tripod", Total: 4}))

	// Overwrite keeps the row's position and replaces total and note.
	require.NoError(t, store.UpsertItem(ctx, &models.Item{Name: "projector", Total: 5}))

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{
		{Name: "projector", Total: 5},
		{Name: "tripod", Total: 4},
	}, items)

	got, err := store.GetItem(ctx, "tripod")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)

	_, err = store.GetItem(ctx, "nope")
	assert.True(t, errors.Is(err, storage.ErrItemNotFound))
}

func TestAppendAndListTransactions(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{
		GroupID: "g1", UserID: "u1", UserName: "Ann", Item: "projector", Delta: 2,
	}))
	require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{
		GroupID: "g1", UserID: "u2", UserName: "Ben", Item: "projector", Delta: -1, Note: "half back",
	}))
	require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{
		GroupID: "g1", UserID: "u1", UserName: "Ann", Item: "tripod", Delta: 1,
	}))

	all, err := store.ListTransactions(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, -1, all[1].Delta)
	assert.Equal(t, "half back", all[1].Note)
	assert.False(t, all[0].Timestamp.IsZero())

	filtered, err := store.ListTransactions(ctx, storage.Filter{Item: "projector", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Delta)
}

func TestListTransactionsToleratesCorruptRows(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.AppendTransaction(ctx, &models.Transaction{
		UserID: "u1", Item: "projector", Delta: 2,
	}))

	// Hand-mangle the ledger the way a shared spreadsheet gets
	// mangled: one row with a non-numeric delta, one truncated row.
	f, err := os.OpenFile(filepath.Join(dir, "transactions.csv"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("2024-01-02T15:04:05Z,g1,u1,Ann,projector,oops,\nbad,row\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	txs, err := store.ListTransactions(ctx, storage.Filter{Item: "projector"})
	require.NoError(t, err)

	// The corrupt delta folds as 0 and the truncated row is skipped;
	// neither aborts the scan.
	require.Len(t, txs, 2)
	assert.Equal(t, 2, txs[0].Delta)
	assert.Equal(t, 0, txs[1].Delta)
}
