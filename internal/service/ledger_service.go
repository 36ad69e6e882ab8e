// Package service executes parsed commands against the ledger store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/tzuhanw/gearbot/internal/calculator"
	"github.com/tzuhanw/gearbot/internal/command"
	"github.com/tzuhanw/gearbot/internal/models"
	"github.com/tzuhanw/gearbot/internal/storage"
)

// helpMessage is the static command reference for !help.
const helpMessage = "Equipment lending commands:\n" +
	"!additem <item> <total> [note]\n" +
	"!borrow <item> <qty> [note]\n" +
	"!return <item> <qty> [note]\n" +
	"!status [item]  show inventory\n" +
	"!mine           show what you still hold\n" +
	"Other: !help"

// Actor identifies who issued a command.
type Actor struct {
	// GroupID is the chat group the command came from; empty outside
	// groups.
	GroupID string

	// UserID is the opaque platform identifier.
	UserID string

	// DisplayName is the resolved profile name, falling back to
	// UserID when the lookup failed.
	DisplayName string
}

// LedgerService executes commands against the ledger.
//
// Every quantity it reports is recomputed from the transaction log on
// the spot; nothing is cached between calls. The service takes no locks
// of its own: the check-then-append in Borrow and Return can race when
// two users grab the last unit at once, and both appends will land.
// That over-commitment is accepted (and visible in !status) rather than
// masked; serializing it would need a conditional append from the
// Store.
type LedgerService struct {
	store   storage.Store
	metrics *Metrics
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store, metrics: NewMetrics()}
}

// Execute runs one command for the given actor and returns the reply
// text. An empty reply with a nil error means "send nothing" (the only
// command that produces it is Unrecognized).
//
// User mistakes and business-rule rejections come back as reply text,
// never as errors. A non-nil error always means the storage layer
// failed; callers log it and must not relay it verbatim to the chat.
func (s *LedgerService) Execute(ctx context.Context, cmd command.Command, actor Actor) (string, error) {
	if cmd.Kind == command.Unrecognized {
		return "", nil
	}
	if cmd.Usage != "" {
		s.metrics.CommandsTotal.WithLabelValues(cmd.Kind.String(), "rejected").Inc()
		return cmd.Usage, nil
	}

	reply, ok, err := s.execute(ctx, cmd, actor)
	if err != nil {
		s.metrics.StorageFailuresTotal.Inc()
		return "", fmt.Errorf("%s: %w", cmd.Kind, err)
	}
	outcome := "rejected"
	if ok {
		outcome = "ok"
	}
	s.metrics.CommandsTotal.WithLabelValues(cmd.Kind.String(), outcome).Inc()
	return reply, nil
}

// execute dispatches to the per-command handlers. The ok result is
// false for business-rule rejections (metrics only; the reply is sent
// either way).
func (s *LedgerService) execute(ctx context.Context, cmd command.Command, actor Actor) (string, bool, error) {
	switch cmd.Kind {
	case command.DefineItem:
		return s.defineItem(ctx, cmd)
	case command.Borrow:
		return s.borrow(ctx, cmd, actor)
	case command.Return:
		return s.returnItem(ctx, cmd, actor)
	case command.Status:
		return s.status(ctx, cmd)
	case command.Mine:
		return s.mine(ctx, actor)
	case command.Help:
		return helpMessage, true, nil
	case command.GroupID:
		if actor.GroupID == "" {
			return "groupId: (not a group)", true, nil
		}
		return "groupId: " + actor.GroupID, true, nil
	case command.UserID:
		return "userId: " + actor.UserID, true, nil
	case command.YesNo:
		answers := []string{"Yes", "No"}
		return answers[rand.IntN(len(answers))], true, nil
	case command.Pick:
		if len(cmd.Options) == 0 {
			return "usage: !pick <option> <option> ...", false, nil
		}
		return cmd.Options[rand.IntN(len(cmd.Options))], true, nil
	}
	return "", false, nil
}

// defineItem creates or redefines a catalog entry. It always succeeds:
// there is deliberately no capacity check here, so a total can be set
// below what is already borrowed and availability goes negative, which
// is exactly the over-commitment signal !status should show.
func (s *LedgerService) defineItem(ctx context.Context, cmd command.Command) (string, bool, error) {
	item := &models.Item{Name: cmd.Item, Total: cmd.Qty, Note: cmd.Note}
	if err := s.store.UpsertItem(ctx, item); err != nil {
		return "", false, err
	}
	slog.Info("item defined", "item", item.Name, "total", item.Total)
	return fmt.Sprintf("Item set: %s total = %d", item.Name, item.Total), true, nil
}

func (s *LedgerService) borrow(ctx context.Context, cmd command.Command, actor Actor) (string, bool, error) {
	item, err := s.store.GetItem(ctx, cmd.Item)
	if errors.Is(err, storage.ErrItemNotFound) {
		return itemNotFound(cmd.Item), false, nil
	}
	if err != nil {
		return "", false, err
	}
	if cmd.Qty <= 0 {
		return "Quantity must be a positive integer.", false, nil
	}

	txs, err := s.store.ListTransactions(ctx, storage.Filter{Item: cmd.Item})
	if err != nil {
		return "", false, err
	}
	available := calculator.Available(item, txs)
	if available < cmd.Qty {
		return fmt.Sprintf("Not enough available: %s has %d left, you asked for %d",
			cmd.Item, available, cmd.Qty), false, nil
	}

	if err := s.append(ctx, cmd, actor, cmd.Qty); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Borrowed: %s x %d (%s)", cmd.Item, cmd.Qty, actor.DisplayName), true, nil
}

func (s *LedgerService) returnItem(ctx context.Context, cmd command.Command, actor Actor) (string, bool, error) {
	// The balance below is ledger-derived and would be fine without
	// the catalog lookup, but returns against unknown items have
	// always been rejected and callers rely on that.
	if _, err := s.store.GetItem(ctx, cmd.Item); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return itemNotFound(cmd.Item), false, nil
		}
		return "", false, err
	}
	if cmd.Qty <= 0 {
		return "Quantity must be a positive integer.", false, nil
	}

	txs, err := s.store.ListTransactions(ctx, storage.Filter{Item: cmd.Item, UserID: actor.UserID})
	if err != nil {
		return "", false, err
	}
	have := calculator.UserOutstanding(txs, actor.UserID, cmd.Item)
	if have <= 0 {
		return fmt.Sprintf("You are not currently borrowing %s.", cmd.Item), false, nil
	}

	// Clamp to what the user actually holds; returning more than you
	// borrowed would drive the ledger negative.
	real := min(cmd.Qty, have)
	if err := s.append(ctx, cmd, actor, -real); err != nil {
		return "", false, err
	}
	reply := fmt.Sprintf("Returned: %s x %d (%s)", cmd.Item, real, actor.DisplayName)
	if real < cmd.Qty {
		reply += fmt.Sprintf(" (you only held %d, adjusted automatically)", have)
	}
	return reply, true, nil
}

func (s *LedgerService) status(ctx context.Context, cmd command.Command) (string, bool, error) {
	if cmd.Item != "" {
		item, err := s.store.GetItem(ctx, cmd.Item)
		if errors.Is(err, storage.ErrItemNotFound) {
			return itemNotFound(cmd.Item), false, nil
		}
		if err != nil {
			return "", false, err
		}
		txs, err := s.store.ListTransactions(ctx, storage.Filter{Item: cmd.Item})
		if err != nil {
			return "", false, err
		}
		borrowed := calculator.Borrowed(txs, cmd.Item)
		return fmt.Sprintf("%s: total %d, borrowed %d, available %d",
			item.Name, item.Total, borrowed, item.Total-borrowed), true, nil
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return "", false, err
	}
	txs, err := s.store.ListTransactions(ctx, storage.Filter{})
	if err != nil {
		return "", false, err
	}
	report := calculator.StatusReport(items, txs)
	if len(report) == 0 {
		return "Current inventory:\n(no items yet)", true, nil
	}
	lines := make([]string, 0, len(report))
	for _, row := range report {
		lines = append(lines, fmt.Sprintf("%s: %d total / %d borrowed / %d available",
			row.Item, row.Total, row.Borrowed, row.Available))
	}
	return "Current inventory:\n" + strings.Join(lines, "\n"), true, nil
}

func (s *LedgerService) mine(ctx context.Context, actor Actor) (string, bool, error) {
	txs, err := s.store.ListTransactions(ctx, storage.Filter{UserID: actor.UserID})
	if err != nil {
		return "", false, err
	}
	holdings := calculator.Holdings(txs, actor.UserID)
	if len(holdings) == 0 {
		return "Still borrowed:\n(none)", true, nil
	}
	lines := make([]string, 0, len(holdings))
	for _, h := range holdings {
		lines = append(lines, fmt.Sprintf("%s x %d", h.Item, h.Quantity))
	}
	return "Still borrowed:\n" + strings.Join(lines, "\n"), true, nil
}

// append records one signed movement in the ledger.
func (s *LedgerService) append(ctx context.Context, cmd command.Command, actor Actor, delta int) error {
	tx := &models.Transaction{
		GroupID:  actor.GroupID,
		UserID:   actor.UserID,
		UserName: actor.DisplayName,
		Item:     cmd.Item,
		Delta:    delta,
		Note:     cmd.Note,
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return err
	}
	slog.Info("transaction appended",
		"item", tx.Item,
		"delta", tx.Delta,
		"user_id", tx.UserID,
		"group_id", tx.GroupID,
	)
	return nil
}

func itemNotFound(item string) string {
	return fmt.Sprintf("No such item: %s (define it with !additem first)", item)
}
