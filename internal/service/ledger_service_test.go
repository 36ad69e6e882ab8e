package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tzuhanw/gearbot/internal/command"
	"github.com/tzuhanw/gearbot/internal/storage"
	"github.com/tzuhanw/gearbot/internal/storage/sqlite"
)

// setupLedger creates a LedgerService over a throwaway SQLite database.
func setupLedger(t *testing.T) (*LedgerService, storage.Store) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "gearbot-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewLedgerService(store), store
}

// run parses and executes a command line for the given actor.
func run(t *testing.T, svc *LedgerService, actor Actor, line string) string {
	t.Helper()
	reply, err := svc.Execute(context.Background(), command.Parse(command.Tokenize(line)), actor)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", line, err)
	}
	return reply
}

func countTransactions(t *testing.T, store storage.Store) int {
	t.Helper()
	txs, err := store.ListTransactions(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	return len(txs)
}

var (
	ann = Actor{GroupID: "g1", UserID: "u1", DisplayName: "Ann"}
	ben = Actor{GroupID: "g1", UserID: "u2", DisplayName: "Ben"}
)

func TestDefineItem(t *testing.T) {
	svc, _ := setupLedger(t)

	reply := run(t, svc, ann, "!additem projector 2 AV closet")
	if reply != "Item set: projector total = 2" {
		t.Errorf("reply = %q", reply)
	}

	// A fresh definition is fully available.
	reply = run(t, svc, ann, "!status projector")
	if reply != "projector: total 2, borrowed 0, available 2" {
		t.Errorf("status reply = %q", reply)
	}

	t.Run("redefinition replaces total wholesale", func(t *testing.T) {
		run(t, svc, ann, "!additem projector 5")
		reply := run(t, svc, ann, "!status projector")
		if reply != "projector: total 5, borrowed 0, available 5" {
			t.Errorf("status reply = %q", reply)
		}
	})
}

func TestBorrow(t *testing.T) {
	svc, store := setupLedger(t)
	run(t, svc, ann, "!additem projector 2")

	t.Run("success reports quantity and display name", func(t *testing.T) {
		reply := run(t, svc, ann, "!borrow projector 2")
		if reply != "Borrowed: projector x 2 (Ann)" {
			t.Errorf("reply = %q", reply)
		}
		reply = run(t, svc, ann, "!status projector")
		if reply != "projector: total 2, borrowed 2, available 0" {
			t.Errorf("status reply = %q", reply)
		}
	})

	t.Run("insufficient stock reports the shortfall", func(t *testing.T) {
		before := countTransactions(t, store)
		reply := run(t, svc, ben, "!borrow projector 1")
		if reply != "Not enough available: projector has 0 left, you asked for 1" {
			t.Errorf("reply = %q", reply)
		}
		if got := countTransactions(t, store); got != before {
			t.Errorf("rejected borrow wrote %d transactions", got-before)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		reply := run(t, svc, ann, "!borrow drone 1")
		if !strings.Contains(reply, "No such item: drone") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		before := countTransactions(t, store)
		for _, line := range []string{"!borrow projector 0", "!borrow projector -3"} {
			if reply := run(t, svc, ann, line); reply != "Quantity must be a positive integer." {
				t.Errorf("%q reply = %q", line, reply)
			}
		}
		if got := countTransactions(t, store); got != before {
			t.Errorf("rejected borrows wrote %d transactions", got-before)
		}
	})
}

func TestReturn(t *testing.T) {
	svc, store := setupLedger(t)
	run(t, svc, ann, "!additem projector 3")
	run(t, svc, ann, "!borrow projector 2")

	t.Run("over-return clamps to what the user holds", func(t *testing.T) {
		reply := run(t, svc, ann, "!return projector 5")
		want := "Returned: projector x 2 (Ann) (you only held 2, adjusted automatically)"
		if reply != want {
			t.Errorf("reply = %q, want %q", reply, want)
		}

		// Outstanding is now zero, so another return has nothing to do.
		reply = run(t, svc, ann, "!return projector 1")
		if reply != "You are not currently borrowing projector." {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("exact return has no adjustment note", func(t *testing.T) {
		run(t, svc, ann, "!borrow projector 1")
		reply := run(t, svc, ann, "!return projector 1")
		if reply != "Returned: projector x 1 (Ann)" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("returns are per-user", func(t *testing.T) {
		run(t, svc, ben, "!borrow projector 1")
		reply := run(t, svc, ann, "!return projector 1")
		if reply != "You are not currently borrowing projector." {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("unknown item is rejected", func(t *testing.T) {
		before := countTransactions(t, store)
		reply := run(t, svc, ann, "!return drone 1")
		if !strings.Contains(reply, "No such item: drone") {
			t.Errorf("reply = %q", reply)
		}
		if got := countTransactions(t, store); got != before {
			t.Errorf("rejected return wrote %d transactions", got-before)
		}
	})
}

func TestStatus(t *testing.T) {
	svc, _ := setupLedger(t)

	t.Run("empty catalog is explicit", func(t *testing.T) {
		reply := run(t, svc, ann, "!status")
		if reply != "Current inventory:\n(no items yet)" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("full report in catalog order", func(t *testing.T) {
		run(t, svc, ann, "!additem projector 2")
		run(t, svc, ann, "!additem tripod 4")
		run(t, svc, ann, "!borrow tripod 1")

		reply := run(t, svc, ann, "!status")
		want := "Current inventory:\n" +
			"projector: 2 total / 0 borrowed / 2 available\n" +
			"tripod: 4 total / 1 borrowed / 3 available"
		if reply != want {
			t.Errorf("reply = %q, want %q", reply, want)
		}
	})

	t.Run("negative availability is surfaced", func(t *testing.T) {
		// Shrinking the total below outstanding borrows is allowed;
		// the deficit must show up, not get hidden.
		run(t, svc, ann, "!additem tripod 0")
		reply := run(t, svc, ann, "!status tripod")
		if reply != "tripod: total 0, borrowed 1, available -1" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		reply := run(t, svc, ann, "!status drone")
		if reply != "No such item: drone (define it with !additem first)" {
			t.Errorf("reply = %q", reply)
		}
	})
}

func TestMine(t *testing.T) {
	svc, _ := setupLedger(t)
	run(t, svc, ann, "!additem tripod 5")
	run(t, svc, ann, "!additem cable 5")

	t.Run("nothing outstanding", func(t *testing.T) {
		reply := run(t, svc, ann, "!mine")
		if reply != "Still borrowed:\n(none)" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("net-zero items are omitted", func(t *testing.T) {
		run(t, svc, ann, "!borrow tripod 3")
		run(t, svc, ann, "!return tripod 3")
		run(t, svc, ann, "!borrow cable 1")

		reply := run(t, svc, ann, "!mine")
		if reply != "Still borrowed:\ncable x 1" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("only the caller's transactions count", func(t *testing.T) {
		reply := run(t, svc, ben, "!mine")
		if reply != "Still borrowed:\n(none)" {
			t.Errorf("reply = %q", reply)
		}
	})
}

func TestMalformedArgsLeaveNoTrace(t *testing.T) {
	svc, store := setupLedger(t)
	run(t, svc, ann, "!additem projector 2")
	before := countTransactions(t, store)

	for _, line := range []string{"!additem projector", "!borrow projector two", "!return projector"} {
		reply := run(t, svc, ann, line)
		if !strings.HasPrefix(reply, "usage:") {
			t.Errorf("%q reply = %q, want a usage hint", line, reply)
		}
	}
	if got := countTransactions(t, store); got != before {
		t.Errorf("malformed commands wrote %d transactions", got-before)
	}
}

func TestMiscCommands(t *testing.T) {
	svc, _ := setupLedger(t)

	t.Run("unrecognized input yields silence", func(t *testing.T) {
		reply := run(t, svc, ann, "good morning everyone")
		if reply != "" {
			t.Errorf("reply = %q, want empty", reply)
		}
	})

	t.Run("help", func(t *testing.T) {
		reply := run(t, svc, ann, "!help")
		if !strings.Contains(reply, "!borrow <item> <qty> [note]") {
			t.Errorf("help reply = %q", reply)
		}
	})

	t.Run("gid and uid", func(t *testing.T) {
		if reply := run(t, svc, ann, "!gid"); reply != "groupId: g1" {
			t.Errorf("gid reply = %q", reply)
		}
		if reply := run(t, svc, Actor{UserID: "u9", DisplayName: "u9"}, "!gid"); reply != "groupId: (not a group)" {
			t.Errorf("gid reply = %q", reply)
		}
		if reply := run(t, svc, ann, "!uid"); reply != "userId: u1" {
			t.Errorf("uid reply = %q", reply)
		}
	})

	t.Run("yesno answers yes or no", func(t *testing.T) {
		reply := run(t, svc, ann, "!yesno")
		if reply != "Yes" && reply != "No" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("pick chooses among the options", func(t *testing.T) {
		if reply := run(t, svc, ann, "!pick ramen"); reply != "ramen" {
			t.Errorf("reply = %q", reply)
		}
		reply := run(t, svc, ann, "!pick a b c")
		if reply != "a" && reply != "b" && reply != "c" {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("pick without options hints usage", func(t *testing.T) {
		if reply := run(t, svc, ann, "!pick"); !strings.HasPrefix(reply, "usage:") {
			t.Errorf("reply = %q", reply)
		}
	})
}
