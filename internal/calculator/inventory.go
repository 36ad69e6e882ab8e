// Package calculator derives inventory figures by folding the
// transaction ledger. Every function is pure: it works on the slices it
// is handed, holds no state, and recomputes from scratch on each call,
// so identical inputs always produce identical outputs.
package calculator

import "github.com/tzuhanw/gearbot/internal/models"

// StatusRow is one line of a full inventory report.
type StatusRow struct {
	Item      string
	Total     int
	Borrowed  int
	Available int
}

// Holding is a user's net outstanding quantity for one item.
type Holding struct {
	Item     string
	Quantity int
}

// Borrowed sums deltas for the given item across all users. The sum is
// reported literally, without clamping: under correct operation it is
// non-negative, and a negative sum means the history itself is skewed.
func Borrowed(txs []models.Transaction, item string) int {
	sum := 0
	for _, tx := range txs {
		if tx.Item == item {
			sum += tx.Delta
		}
	}
	return sum
}

// Available computes item.Total minus the borrowed sum. No floor at
// zero: a negative result means capacity was defined below what is
// already out, and callers are expected to surface that.
func Available(item *models.Item, txs []models.Transaction) int {
	return item.Total - Borrowed(txs, item.Name)
}

// UserOutstanding sums deltas for transactions matching both the user
// and the item: the net quantity that user currently holds.
func UserOutstanding(txs []models.Transaction, userID, item string) int {
	sum := 0
	for _, tx := range txs {
		if tx.UserID == userID && tx.Item == item {
			sum += tx.Delta
		}
	}
	return sum
}

// StatusReport produces one row per registered item, in catalog order.
func StatusReport(items []models.Item, txs []models.Transaction) []StatusRow {
	report := make([]StatusRow, 0, len(items))
	for i := range items {
		borrowed := Borrowed(txs, items[i].Name)
		report = append(report, StatusRow{
			Item:      items[i].Name,
			Total:     items[i].Total,
			Borrowed:  borrowed,
			Available: items[i].Total - borrowed,
		})
	}
	return report
}

// Holdings tallies a user's net outstanding quantity per item, keeping
// only strictly positive nets. Items appear in the order the user first
// touched them; zero and negative nets (e.g. from an over-return
// anomaly) are omitted, as they are not something still owed.
func Holdings(txs []models.Transaction, userID string) []Holding {
	tally := make(map[string]int)
	var order []string
	for _, tx := range txs {
		if tx.UserID != userID {
			continue
		}
		if _, seen := tally[tx.Item]; !seen {
			order = append(order, tx.Item)
		}
		tally[tx.Item] += tx.Delta
	}

	var holdings []Holding
	for _, item := range order {
		if tally[item] > 0 {
			holdings = append(holdings, Holding{Item: item, Quantity: tally[item]})
		}
	}
	return holdings
}
