package models

import "time"

// Transaction records one movement of equipment: a borrow (positive
// delta) or a return (negative delta). Transactions are immutable and
// the ledger they form is append-only.
type Transaction struct {
	// Timestamp is when the movement was recorded. Persisted as
	// ISO-8601 with timezone offset.
	Timestamp time.Time

	// GroupID is the chat group the command came from. Empty for
	// direct (non-group) senders.
	GroupID string

	// UserID is the opaque platform identifier of the actor.
	UserID string

	// UserName is the actor's display name at the time of the
	// movement. Best effort; may equal UserID when profile lookup
	// fails.
	UserName string

	// Item names the equipment moved. Not required to reference a
	// registered Item at write time.
	Item string

	// Delta is the signed quantity: positive = borrowed, negative =
	// returned.
	Delta int

	// Note is optional free text supplied with the command.
	Note string
}
