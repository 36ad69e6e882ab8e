package models

// Item is a catalog entry for a piece of shared equipment.
// Defined (or redefined) by the !additem command.
type Item struct {
	// Name identifies the item. Case-sensitive, unique within a
	// group's catalog.
	Name string

	// Total is the full owned quantity. Authoritative capacity:
	// availability is Total minus the ledger's borrowed sum. Redefining
	// an item replaces Total wholesale; it is never incremented.
	//
	// Reducing Total below what is currently borrowed is allowed and
	// surfaces as negative availability, signaling over-commitment.
	Total int

	// Note is an optional free-text description.
	Note string
}
