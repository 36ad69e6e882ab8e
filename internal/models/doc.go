// Package models defines the core domain models for gearbot.
//
// # Models
//
//   - Item: a catalog entry for a piece of shared equipment, with its
//     total owned quantity
//   - Transaction: one movement of equipment (a borrow or a return)
//
// # Design Principles
//
// 1. **Ledger as source of truth**: borrowed/available quantities are
// never stored; they are recomputed by folding Transactions. Item.Total
// is the only authoritative number kept outside the ledger.
//
// 2. **Append-only history**: Transactions are written exactly once and
// never edited or deleted, so the ledger doubles as an audit trail and
// survives partial corruption (a bad row costs one row, not the total).
//
// 3. **Loose coupling to the catalog**: a Transaction references its
// item by name and does not require the Item to still exist, so
// outstanding balances remain computable even if the catalog changes.
package models
