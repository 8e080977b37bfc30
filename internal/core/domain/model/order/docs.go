// Package order provides the Order aggregate of the buyback system and the
// vocabulary it is described in.
//
// The package includes:
//   - Status: the canonical lifecycle states plus the alias table that maps
//     every legacy spelling onto them
//   - Order: a read-only view over a stored order document
//   - Fields: the partial-update payload applied through the record store
//   - LabelRecord and VoidStatus: shipping labels held in named slots
//   - ActivityLogEntry: the append-only audit trail
//
// Key business rules:
//   - Per-leg timestamps (kitSentAt, receivedAt, ...) are set once
//   - A label slot's void status only moves active -> pending_void -> voided
//   - Terminal orders (completed, cancelled, voided) never change status again
//   - Reads tolerate unknown status spellings; writes accept only known ones
package order
