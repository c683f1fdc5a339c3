// Package models defines the core domain models for billsplit.
//
// # Aggregate
//
// Bill is the aggregate root. Everything else hangs off a single bill:
//   - BillItem: line items, copied by value when a bill is cloned from a template
//   - Invitation: a proposed share offered to one user, unique per (bill, user)
//   - Participant: a binding obligation created when the bill is finalized
//   - ActivityLogEntry: append-only audit trail
//
// User is an external identity; the models only carry its ID and a display name.
//
// # Lifecycle
//
//	draft --invite--> pending_responses --all resolved, >=1 accepted--> finalized --all paid--> paid
//	                                    --all resolved, 0 accepted---> cancelled
//
// Templates sit outside the lifecycle with status "template"; they are cloned, never advanced.
//
// # Money
//
// All amounts are decimal.Decimal so that participant shares always sum to the bill
// total exactly. Calendar dates (bill date, due dates) are UTC midnights.
package models
