package models

import "time"

// LedgerAction identifies the kind of per-user action a ledger entry records.
type LedgerAction string

const (
	ActionVote LedgerAction = "vote"
	ActionLike LedgerAction = "like"
)

// LedgerEntry is a single (actor, issue, action) fact. Entries are
// append-only and unique on the composite (user_id, issue_id, action) key;
// that uniqueness is the idempotency anchor for votes and likes.
type LedgerEntry struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	IssueID   string       `db:"issue_id" json:"issue_id"`
	Action    LedgerAction `db:"action" json:"action"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
