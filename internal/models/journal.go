package models

import "time"

type JournalKind string

const (
	JournalReported JournalKind = "reported"
	JournalVerified JournalKind = "verified"
	JournalDeleted  JournalKind = "deleted"
)

// JournalEntry is one row of the append-only hazard lifecycle audit trail.
// Entries are written asynchronously and never read on the hot path.
type JournalEntry struct {
	Kind      JournalKind
	HazardID  string
	ActorID   string
	CreatedAt time.Time
}
