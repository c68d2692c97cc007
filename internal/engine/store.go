package engine

import (
	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/record"
)

// State is the resolution state of a store.
type State int32

const (
	// Pending stores have not been resolved since creation or invalidation.
	Pending State = iota
	// InProgress stores are being resolved right now.
	InProgress
	// Resolved stores hold a terminal outcome, success or error.
	Resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProgress:
		return "in_progress"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// Store is the mutable resolution state of one query. Its fields are
// guarded by the owning Engine's mutex.
type Store struct {
	query *config.Query

	upToDate   bool
	inProgress bool
	err        error
	records    []record.Record
	// text is the final literal SOQL of the last attempt, or as far as the
	// attempt got before failing.
	text string
}

func (s *Store) state() State {
	switch {
	case s.inProgress:
		return InProgress
	case s.upToDate:
		return Resolved
	}
	return Pending
}

// StoreSnapshot is a read-only copy of a store.
type StoreSnapshot struct {
	Query      string
	State      State
	UpToDate   bool
	InProgress bool
	Err        error
	Records    []record.Record
	Text       string
}
