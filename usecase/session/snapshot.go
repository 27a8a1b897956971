package session

import "github.com/fastygo/stockdesk/domain"

// State is the in-memory view of the session store. Loading is transient and
// never leaves the process.
type State struct {
	domain.Session
	Loading bool
}

// Snapshot returns the durable subset of s.
func Snapshot(s State) domain.Session {
	return s.Session.Normalize()
}

// Hydrate rebuilds the in-memory state from a persisted snapshot.
func Hydrate(stored domain.Session) State {
	return State{Session: stored.Normalize()}
}
