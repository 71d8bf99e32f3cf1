// Package flow implements the admin multi-step input flows as an explicit
// state machine: one field per user turn, a session-scoped draft, and a
// single commit at the final accepted field. The package is independent of
// the bot framework; handlers feed it raw text and relay the replies.
package flow

import (
	"context"
	"sync"
)

// Result is the outcome of feeding one input to a flow. When Done is true
// the session is over (committed, aborted or failed) and the draft is gone;
// otherwise Reply re-prompts or asks for the next field.
type Result struct {
	Reply string
	Done  bool
}

// Flow is one in-progress multi-step admin operation. Implementations hold
// their own draft record and tagged step state.
type Flow interface {
	// Prompt returns the message for the current step, shown when the flow
	// starts or re-enters a step after a validation failure.
	Prompt() string
	// Advance feeds one text input to the current step. Validation failures
	// keep the flow in place and return a re-prompt; the final accepted
	// field triggers the commit.
	Advance(ctx context.Context, input string) Result
	// Cancelled returns the message shown when the draft is discarded.
	Cancelled() string
}

// Store holds at most one in-flight flow per admin. Drafts are isolated per
// admin; two admins running the same flow concurrently do not interfere.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]Flow
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]Flow)}
}

// Begin starts a flow for an admin, replacing any in-flight draft, and
// returns the first prompt.
func (s *Store) Begin(adminID int64, f Flow) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[adminID] = f
	return f.Prompt()
}

// Active reports whether the admin has an in-flight flow.
func (s *Store) Active(adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[adminID]
	return ok
}

// Advance feeds input to the admin's in-flight flow. ok is false when no
// flow is active. A Done result removes the session.
func (s *Store) Advance(ctx context.Context, adminID int64, input string) (Result, bool) {
	s.mu.Lock()
	f, ok := s.sessions[adminID]
	s.mu.Unlock()
	if !ok {
		return Result{}, false
	}

	// The flow itself runs unlocked: commits hit the database and the bot
	// runtime serializes updates per chat anyway.
	res := f.Advance(ctx, input)

	if res.Done {
		s.mu.Lock()
		delete(s.sessions, adminID)
		s.mu.Unlock()
	}
	return res, true
}

// Cancel discards the admin's draft from any state without persisting
// anything. Returns the cancellation notice and whether a flow was active.
func (s *Store) Cancel(adminID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.sessions[adminID]
	if !ok {
		return "", false
	}
	delete(s.sessions, adminID)
	return f.Cancelled(), true
}
