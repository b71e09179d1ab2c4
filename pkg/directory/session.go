package directory

import (
	"context"
	"fmt"
)

// Session is the explicit unit-of-work context for one host request. It owns
// the pending-write cache and the list of deferred writes enlisted for
// after-completion. Mutations made through adapters bound to this session are
// buffered in memory and flushed together when the session commits.
//
// A session is meant for a single logical thread of execution; it applies no
// internal locking.
type Session struct {
	pending *PendingCache
	after   []Transaction
	done    bool
}

// NewSession opens a fresh unit of work.
func NewSession() *Session {
	return &Session{pending: NewPendingCache()}
}

// Pending is the cache of users created in this unit of work that have not
// reached the remote directory yet.
func (s *Session) Pending() *PendingCache {
	return s.pending
}

// EnlistAfterCompletion registers a transaction to run when the session
// completes. Callers are responsible for enlisting each transaction at most
// once.
func (s *Session) EnlistAfterCompletion(tx Transaction) {
	s.after = append(s.after, tx)
}

// Commit drives every enlisted transaction once, in enlistment order, after
// all in-memory mutations for this unit of work have been applied. The first
// failing transaction aborts the commit and its error is reported to the
// caller.
func (s *Session) Commit(ctx context.Context) error {
	if s.done {
		return fmt.Errorf("session already completed")
	}
	s.done = true
	for _, tx := range s.after {
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("deferred directory write failed: %w", err)
		}
	}
	return nil
}

// Rollback completes the session without any remote write.
func (s *Session) Rollback(ctx context.Context) error {
	if s.done {
		return fmt.Errorf("session already completed")
	}
	s.done = true
	for _, tx := range s.after {
		if err := tx.Rollback(ctx); err != nil {
			return err
		}
	}
	return nil
}
