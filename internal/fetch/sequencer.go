// Package fetch sequences overlapping requests issued by a view so that only
// the most recently issued one may update the view (last issued wins).
package fetch

import (
	"context"
	"sync"
)

// Ticket identifies one issued fetch.
type Ticket struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Seq returns the sequence number of the ticket.
func (t *Ticket) Seq() uint64 { return t.seq }

// Context returns the context the fetch must run under. It is cancelled when
// a newer fetch begins or when the ticket settles.
func (t *Ticket) Context() context.Context { return t.ctx }

// Sequencer hands out tickets with increasing sequence numbers and cancels the
// previous in-flight fetch each time a new one begins.
type Sequencer struct {
	mu      sync.Mutex
	seq     uint64
	current *Ticket
}

// Begin issues a new ticket derived from ctx and cancels the previous one.
func (s *Sequencer) Begin(ctx context.Context) *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.cancel()
	}
	s.seq++
	fctx, cancel := context.WithCancel(ctx)
	t := &Ticket{seq: s.seq, ctx: fctx, cancel: cancel}
	s.current = t
	return t
}

// Settle completes t. apply runs under the sequencer lock only if t is still
// the latest issued ticket; stale tickets are dropped. Settle reports whether
// apply ran.
func (s *Sequencer) Settle(t *Ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.cancel()
	if s.current != t {
		return false
	}
	s.current = nil
	if apply != nil {
		apply()
	}
	return true
}

// Loading reports whether the latest issued fetch has not settled yet.
func (s *Sequencer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
