// Package txn implements the atomic unit used to batch tree
// mutations. Atomic units nest; only the outermost exit flushes
// callbacks deferred with Defer, so several mutations inside one unit
// coalesce into a single deferred notification.
//
// The batching state is process wide. Mutation of a single tree is
// single-goroutine by contract; the package is internally locked only
// so that independent trees on different goroutines do not corrupt
// the counters.
package txn

import "sync"

var global state

type state struct {
	mu      sync.Mutex
	depth   int
	actions int
	pending []func()
}

// Atomic runs fn inside an atomic unit, entering a new one if none is
// open. On outermost exit the deferred queue is flushed even when fn
// returns an error: mutations made before the failure have happened
// and their listeners must still run.
func Atomic(fn func() error) error {
	global.enter()
	defer global.exit()
	return fn()
}

// InAtomic reports whether an atomic unit is currently open.
func InAtomic() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.depth > 0
}

// Action runs fn inside an atomic unit that also counts as an action
// scope for protection checks.
func Action(fn func() error) error {
	global.enterAction()
	defer global.exitAction()
	return fn()
}

// InAction reports whether an action scope is open. Protected trees
// accept mutations only when it is.
func InAction() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.actions > 0
}

// Defer schedules fn to run when the outermost atomic unit exits. If
// no unit is open fn runs immediately. Functions deferred while the
// flush itself is running are appended to the same flush.
func Defer(fn func()) {
	global.mu.Lock()
	if global.depth == 0 {
		global.mu.Unlock()
		fn()
		return
	}
	global.pending = append(global.pending, fn)
	global.mu.Unlock()
}

func (s *state) enter() {
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()
}

func (s *state) enterAction() {
	s.mu.Lock()
	s.depth++
	s.actions++
	s.mu.Unlock()
}

func (s *state) exitAction() {
	s.mu.Lock()
	s.actions--
	s.mu.Unlock()
	s.exit()
}

func (s *state) exit() {
	s.mu.Lock()
	s.depth--
	if s.depth > 0 {
		s.mu.Unlock()
		return
	}
	// Outermost exit: drain the queue, tolerating appends from the
	// callbacks themselves.
	for len(s.pending) > 0 {
		q := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, fn := range q {
			fn()
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
}
