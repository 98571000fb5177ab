package node

import (
	"fmt"
	"sync"
)

// The registry is the process-wide side table from a stored value to
// its owning node. Entries are claimed when a node is created and
// evicted when it dies, so the table never outlives node bookkeeping.
// Values must be comparable by identity (pointers).
var registry = struct {
	mu sync.Mutex
	m  map[any]*Node
}{m: map[any]*Node{}}

// For returns the node owning value, or nil when value is not part of
// any live tree.
func For(value any) *Node {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.m[value]
}

// claim atomically associates value with n, rejecting values already
// owned by a live node.
func claim(value any, n *Node) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if prev := registry.m[value]; prev != nil {
		return fmt.Errorf("%w: value already claimed by node at %q", ErrInvalidArgument, prev.Path())
	}
	registry.m[value] = n
	return nil
}

func release(value any) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.m, value)
}
