package middlewares

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
)

func init() {
	Register("readonly", func(args []string) (node.Middleware, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("middlewares: readonly takes no args, got %v", args)
		}
		return ReadOnly(), nil
	})
}

// ReadOnly rejects every action call with ErrBlocked. Attach it to a
// subtree to freeze that subtree against actions while the rest of the
// tree stays writable.
func ReadOnly() node.Middleware {
	return func(call *node.Call, next func() (any, error)) (any, error) {
		return nil, fmt.Errorf("%w: %s at %q (read only)", ErrBlocked, call.Name, call.Target.Path())
	}
}
