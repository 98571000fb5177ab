package mst

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/types"
)

// OnAction registers fn to run once per executed action in target's
// subtree. The call is serialized against target: Path names the
// acting node relative to target. Aborted calls do not fire.
func OnAction(target any, fn func(call patch.Call)) (func(), error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.OnAction(fn)
}

// AddMiddleware hooks mw into every action dispatched to target or a
// descendant. Chains run local-before-parent.
func AddMiddleware(target any, mw node.Middleware) (func(), error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.AddMiddleware(mw)
}

// ApplyAction replays a serialized action call against target: the
// call path is resolved relative to target and the named action is
// invoked with the recorded arguments, passing through the middleware
// chain like a direct invocation.
func ApplyAction(target any, call patch.Call) (any, error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	acting, err := n.Resolve(treepath.JoinRelative(treepath.Split(call.Path)))
	if err != nil {
		return nil, err
	}
	m, ok := acting.StoredValue().(*types.Model)
	if !ok {
		return nil, fmt.Errorf("%w: node at %q is not a model", node.ErrInvalidArgument, call.Path)
	}
	return m.Call(call.Name, call.Args...)
}
