package node

import (
	"github.com/faassen/mobx-state-tree/debug"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// Call describes one action invocation as seen by middleware: the
// action name, the live target node, and the raw arguments.
type Call struct {
	Name   string
	Target *Node
	Args   []any
}

// Middleware intercepts an action call. The underlying action (and
// any middleware further out) runs only when next is invoked;
// returning without calling next aborts silently, producing no
// mutation and no notifications. The value returned by the middleware
// becomes the call's result, so next's result may be inspected or
// substituted.
type Middleware func(call *Call, next func() (any, error)) (any, error)

// AddMiddleware hooks mw into every action call dispatched to n or a
// descendant of n. The returned disposer unsubscribes.
func (n *Node) AddMiddleware(mw Middleware) (func(), error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	return n.middlewares.add(mw), nil
}

// OnAction registers fn to run once per executed action in n's
// subtree, with the call serialized against n: Path is the target's
// path relative to n and Args must already be plain values. Aborted
// calls do not fire.
func (n *Node) OnAction(fn func(patch.Call)) (func(), error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	return n.actionSubs.add(fn), nil
}

// RunAction dispatches the named action on n: the middleware chain of
// n and its ancestors wraps fn, which itself runs inside an action
// scope. Chain order is local-before-parent, and registration order
// within one node, so a middleware on the target runs before one on
// the root.
func (n *Node) RunAction(name string, args []any, fn func() (any, error)) (any, error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	chain := n.collectMiddlewares()
	call := &Call{Name: name, Target: n, Args: args}
	var run func(i int) (any, error)
	run = func(i int) (any, error) {
		if i == len(chain) {
			if debug.Action() {
				debug.Logf("node: action %s at %q\n", name, n.Path())
			}
			n.emitAction(name, args)
			var res any
			err := txn.Action(func() error {
				var err error
				res, err = fn()
				return err
			})
			return res, err
		}
		return chain[i](call, func() (any, error) {
			return run(i + 1)
		})
	}
	return run(0)
}

// collectMiddlewares builds the full interception chain for an action
// on n, innermost first: n's own middleware, then each ancestor's
// outward to the root.
func (n *Node) collectMiddlewares() []Middleware {
	var res []Middleware
	for cur := n; cur != nil; cur = cur.parent {
		cur.middlewares.each(func(mw Middleware) {
			res = append(res, mw)
		})
	}
	return res
}

// emitAction notifies action listeners on n and every ancestor,
// serializing the call against each listener's node.
func (n *Node) emitAction(name string, args []any) {
	if args == nil {
		args = []any{}
	}
	segs := []string{}
	for cur := n; cur != nil; cur = cur.parent {
		if cur.actionSubs.len() > 0 {
			call := patch.Call{Name: name, Path: joinSegments(segs), Args: args}
			cur.actionSubs.each(func(fn func(patch.Call)) {
				fn(call)
			})
		}
		if cur.parent != nil {
			segs = append([]string{cur.subpath}, segs...)
		}
	}
}

func joinSegments(segs []string) string {
	return treepath.Join(segs)
}
