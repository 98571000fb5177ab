package middlewares

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/query"
)

// ErrBlocked reports an action call rejected by a blocking middleware.
var ErrBlocked = fmt.Errorf("action blocked")

func init() {
	Register("block", func(args []string) (node.Middleware, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("middlewares: block takes one predicate arg, got %v", args)
		}
		return Block(args[0])
	})
}

// Filter wraps mw so it only intercepts calls matching the predicate
// src. Non-matching calls go straight to next. The predicate sees
// name, path and args, as in the query package.
func Filter(src string, mw node.Middleware) (node.Middleware, error) {
	f, err := query.CompileCallFilter(src)
	if err != nil {
		return nil, err
	}
	return func(call *node.Call, next func() (any, error)) (any, error) {
		ok, err := f.Match(serialize(call))
		if err != nil {
			return nil, err
		}
		if !ok {
			return next()
		}
		return mw(call, next)
	}, nil
}

// Block rejects calls matching the predicate src with ErrBlocked and
// lets the rest through.
func Block(src string) (node.Middleware, error) {
	return Filter(src, func(call *node.Call, next func() (any, error)) (any, error) {
		return nil, fmt.Errorf("%w: %s at %q", ErrBlocked, call.Name, call.Target.Path())
	})
}

func serialize(call *node.Call) patch.Call {
	args := call.Args
	if args == nil {
		args = []any{}
	}
	return patch.Call{Name: call.Name, Path: call.Target.Path(), Args: args}
}
