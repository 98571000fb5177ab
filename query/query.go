// Package query compiles expr-lang predicates over patches, action
// calls and snapshots. Filters are compiled once and can be evaluated
// against many values, which makes them suitable for long-lived
// listeners and middlewares.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
)

// ErrQuery wraps compile and eval failures.
var ErrQuery = fmt.Errorf("query")

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Function("segments", func(params ...any) (any, error) {
			segs := treepath.Split(params[0].(string))
			res := make([]any, len(segs))
			for i, s := range segs {
				res[i] = s
			}
			return res, nil
		},
			new(func(string) []any)),
	}
}

// PatchFilter is a compiled boolean expression over a patch. The
// expression sees op, path, value and oldValue.
type PatchFilter struct {
	src string
	prg *vm.Program
}

// CompilePatchFilter compiles src into a patch predicate.
func CompilePatchFilter(src string) (*PatchFilter, error) {
	opts := append(exprOpts(),
		expr.Env(map[string]any{
			"op":       "",
			"path":     "",
			"value":    any(nil),
			"oldValue": any(nil),
		}),
		expr.AsBool(),
	)
	prg, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrQuery, src, err)
	}
	return &PatchFilter{src: src, prg: prg}, nil
}

// Match evaluates the filter against p.
func (f *PatchFilter) Match(p patch.Patch) (bool, error) {
	res, err := expr.Run(f.prg, map[string]any{
		"op":       string(p.Op),
		"path":     p.Path,
		"value":    p.Value,
		"oldValue": p.OldValue,
	})
	if err != nil {
		return false, fmt.Errorf("%w: eval %q: %v", ErrQuery, f.src, err)
	}
	return res.(bool), nil
}

// CallFilter is a compiled boolean expression over a serialized
// action call. The expression sees name, path and args.
type CallFilter struct {
	src string
	prg *vm.Program
}

// CompileCallFilter compiles src into an action-call predicate.
func CompileCallFilter(src string) (*CallFilter, error) {
	opts := append(exprOpts(),
		expr.Env(map[string]any{
			"name": "",
			"path": "",
			"args": []any(nil),
		}),
		expr.AsBool(),
	)
	prg, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrQuery, src, err)
	}
	return &CallFilter{src: src, prg: prg}, nil
}

// Match evaluates the filter against c.
func (f *CallFilter) Match(c patch.Call) (bool, error) {
	res, err := expr.Run(f.prg, map[string]any{
		"name": c.Name,
		"path": c.Path,
		"args": c.Args,
	})
	if err != nil {
		return false, fmt.Errorf("%w: eval %q: %v", ErrQuery, f.src, err)
	}
	return res.(bool), nil
}

// SnapshotQuery is a compiled expression over a snapshot. The snapshot
// is bound to the variable s.
type SnapshotQuery struct {
	src string
	prg *vm.Program
}

// CompileSnapshot compiles src into a snapshot query.
func CompileSnapshot(src string) (*SnapshotQuery, error) {
	opts := append(exprOpts(), expr.Env(map[string]any{"s": any(nil)}))
	prg, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrQuery, src, err)
	}
	return &SnapshotQuery{src: src, prg: prg}, nil
}

// Eval runs the query against snapshot and returns the result.
func (q *SnapshotQuery) Eval(snapshot any) (any, error) {
	res, err := expr.Run(q.prg, map[string]any{"s": snapshot})
	if err != nil {
		return nil, fmt.Errorf("%w: eval %q: %v", ErrQuery, q.src, err)
	}
	return res, nil
}
