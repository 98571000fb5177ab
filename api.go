package mst

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// nodeFor maps a live tree value to its owning node through the
// process-wide registry.
func nodeFor(target any) (*node.Node, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", node.ErrInvalidArgument)
	}
	n := node.For(target)
	if n == nil {
		return nil, fmt.Errorf("%w: value of type %T is not (or no longer) part of a state tree", node.ErrInvalidArgument, target)
	}
	return n, nil
}

// GetParent returns the value depth levels above target. Depth must
// be at least 1; walking above the root fails.
func GetParent(target any, depth int) (any, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: parent depth must be >= 1, got %d", node.ErrInvalidArgument, depth)
	}
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	for i := 0; i < depth; i++ {
		n = n.Parent()
		if n == nil {
			return nil, fmt.Errorf("%w: no parent at depth %d above %T", node.ErrResolution, depth, target)
		}
	}
	return n.StoredValue(), nil
}

// GetRoot returns the root value of target's tree.
func GetRoot(target any) (any, error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.Root().StoredValue(), nil
}

// GetPath returns the escaped root-relative path of target.
func GetPath(target any) (string, error) {
	n, err := nodeFor(target)
	if err != nil {
		return "", err
	}
	return n.Path(), nil
}

// GetRelativePath returns the shortest relative path leading from
// base to target; both must live in the same tree.
func GetRelativePath(base, target any) (string, error) {
	bn, err := nodeFor(base)
	if err != nil {
		return "", err
	}
	tn, err := nodeFor(target)
	if err != nil {
		return "", err
	}
	return bn.RelativePathTo(tn)
}

// IsRoot reports whether target is the root of its tree.
func IsRoot(target any) bool {
	n := node.For(target)
	return n != nil && n.IsRoot()
}

// IsAlive reports whether target is part of a live tree. Destroyed
// values report false.
func IsAlive(target any) bool {
	n := node.For(target)
	return n != nil && n.IsAlive()
}

// GetEnv returns the environment attached at target's root, or nil.
func GetEnv(target any) (any, error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.Env(), nil
}

// Resolve walks path from target and returns the value it names: a
// live instance for composite nodes, the raw value for primitive
// leaves. Fails with ErrResolution when a segment cannot be found.
func Resolve(target any, path string) (any, error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	res, err := n.Resolve(path)
	if err == nil {
		return res.StoredValue(), nil
	}
	// The final segment may name a primitive slot, which has no node.
	segs := treepath.Split(path)
	if len(segs) == 0 {
		return nil, err
	}
	start := n
	if treepath.IsAbsolute(path) {
		start = n.Root()
	}
	parent, perr := start.Resolve(treepath.JoinRelative(segs[:len(segs)-1]))
	if perr != nil {
		return nil, err
	}
	if v, ok := parent.Type().LeafValue(parent, segs[len(segs)-1]); ok {
		return v, nil
	}
	return nil, err
}

// TryResolve is Resolve with failure reported as nil.
func TryResolve(target any, path string) any {
	res, err := Resolve(target, path)
	if err != nil {
		return nil
	}
	return res
}

// ResolveIdentifier looks up the value of the given type registered
// under id in target's tree. Returns nil when no such node exists.
func ResolveIdentifier(target any, typ node.Type, id string) (any, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", node.ErrInvalidArgument)
	}
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	found := n.IdentifierCache().Resolve(typ, id)
	if found == nil {
		return nil, nil
	}
	return found.StoredValue(), nil
}

// Protect enables protection on a root: from then on mutations are
// only accepted inside action calls.
func Protect(target any) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return n.Protect()
}

// Unprotect disables protection on a root.
func Unprotect(target any) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return n.Unprotect()
}

// IsProtected reports whether target's tree has protection enabled.
func IsProtected(target any) bool {
	n := node.For(target)
	return n != nil && n.IsProtectionEnabled()
}

// Detach removes target from its parent, leaving it alive as the
// root of its own tree.
func Detach(target any) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return txn.Action(func() error {
		return n.Detach()
	})
}

// Destroy ends the life of target and its whole subtree; a non-root
// target is removed from its parent first.
func Destroy(target any) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return txn.Action(func() error {
		return n.Destroy()
	})
}

// AddDisposer registers fn to run when target's node dies.
func AddDisposer(target any, fn func()) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return n.AddDisposer(fn)
}

// CloneConfig controls Clone.
type CloneConfig struct {
	KeepEnv bool
}

type CloneOpt func(*CloneConfig)

// CloneKeepEnv carries the source tree's environment reference into
// the clone.
func CloneKeepEnv(v bool) CloneOpt {
	return func(c *CloneConfig) { c.KeepEnv = v }
}

// Clone builds an independent tree of the same type from target's
// current snapshot.
func Clone(target any, opts ...CloneOpt) (any, error) {
	cfg := &CloneConfig{}
	for _, o := range opts {
		o(cfg)
	}
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	snap, err := n.Snapshot()
	if err != nil {
		return nil, err
	}
	var env any
	if cfg.KeepEnv {
		env = n.Env()
	}
	cloned, err := n.Type().Create(snap, env)
	if err != nil {
		return nil, err
	}
	return cloned.StoredValue(), nil
}
