// Package node implements the bookkeeping core of the tree store:
// one Node per live tree-scoped value, holding identity, parent and
// subpath links, lifecycle state, protection, and the listener
// registries behind snapshots, patches, and action interception.
//
// The schema layer (package types) owns value shapes and plugs in
// through the Type interface; the atomic batching discipline comes
// from package txn.
package node

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/debug"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// Node wraps one tree-resident value. The parent link is a non-owning
// back-pointer; ownership of child values lives in the stored values
// themselves, so the root keeps the whole reachable subtree alive.
type Node struct {
	typ     Type
	parent  *Node
	subpath string
	stored  any
	alive   bool

	// Root-only state. Descendants reach it through Root().
	env       any
	protected bool
	idcache   *IdentifierCache

	snapshotCache  any
	snapshotValid  bool
	snapshotQueued bool

	patchSubs    subscribers[func(patch.Patch)]
	snapshotSubs subscribers[func(any)]
	actionSubs   subscribers[func(patch.Call)]
	middlewares  subscribers[Middleware]
	disposers    []func()
}

// New creates the node for stored and claims process-wide ownership
// of the value. A nil parent makes a root carrying env; child nodes
// ignore env and inherit their root's. The caller (the type layer)
// must invoke Attached once the stored value is fully populated.
func New(typ Type, parent *Node, subpath string, stored, env any) (*Node, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	if parent != nil && !parent.alive {
		return nil, fmt.Errorf("%w: attach under dead node", ErrDeadNode)
	}
	n := &Node{
		typ:     typ,
		parent:  parent,
		subpath: subpath,
		stored:  stored,
		alive:   true,
	}
	if parent == nil {
		n.env = env
	}
	if err := claim(stored, n); err != nil {
		return nil, err
	}
	if debug.Lifecycle() {
		debug.Logf("node: new %s at %q\n", typ.Name(), n.Path())
	}
	return n, nil
}

// Attached registers n in its root's identifier cache. The type layer
// calls it after the stored value, including any identifier
// attribute, is in place.
func (n *Node) Attached() error {
	root := n.Root()
	if root.idcache == nil {
		root.idcache = newIdentifierCache()
	}
	return root.idcache.add(n)
}

func (n *Node) Type() Type      { return n.typ }
func (n *Node) StoredValue() any { return n.stored }
func (n *Node) Subpath() string { return n.subpath }
func (n *Node) IsAlive() bool   { return n.alive }
func (n *Node) IsRoot() bool    { return n.parent == nil }

// Parent returns the owning node, or nil on roots.
func (n *Node) Parent() *Node { return n.parent }

// Root walks parent links to the tree root.
func (n *Node) Root() *Node {
	res := n
	for res.parent != nil {
		res = res.parent
	}
	return res
}

// Env returns the opaque environment attached at the root.
func (n *Node) Env() any {
	return n.Root().env
}

// IdentifierCache returns the cache of the tree this node belongs to.
func (n *Node) IdentifierCache() *IdentifierCache {
	root := n.Root()
	if root.idcache == nil {
		root.idcache = newIdentifierCache()
	}
	return root.idcache
}

// Path returns the escaped root-relative path of n; roots have the
// empty path.
func (n *Node) Path() string {
	return treepath.Join(n.PathSegments())
}

// PathSegments returns the unescaped subpaths from the root down to n.
func (n *Node) PathSegments() []string {
	var segs []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		segs = append(segs, cur.subpath)
	}
	// reverse: collected leaf-first
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// SetSubpath renames the slot under which n hangs off its parent.
// Used by container types when indices shift.
func (n *Node) SetSubpath(subpath string) {
	n.subpath = subpath
}

// IsProtectionEnabled is authoritative at the root; other nodes
// delegate there.
func (n *Node) IsProtectionEnabled() bool {
	return n.Root().protected
}

// Protect enables protection on a root: from then on, mutations
// outside an action scope fail.
func (n *Node) Protect() error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if !n.IsRoot() {
		return fmt.Errorf("%w: protect on non-root node at %q", ErrInvalidArgument, n.Path())
	}
	n.protected = true
	return nil
}

// Unprotect disables protection on a root.
func (n *Node) Unprotect() error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if !n.IsRoot() {
		return fmt.Errorf("%w: unprotect on non-root node at %q", ErrInvalidArgument, n.Path())
	}
	n.protected = false
	return nil
}

// AssertAlive fails once the node has died.
func (n *Node) AssertAlive() error {
	if n.alive {
		return nil
	}
	return fmt.Errorf("%w: node of type %s is no longer part of a tree", ErrDeadNode, n.typ.Name())
}

// AssertWritable gates every direct mutation: dead nodes reject all
// operations, and protected trees accept mutations only inside an
// action scope. This check precedes middleware interception.
func (n *Node) AssertWritable() error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if n.IsProtectionEnabled() && !txn.InAction() {
		return fmt.Errorf("%w: cannot modify %q outside an action when protection is enabled", ErrProtected, n.Path())
	}
	return nil
}

// Snapshot computes the plain serializable representation of n and
// its descendants. Unchanged subtrees are shared structurally through
// each node's cache; the result always reflects the latest state.
func (n *Node) Snapshot() (any, error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	if n.snapshotValid {
		return n.snapshotCache, nil
	}
	if debug.Snapshot() {
		debug.Logf("node: compute snapshot at %q\n", n.Path())
	}
	n.snapshotCache = n.typ.SnapshotOf(n)
	n.snapshotValid = true
	return n.snapshotCache, nil
}

// AddDisposer registers fn to run when n dies. Disposers run in
// registration order, each exactly once.
func (n *Node) AddDisposer(fn func()) error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	n.disposers = append(n.disposers, fn)
	return nil
}
