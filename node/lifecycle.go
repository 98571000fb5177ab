package node

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/debug"
)

// Die irrevocably ends the life of n and its whole subtree,
// post-order: children die before the parent's own bookkeeping is
// cleared. Disposers run in registration order; a panicking disposer
// does not stop the rest. Idempotent.
func (n *Node) Die() {
	if !n.alive {
		return
	}
	for _, child := range n.typ.ChildNodes(n) {
		child.Die()
	}
	if debug.Lifecycle() {
		debug.Logf("node: die %s at %q\n", n.typ.Name(), n.Path())
	}
	root := n.Root()
	if root.idcache != nil {
		root.idcache.remove(n)
	}
	disposers := n.disposers
	n.disposers = nil
	for _, fn := range disposers {
		runDisposer(fn)
	}
	release(n.stored)
	n.patchSubs.clear()
	n.snapshotSubs.clear()
	n.actionSubs.clear()
	n.middlewares.clear()
	n.alive = false
}

func runDisposer(fn func()) {
	defer func() {
		// a failing disposer must not block its siblings
		_ = recover()
	}()
	fn()
}

// Detach removes n from its parent's children and makes it the root
// of its own tree. The value stays alive and usable; its identifier
// cache entries move from the old root into a cache scoped to n, and
// the environment reference carries over. Detaching a root is a
// no-op.
func (n *Node) Detach() error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if n.parent == nil {
		return nil
	}
	oldRoot := n.Root()
	env := oldRoot.env
	if oldRoot.idcache != nil {
		oldRoot.idcache.dropSubtree(n)
	}
	parent := n.parent
	if err := parent.typ.DetachChild(parent, n.subpath); err != nil {
		return err
	}
	n.env = env
	n.idcache = newIdentifierCache()
	return n.idcache.mergeSubtree(n)
}

// ClearParent severs the parent link, making n a root. Called by
// container types after they removed n's slot from the stored value.
func (n *Node) ClearParent() {
	n.parent = nil
	n.subpath = ""
}

// AttachTo hangs a detached root under parent at subpath and merges
// its identifier cache entries into the new tree's root cache. The
// patch for the attachment is emitted by the container type. On
// failure n stays a fully intact detached root and the target tree is
// untouched.
func (n *Node) AttachTo(parent *Node, subpath string) error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if err := parent.AssertAlive(); err != nil {
		return err
	}
	if n.parent != nil {
		return fmt.Errorf("%w: node at %q already lives in a tree, detach it first", ErrInvalidArgument, n.Path())
	}
	if parent.Root() == n {
		return fmt.Errorf("%w: attaching a node under its own subtree", ErrInvalidArgument)
	}
	root := parent.Root()
	cache := n.idcache
	// identifier collisions are checked before any state moves
	if cache != nil && cache.Len() > 0 && root.idcache != nil {
		if err := root.idcache.checkSubtree(n); err != nil {
			return err
		}
	}
	n.idcache = nil
	n.env = nil
	n.protected = false
	n.parent = parent
	n.subpath = subpath
	if cache == nil || cache.Len() == 0 {
		return nil
	}
	if root.idcache == nil {
		root.idcache = newIdentifierCache()
	}
	return root.idcache.mergeSubtree(n)
}

// DropIdentifiers removes the identifier cache entries of n's
// subtree from its tree's cache without killing anything. Container
// types call it before building a replacement child, so the
// replacement may reuse the outgoing child's identifier; the pair
// resolves with Die on success or RestoreIdentifiers on failure.
func (n *Node) DropIdentifiers() {
	root := n.Root()
	if root.idcache != nil {
		root.idcache.dropSubtree(n)
	}
}

// RestoreIdentifiers re-registers the entries removed by
// DropIdentifiers.
func (n *Node) RestoreIdentifiers() {
	// cannot collide, the same entries were just dropped
	_ = n.IdentifierCache().mergeSubtree(n)
}

// Destroy ends the node's life. On a root the whole tree dies; on a
// child the parent removes the slot first so the removal is
// observable as a patch.
func (n *Node) Destroy() error {
	if err := n.AssertAlive(); err != nil {
		return err
	}
	if n.parent == nil {
		n.Die()
		return nil
	}
	return n.parent.typ.RemoveChild(n.parent, n.subpath)
}
