package node

import (
	"github.com/faassen/mobx-state-tree/debug"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// OnPatch registers fn to run synchronously once per structural
// change in n's subtree. Patch paths are relative to n. The returned
// disposer unsubscribes and is idempotent.
func (n *Node) OnPatch(fn func(patch.Patch)) (func(), error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	return n.patchSubs.add(fn), nil
}

// OnSnapshot registers fn to run with the new snapshot once at the
// end of the enclosing atomic unit, coalescing all mutations inside
// the unit into a single notification.
func (n *Node) OnSnapshot(fn func(any)) (func(), error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	return n.snapshotSubs.add(fn), nil
}

// EmitPatch is called by the type layer at the point of mutation with
// a patch whose path is relative to n. It invalidates snapshot caches
// up the tree, queues deferred snapshot notifications, and bubbles
// the patch to every ancestor's patch listeners, re-rooting the path
// one hop at a time.
func (n *Node) EmitPatch(p patch.Patch) {
	if debug.Patch() {
		debug.Logf("node: %s at %q\n", p.String(), n.Path())
	}
	n.invalidateSnapshots()
	cur := n
	for cur != nil {
		cur.patchSubs.each(func(fn func(patch.Patch)) {
			fn(p)
		})
		if cur.parent == nil {
			return
		}
		p = p.WithPrefix(treepath.EscapeSegment(cur.subpath))
		cur = cur.parent
	}
}

// invalidateSnapshots clears cached snapshots of n and its ancestors
// and schedules one deferred notification per node with snapshot
// listeners.
func (n *Node) invalidateSnapshots() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.snapshotValid = false
		cur.snapshotCache = nil
		if cur.snapshotSubs.len() == 0 || cur.snapshotQueued {
			continue
		}
		cur.snapshotQueued = true
		queued := cur
		txn.Defer(func() {
			queued.snapshotQueued = false
			if !queued.alive {
				return
			}
			snap, err := queued.Snapshot()
			if err != nil {
				return
			}
			queued.snapshotSubs.each(func(fn func(any)) {
				fn(snap)
			})
		})
	}
}
