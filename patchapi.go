package mst

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// GetSnapshot returns the plain serializable representation of
// target's subtree, reflecting the latest state.
func GetSnapshot(target any) (any, error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.Snapshot()
}

// OnSnapshot registers fn to run with target's new snapshot once at
// the end of each atomic unit that changed it.
func OnSnapshot(target any, fn func(snapshot any)) (func(), error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.OnSnapshot(fn)
}

// ApplySnapshot replaces target's state minimally to match snapshot,
// preserving untouched child identities where type and identifier
// match. Notifications fire as if the equivalent direct mutations had
// been performed.
func ApplySnapshot(target any, snapshot any) error {
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return txn.Action(func() error {
		return n.Type().ApplySnapshot(n, snapshot)
	})
}

// OnPatch registers fn to run synchronously for every structural
// change in target's subtree, with paths relative to target.
func OnPatch(target any, fn func(p patch.Patch)) (func(), error) {
	n, err := nodeFor(target)
	if err != nil {
		return nil, err
	}
	return n.OnPatch(fn)
}

// ApplyPatch applies a single patch to target.
func ApplyPatch(target any, p patch.Patch) error {
	return ApplyPatches(target, []patch.Patch{p})
}

// ApplyPatches applies an ordered patch sequence inside one atomic
// unit. An empty sequence is a no-op. When a patch fails, earlier
// patches of the same call are left in place; the error names the
// failing entry. Callers needing all-or-nothing semantics should
// snapshot beforehand.
func ApplyPatches(target any, patches []patch.Patch) error {
	if len(patches) == 0 {
		return nil
	}
	n, err := nodeFor(target)
	if err != nil {
		return err
	}
	return txn.Action(func() error {
		for i := range patches {
			if err := applyOne(n, patches[i]); err != nil {
				return fmt.Errorf("patch %d of %d: %w", i, len(patches), err)
			}
		}
		return nil
	})
}

func applyOne(n *node.Node, p patch.Patch) error {
	if !p.Op.Valid() {
		return fmt.Errorf("%w: unknown op %q", patch.ErrApply, p.Op)
	}
	segs := treepath.Split(p.Path)
	if len(segs) == 0 {
		// whole-node patch: only replace makes sense
		if p.Op != patch.OpReplace {
			return fmt.Errorf("%w: op %q with empty path", patch.ErrApply, p.Op)
		}
		return n.Type().ApplySnapshot(n, p.Value)
	}
	parent, err := n.Resolve(treepath.JoinRelative(segs[:len(segs)-1]))
	if err != nil {
		return fmt.Errorf("%w: %v", patch.ErrApply, err)
	}
	return parent.Type().ApplyPatchOp(parent, segs[len(segs)-1], p.Op, p.Value)
}
