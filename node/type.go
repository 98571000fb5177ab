package node

import "github.com/faassen/mobx-state-tree/patch"

// Type is the schema collaborator owning the shape of one node's
// stored value. The node keeps the bookkeeping; the type knows how to
// build, snapshot, diff, and mutate the value.
//
// Implementations must be comparable (pointer receivers) so they can
// key the identifier cache.
type Type interface {
	Name() string

	// Create instantiates a detached tree from a plain snapshot.
	// env, which may be nil, attaches at the new root.
	Create(snapshot, env any) (*Node, error)

	// SnapshotOf computes the plain serializable value of n. Called
	// by Node.Snapshot under its cache.
	SnapshotOf(n *Node) any

	// ApplySnapshot reconciles n's subtree to snapshot with minimal
	// replacement, preserving child node identity where type and
	// identifier match. Notifications fire as for direct mutations.
	ApplySnapshot(n *Node, snapshot any) error

	// ApplyPatchOp applies one structural operation addressed at
	// child slot key of n.
	ApplyPatchOp(n *Node, key string, op patch.Op, value any) error

	// ChildNode returns the live child node at subpath, or nil.
	ChildNode(n *Node, subpath string) *Node

	// ChildNodes lists n's live child nodes in container order.
	ChildNodes(n *Node) []*Node

	// LeafValue returns the primitive value at child slot key, when
	// that slot holds a non-node value.
	LeafValue(n *Node, key string) (any, bool)

	// RemoveChild removes the child at subpath from n's stored
	// value and kills it.
	RemoveChild(n *Node, subpath string) error

	// DetachChild removes the child at subpath from n's stored
	// value, leaving the child alive as a new root.
	DetachChild(n *Node, subpath string) error

	// IdentifierOf reports the identifier string of n's stored
	// value, if the type declares an identifier attribute.
	IdentifierOf(n *Node) (string, bool)
}
