package node

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/debug"
	"github.com/faassen/mobx-state-tree/treepath"
)

// Resolve walks path from n and returns the node it names. Segments
// are '/'-separated and escaped; ".." navigates to the parent, "."
// stays put, and a leading '/' starts at the root. Failure to find a
// segment is an ErrResolution.
func (n *Node) Resolve(path string) (*Node, error) {
	if err := n.AssertAlive(); err != nil {
		return nil, err
	}
	if debug.Resolve() {
		debug.Logf("node: resolve %q from %q\n", path, n.Path())
	}
	cur := n
	if treepath.IsAbsolute(path) {
		cur = n.Root()
	}
	for _, seg := range treepath.Split(path) {
		switch seg {
		case ".":
			continue
		case "..":
			if cur.parent == nil {
				return nil, fmt.Errorf("%w: %q walks above the root (from %q)", ErrResolution, path, n.Path())
			}
			cur = cur.parent
		default:
			child := cur.typ.ChildNode(cur, seg)
			if child == nil {
				return nil, fmt.Errorf("%w: no node at segment %q of %q (from %q)", ErrResolution, seg, path, n.Path())
			}
			cur = child
		}
	}
	return cur, nil
}

// TryResolve is Resolve with failure reported as nil instead of an
// error, by contract for non-strict callers.
func (n *Node) TryResolve(path string) *Node {
	res, err := n.Resolve(path)
	if err != nil {
		return nil
	}
	return res
}

// RelativePathTo computes the shortest ".."-prefixed relative path
// from n to other. Both nodes must live in the same tree.
func (n *Node) RelativePathTo(other *Node) (string, error) {
	if err := n.AssertAlive(); err != nil {
		return "", err
	}
	if err := other.AssertAlive(); err != nil {
		return "", err
	}
	if n.Root() != other.Root() {
		return "", fmt.Errorf("%w: nodes at %q and %q share no common ancestor", ErrResolution, n.Path(), other.Path())
	}
	from := n.PathSegments()
	to := other.PathSegments()
	common := 0
	for common < len(from) && common < len(to) && from[common] == to[common] {
		common++
	}
	segs := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		segs = append(segs, "..")
	}
	segs = append(segs, to[common:]...)
	return treepath.JoinRelative(segs), nil
}
