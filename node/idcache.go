package node

import "fmt"

// IdentifierCache indexes the identifiable nodes of one tree by
// (type, identifier). It lives on the root node and is maintained
// synchronously as nodes attach and detach.
type IdentifierCache struct {
	m map[idKey]*Node
}

type idKey struct {
	typ Type
	id  string
}

func newIdentifierCache() *IdentifierCache {
	return &IdentifierCache{m: map[idKey]*Node{}}
}

// Resolve returns the live node registered under (typ, id), or nil.
func (c *IdentifierCache) Resolve(typ Type, id string) *Node {
	if c == nil {
		return nil
	}
	return c.m[idKey{typ: typ, id: id}]
}

func (c *IdentifierCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.m)
}

func (c *IdentifierCache) add(n *Node) error {
	id, ok := n.typ.IdentifierOf(n)
	if !ok {
		return nil
	}
	key := idKey{typ: n.typ, id: id}
	if prev, present := c.m[key]; present && prev != n {
		return fmt.Errorf("%w: duplicate identifier %q for type %s", ErrInvalidArgument, id, n.typ.Name())
	}
	c.m[key] = n
	return nil
}

func (c *IdentifierCache) remove(n *Node) {
	id, ok := n.typ.IdentifierOf(n)
	if !ok {
		return
	}
	key := idKey{typ: n.typ, id: id}
	if c.m[key] == n {
		delete(c.m, key)
	}
}

// checkSubtree reports the first identifiable node reachable from n
// that collides with an entry already registered in c.
func (c *IdentifierCache) checkSubtree(n *Node) error {
	if id, ok := n.typ.IdentifierOf(n); ok {
		key := idKey{typ: n.typ, id: id}
		if prev, present := c.m[key]; present && prev != n {
			return fmt.Errorf("%w: duplicate identifier %q for type %s", ErrInvalidArgument, id, n.typ.Name())
		}
	}
	for _, child := range n.typ.ChildNodes(n) {
		if err := c.checkSubtree(child); err != nil {
			return err
		}
	}
	return nil
}

// mergeSubtree registers every identifiable node reachable from n,
// including n itself. Used when a subtree attaches to a new root.
func (c *IdentifierCache) mergeSubtree(n *Node) error {
	if err := c.add(n); err != nil {
		return err
	}
	for _, child := range n.typ.ChildNodes(n) {
		if err := c.mergeSubtree(child); err != nil {
			return err
		}
	}
	return nil
}

// dropSubtree removes every identifiable node reachable from n.
func (c *IdentifierCache) dropSubtree(n *Node) {
	c.remove(n)
	for _, child := range n.typ.ChildNodes(n) {
		c.dropSubtree(child)
	}
}
