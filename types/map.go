package types

import (
	"fmt"
	"maps"
	"slices"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// MapType describes a string-keyed container of one element type.
type MapType struct {
	name string
	elem PropType
}

func NewMap(elem PropType) *MapType {
	return &MapType{name: "map<" + elem.Name() + ">", elem: elem}
}

func (t *MapType) Name() string { return t.name }

// Map is a live instance of a MapType. Child subpaths are the keys.
type Map struct {
	typ     *MapType
	n       *node.Node
	entries map[string]any
}

func (m *Map) nodeRef() *node.Node { return m.n }

// Node returns the tree node owning this instance.
func (m *Map) Node() *node.Node { return m.n }

// New instantiates a detached root map; a nil snapshot makes an empty
// map.
func (t *MapType) New(snapshot map[string]any) (*Map, error) {
	inst, err := t.instantiate(nil, "", snapshot, nil)
	if err != nil {
		return nil, err
	}
	return inst.(*Map), nil
}

// Create implements node.Type.
func (t *MapType) Create(snapshot, env any) (*node.Node, error) {
	inst, err := t.instantiate(nil, "", snapshot, env)
	if err != nil {
		return nil, err
	}
	return inst.nodeRef(), nil
}

func (t *MapType) instantiate(parent *node.Node, subpath string, snapshot, env any) (instance, error) {
	var snapMap map[string]any
	switch x := snapshot.(type) {
	case nil:
	case map[string]any:
		snapMap = x
	default:
		return nil, fmt.Errorf("%w: %s expects an object snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	m := &Map{typ: t, entries: make(map[string]any, len(snapMap))}
	n, err := node.New(t, parent, subpath, m, env)
	if err != nil {
		return nil, err
	}
	m.n = n
	for _, k := range slices.Sorted(maps.Keys(snapMap)) {
		stored, err := t.elem.slotAssign(n, k, snapMap[k])
		if err != nil {
			n.Die()
			return nil, fmt.Errorf("key %q of %s: %w", k, t.name, err)
		}
		m.entries[k] = stored
	}
	if err := n.Attached(); err != nil {
		n.Die()
		return nil, err
	}
	return m, nil
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns the keys in sorted order.
func (m *Map) Keys() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, present := m.entries[key]
	return present
}

// Get returns the value at key, or nil when absent.
func (m *Map) Get(key string) (any, error) {
	if err := m.n.AssertAlive(); err != nil {
		return nil, err
	}
	return m.entries[key], nil
}

// Set adds or replaces the entry at key.
func (m *Map) Set(key string, v any) error {
	if err := m.n.AssertWritable(); err != nil {
		return err
	}
	return txn.Atomic(func() error {
		return m.setKey(key, v)
	})
}

func (m *Map) setKey(key string, v any) error {
	old, present := m.entries[key]
	if present && quickEqual(v, old) {
		return nil
	}
	oldSnap := m.typ.elem.slotSnapshot(old)
	// the old child's identifiers step aside so an incoming snapshot
	// may reuse them; the child itself dies only once the replacement
	// is in hand, so a failed assignment changes nothing
	oldNode := m.typ.elem.slotNode(old)
	if oldNode != nil {
		oldNode.DropIdentifiers()
	}
	stored, err := m.typ.elem.slotAssign(m.n, key, v)
	if err != nil {
		if oldNode != nil {
			oldNode.RestoreIdentifiers()
		}
		return err
	}
	if present && stored == old {
		return nil
	}
	if oldNode != nil {
		oldNode.Die()
	}
	m.entries[key] = stored
	p := patch.Patch{
		Op:    patch.OpReplace,
		Path:  "/" + treepath.EscapeSegment(key),
		Value: m.typ.elem.slotSnapshot(stored),
	}
	if !present {
		p.Op = patch.OpAdd
	} else {
		p.OldValue = oldSnap
	}
	m.n.EmitPatch(p)
	return nil
}

// Delete removes the entry at key; a composite child dies. Deleting
// an absent key is a no-op.
func (m *Map) Delete(key string) error {
	if err := m.n.AssertWritable(); err != nil {
		return err
	}
	if _, present := m.entries[key]; !present {
		return nil
	}
	return txn.Atomic(func() error {
		return m.deleteKey(key, true)
	})
}

func (m *Map) deleteKey(key string, kill bool) error {
	old := m.entries[key]
	oldSnap := m.typ.elem.slotSnapshot(old)
	child := m.typ.elem.slotNode(old)
	delete(m.entries, key)
	if child != nil && !kill {
		child.ClearParent()
	}
	m.n.EmitPatch(patch.Patch{
		Op:       patch.OpRemove,
		Path:     "/" + treepath.EscapeSegment(key),
		OldValue: oldSnap,
	})
	if child != nil && kill {
		child.Die()
	}
	return nil
}

// slot protocol

func (t *MapType) slotAssign(parent *node.Node, subpath string, v any) (any, error) {
	return assignComposite(t, func(v any) (instance, bool) {
		m, ok := v.(*Map)
		if ok && m.typ == t {
			return m, true
		}
		return nil, false
	}, parent, subpath, v)
}

func (t *MapType) slotSnapshot(stored any) any { return compositeSnapshot(stored) }

func (t *MapType) slotNode(stored any) *node.Node { return compositeNode(stored) }

func (t *MapType) slotReconcile(parent *node.Node, subpath string, stored, snapshot any) (any, error) {
	if snapshot == nil {
		killComposite(stored)
		return nil, nil
	}
	if m, ok := stored.(*Map); ok && m.typ == t {
		if err := t.ApplySnapshot(m.n, snapshot); err != nil {
			return nil, err
		}
		return stored, nil
	}
	killComposite(stored)
	return t.slotAssign(parent, subpath, snapshot)
}

// node.Type

func (t *MapType) SnapshotOf(n *node.Node) any {
	m := n.StoredValue().(*Map)
	res := make(map[string]any, len(m.entries))
	for k, stored := range m.entries {
		res[k] = t.elem.slotSnapshot(stored)
	}
	return res
}

func (t *MapType) ApplySnapshot(n *node.Node, snapshot any) error {
	if err := n.AssertWritable(); err != nil {
		return err
	}
	snapMap, ok := snapshot.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s expects an object snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	m := n.StoredValue().(*Map)
	for _, k := range m.Keys() {
		if _, keep := snapMap[k]; !keep {
			if err := m.deleteKey(k, true); err != nil {
				return err
			}
		}
	}
	for _, k := range slices.Sorted(maps.Keys(snapMap)) {
		old, present := m.entries[k]
		if !present {
			if err := m.setKey(k, snapMap[k]); err != nil {
				return fmt.Errorf("key %q of %s: %w", k, t.name, err)
			}
			continue
		}
		if _, prim := t.elem.(*Primitive); prim {
			if err := m.setKey(k, snapMap[k]); err != nil {
				return fmt.Errorf("key %q of %s: %w", k, t.name, err)
			}
			continue
		}
		oldSnap := t.elem.slotSnapshot(old)
		stored, err := t.elem.slotReconcile(n, k, old, snapMap[k])
		if err != nil {
			return fmt.Errorf("key %q of %s: %w", k, t.name, err)
		}
		m.entries[k] = stored
		if stored != old {
			n.EmitPatch(patch.Patch{
				Op:       patch.OpReplace,
				Path:     "/" + treepath.EscapeSegment(k),
				Value:    t.elem.slotSnapshot(stored),
				OldValue: oldSnap,
			})
		}
	}
	return nil
}

func (t *MapType) ApplyPatchOp(n *node.Node, key string, op patch.Op, value any) error {
	m := n.StoredValue().(*Map)
	switch op {
	case patch.OpAdd, patch.OpReplace:
		if err := m.setKey(key, value); err != nil {
			return fmt.Errorf("%w: %v", patch.ErrApply, err)
		}
		return nil
	case patch.OpRemove:
		if _, present := m.entries[key]; !present {
			return fmt.Errorf("%w: no key %q in %s", patch.ErrApply, key, t.name)
		}
		return m.deleteKey(key, true)
	default:
		return fmt.Errorf("%w: unknown op %q", patch.ErrApply, op)
	}
}

func (t *MapType) ChildNode(n *node.Node, subpath string) *node.Node {
	m := n.StoredValue().(*Map)
	return t.elem.slotNode(m.entries[subpath])
}

func (t *MapType) ChildNodes(n *node.Node) []*node.Node {
	m := n.StoredValue().(*Map)
	var res []*node.Node
	for _, k := range m.Keys() {
		if child := t.elem.slotNode(m.entries[k]); child != nil {
			res = append(res, child)
		}
	}
	return res
}

func (t *MapType) LeafValue(n *node.Node, key string) (any, bool) {
	if _, prim := t.elem.(*Primitive); !prim {
		return nil, false
	}
	m := n.StoredValue().(*Map)
	v, present := m.entries[key]
	return v, present
}

func (t *MapType) RemoveChild(n *node.Node, subpath string) error {
	m := n.StoredValue().(*Map)
	if _, present := m.entries[subpath]; !present {
		return fmt.Errorf("%w: no child at %q of %s", node.ErrInvalidArgument, subpath, t.name)
	}
	return m.deleteKey(subpath, true)
}

func (t *MapType) DetachChild(n *node.Node, subpath string) error {
	m := n.StoredValue().(*Map)
	if _, present := m.entries[subpath]; !present {
		return fmt.Errorf("%w: no child at %q of %s", node.ErrInvalidArgument, subpath, t.name)
	}
	return m.deleteKey(subpath, false)
}

func (t *MapType) IdentifierOf(n *node.Node) (string, bool) {
	return "", false
}
