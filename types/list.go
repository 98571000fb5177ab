package types

import (
	"fmt"
	"strconv"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/txn"
)

// ListType describes an ordered sequence of one element type.
type ListType struct {
	name string
	elem PropType
}

func NewList(elem PropType) *ListType {
	return &ListType{name: "list<" + elem.Name() + ">", elem: elem}
}

func (t *ListType) Name() string { return t.name }

// List is a live instance of a ListType. Child subpaths are decimal
// indices, renumbered on insertion and removal.
type List struct {
	typ   *ListType
	n     *node.Node
	elems []any
}

func (l *List) nodeRef() *node.Node { return l.n }

// Node returns the tree node owning this instance.
func (l *List) Node() *node.Node { return l.n }

// New instantiates a detached root list; a nil snapshot makes an
// empty list.
func (t *ListType) New(snapshot []any) (*List, error) {
	inst, err := t.instantiate(nil, "", snapshot, nil)
	if err != nil {
		return nil, err
	}
	return inst.(*List), nil
}

// Create implements node.Type.
func (t *ListType) Create(snapshot, env any) (*node.Node, error) {
	inst, err := t.instantiate(nil, "", snapshot, env)
	if err != nil {
		return nil, err
	}
	return inst.nodeRef(), nil
}

func (t *ListType) instantiate(parent *node.Node, subpath string, snapshot, env any) (instance, error) {
	var snapList []any
	switch x := snapshot.(type) {
	case nil:
	case []any:
		snapList = x
	default:
		return nil, fmt.Errorf("%w: %s expects an array snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	l := &List{typ: t, elems: make([]any, 0, len(snapList))}
	n, err := node.New(t, parent, subpath, l, env)
	if err != nil {
		return nil, err
	}
	l.n = n
	for i, v := range snapList {
		stored, err := t.elem.slotAssign(n, strconv.Itoa(i), v)
		if err != nil {
			n.Die()
			return nil, fmt.Errorf("index %d of %s: %w", i, t.name, err)
		}
		l.elems = append(l.elems, stored)
	}
	if err := n.Attached(); err != nil {
		n.Die()
		return nil, err
	}
	return l, nil
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elems) }

// Get returns the element at index i.
func (l *List) Get(i int) (any, error) {
	if err := l.n.AssertAlive(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(l.elems) {
		return nil, fmt.Errorf("%w: index %d out of range (len %d)", node.ErrInvalidArgument, i, len(l.elems))
	}
	return l.elems[i], nil
}

// Set replaces the element at index i. A replaced composite child
// dies.
func (l *List) Set(i int, v any) error {
	if err := l.n.AssertWritable(); err != nil {
		return err
	}
	if i < 0 || i >= len(l.elems) {
		return fmt.Errorf("%w: index %d out of range (len %d)", node.ErrInvalidArgument, i, len(l.elems))
	}
	return txn.Atomic(func() error {
		return l.setAt(i, v)
	})
}

func (l *List) setAt(i int, v any) error {
	old := l.elems[i]
	if quickEqual(v, old) {
		return nil
	}
	oldSnap := l.typ.elem.slotSnapshot(old)
	// the old child's identifiers step aside so an incoming snapshot
	// may reuse them; the child itself dies only once the replacement
	// is in hand, so a failed assignment changes nothing
	oldNode := l.typ.elem.slotNode(old)
	if oldNode != nil {
		oldNode.DropIdentifiers()
	}
	stored, err := l.typ.elem.slotAssign(l.n, strconv.Itoa(i), v)
	if err != nil {
		if oldNode != nil {
			oldNode.RestoreIdentifiers()
		}
		return err
	}
	if stored == old {
		return nil
	}
	if oldNode != nil {
		oldNode.Die()
	}
	l.elems[i] = stored
	l.n.EmitPatch(patch.Patch{
		Op:       patch.OpReplace,
		Path:     "/" + strconv.Itoa(i),
		Value:    l.typ.elem.slotSnapshot(stored),
		OldValue: oldSnap,
	})
	return nil
}

// Push appends values.
func (l *List) Push(vs ...any) error {
	if err := l.n.AssertWritable(); err != nil {
		return err
	}
	return txn.Atomic(func() error {
		for _, v := range vs {
			if err := l.insertAt(len(l.elems), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Insert inserts v at index i, shifting later elements up.
func (l *List) Insert(i int, v any) error {
	if err := l.n.AssertWritable(); err != nil {
		return err
	}
	if i < 0 || i > len(l.elems) {
		return fmt.Errorf("%w: index %d out of range for insert (len %d)", node.ErrInvalidArgument, i, len(l.elems))
	}
	return txn.Atomic(func() error {
		return l.insertAt(i, v)
	})
}

func (l *List) insertAt(i int, v any) error {
	stored, err := l.typ.elem.slotAssign(l.n, strconv.Itoa(i), v)
	if err != nil {
		return err
	}
	l.elems = append(l.elems, nil)
	copy(l.elems[i+1:], l.elems[i:])
	l.elems[i] = stored
	l.reindex(i + 1)
	l.n.EmitPatch(patch.Patch{
		Op:    patch.OpAdd,
		Path:  "/" + strconv.Itoa(i),
		Value: l.typ.elem.slotSnapshot(stored),
	})
	return nil
}

// Remove removes the element at index i; a composite child dies.
func (l *List) Remove(i int) error {
	if err := l.n.AssertWritable(); err != nil {
		return err
	}
	if i < 0 || i >= len(l.elems) {
		return fmt.Errorf("%w: index %d out of range (len %d)", node.ErrInvalidArgument, i, len(l.elems))
	}
	return txn.Atomic(func() error {
		return l.removeAt(i, true)
	})
}

func (l *List) removeAt(i int, kill bool) error {
	old := l.elems[i]
	oldSnap := l.typ.elem.slotSnapshot(old)
	child := l.typ.elem.slotNode(old)
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	l.reindex(i)
	if child != nil && !kill {
		child.ClearParent()
	}
	l.n.EmitPatch(patch.Patch{
		Op:       patch.OpRemove,
		Path:     "/" + strconv.Itoa(i),
		OldValue: oldSnap,
	})
	if child != nil && kill {
		child.Die()
	}
	return nil
}

// reindex renames child subpaths from index from on.
func (l *List) reindex(from int) {
	for j := from; j < len(l.elems); j++ {
		if child := l.typ.elem.slotNode(l.elems[j]); child != nil {
			child.SetSubpath(strconv.Itoa(j))
		}
	}
}

// slot protocol

func (t *ListType) slotAssign(parent *node.Node, subpath string, v any) (any, error) {
	return assignComposite(t, func(v any) (instance, bool) {
		l, ok := v.(*List)
		if ok && l.typ == t {
			return l, true
		}
		return nil, false
	}, parent, subpath, v)
}

func (t *ListType) slotSnapshot(stored any) any { return compositeSnapshot(stored) }

func (t *ListType) slotNode(stored any) *node.Node { return compositeNode(stored) }

func (t *ListType) slotReconcile(parent *node.Node, subpath string, stored, snapshot any) (any, error) {
	if snapshot == nil {
		killComposite(stored)
		return nil, nil
	}
	if l, ok := stored.(*List); ok && l.typ == t {
		if err := t.ApplySnapshot(l.n, snapshot); err != nil {
			return nil, err
		}
		return stored, nil
	}
	killComposite(stored)
	return t.slotAssign(parent, subpath, snapshot)
}

// node.Type

func (t *ListType) SnapshotOf(n *node.Node) any {
	l := n.StoredValue().(*List)
	res := make([]any, len(l.elems))
	for i := range l.elems {
		res[i] = t.elem.slotSnapshot(l.elems[i])
	}
	return res
}

// ApplySnapshot reconciles index-wise: an element is kept when its
// type, and identifier if it has one, match at the same position.
func (t *ListType) ApplySnapshot(n *node.Node, snapshot any) error {
	if err := n.AssertWritable(); err != nil {
		return err
	}
	snapList, ok := snapshot.([]any)
	if !ok {
		return fmt.Errorf("%w: %s expects an array snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	l := n.StoredValue().(*List)
	common := min(len(l.elems), len(snapList))
	for i := 0; i < common; i++ {
		if _, prim := t.elem.(*Primitive); prim {
			if err := l.setAt(i, snapList[i]); err != nil {
				return fmt.Errorf("index %d of %s: %w", i, t.name, err)
			}
			continue
		}
		old := l.elems[i]
		oldSnap := t.elem.slotSnapshot(old)
		stored, err := t.elem.slotReconcile(n, strconv.Itoa(i), old, snapList[i])
		if err != nil {
			return fmt.Errorf("index %d of %s: %w", i, t.name, err)
		}
		l.elems[i] = stored
		if stored != old {
			n.EmitPatch(patch.Patch{
				Op:       patch.OpReplace,
				Path:     "/" + strconv.Itoa(i),
				Value:    t.elem.slotSnapshot(stored),
				OldValue: oldSnap,
			})
		}
	}
	for len(l.elems) > len(snapList) {
		if err := l.removeAt(len(l.elems)-1, true); err != nil {
			return err
		}
	}
	for i := common; i < len(snapList); i++ {
		if err := l.insertAt(len(l.elems), snapList[i]); err != nil {
			return fmt.Errorf("index %d of %s: %w", i, t.name, err)
		}
	}
	return nil
}

func (t *ListType) ApplyPatchOp(n *node.Node, key string, op patch.Op, value any) error {
	l := n.StoredValue().(*List)
	i := len(l.elems)
	if key != "-" {
		parsed, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: bad index %q for %s", patch.ErrApply, key, t.name)
		}
		i = parsed
	}
	switch op {
	case patch.OpAdd:
		if i < 0 || i > len(l.elems) {
			return fmt.Errorf("%w: index %d out of range for add (len %d)", patch.ErrApply, i, len(l.elems))
		}
		if err := l.insertAt(i, value); err != nil {
			return fmt.Errorf("%w: %v", patch.ErrApply, err)
		}
		return nil
	case patch.OpReplace:
		if i < 0 || i >= len(l.elems) {
			return fmt.Errorf("%w: index %d out of range (len %d)", patch.ErrApply, i, len(l.elems))
		}
		if err := l.setAt(i, value); err != nil {
			return fmt.Errorf("%w: %v", patch.ErrApply, err)
		}
		return nil
	case patch.OpRemove:
		if i < 0 || i >= len(l.elems) {
			return fmt.Errorf("%w: index %d out of range (len %d)", patch.ErrApply, i, len(l.elems))
		}
		return l.removeAt(i, true)
	default:
		return fmt.Errorf("%w: unknown op %q", patch.ErrApply, op)
	}
}

func (t *ListType) ChildNode(n *node.Node, subpath string) *node.Node {
	l := n.StoredValue().(*List)
	i, err := strconv.Atoi(subpath)
	if err != nil || i < 0 || i >= len(l.elems) {
		return nil
	}
	return t.elem.slotNode(l.elems[i])
}

func (t *ListType) ChildNodes(n *node.Node) []*node.Node {
	l := n.StoredValue().(*List)
	var res []*node.Node
	for i := range l.elems {
		if child := t.elem.slotNode(l.elems[i]); child != nil {
			res = append(res, child)
		}
	}
	return res
}

func (t *ListType) LeafValue(n *node.Node, key string) (any, bool) {
	if _, prim := t.elem.(*Primitive); !prim {
		return nil, false
	}
	l := n.StoredValue().(*List)
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

func (t *ListType) RemoveChild(n *node.Node, subpath string) error {
	l := n.StoredValue().(*List)
	i, err := strconv.Atoi(subpath)
	if err != nil || i < 0 || i >= len(l.elems) {
		return fmt.Errorf("%w: no child at %q of %s", node.ErrInvalidArgument, subpath, t.name)
	}
	return l.removeAt(i, true)
}

func (t *ListType) DetachChild(n *node.Node, subpath string) error {
	l := n.StoredValue().(*List)
	i, err := strconv.Atoi(subpath)
	if err != nil || i < 0 || i >= len(l.elems) {
		return fmt.Errorf("%w: no child at %q of %s", node.ErrInvalidArgument, subpath, t.name)
	}
	return l.removeAt(i, false)
}

func (t *ListType) IdentifierOf(n *node.Node) (string, bool) {
	return "", false
}
