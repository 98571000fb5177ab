package types

import (
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/treepath"
	"github.com/faassen/mobx-state-tree/txn"
)

// ActionFunc is the body of a named model action. Mutations inside it
// pass protection checks; args should be plain values so recorded
// calls replay across processes.
type ActionFunc func(self *Model, args []any) (any, error)

// ModelType describes an object shape: named, typed properties, named
// actions, and optionally an identifier property.
type ModelType struct {
	name      string
	propNames []string
	props     map[string]PropType
	actions   map[string]ActionFunc
	idProp    string
}

// NewModel starts a model type definition. Props, Action, and
// Identifier chain; the type is ready for use once built.
func NewModel(name string) *ModelType {
	return &ModelType{
		name:    name,
		props:   map[string]PropType{},
		actions: map[string]ActionFunc{},
	}
}

func (t *ModelType) Name() string { return t.name }

// Prop declares a property. Declaration order fixes child order.
func (t *ModelType) Prop(name string, pt PropType) *ModelType {
	if _, present := t.props[name]; present {
		panic(fmt.Sprintf("duplicate prop %q on model %q", name, t.name))
	}
	t.propNames = append(t.propNames, name)
	t.props[name] = pt
	return t
}

// Identifier marks a declared string property as the identifier
// attribute used by the tree's identifier cache. It is immutable once
// set on an instance.
func (t *ModelType) Identifier(prop string) *ModelType {
	if t.props[prop] != String {
		panic(fmt.Sprintf("identifier prop %q of model %q must be a declared string prop", prop, t.name))
	}
	t.idProp = prop
	return t
}

// Action declares a named action.
func (t *ModelType) Action(name string, fn ActionFunc) *ModelType {
	if _, present := t.actions[name]; present {
		panic(fmt.Sprintf("duplicate action %q on model %q", name, t.name))
	}
	t.actions[name] = fn
	return t
}

// Model is a live instance of a ModelType.
type Model struct {
	typ   *ModelType
	n     *node.Node
	props map[string]any
}

func (m *Model) nodeRef() *node.Node { return m.n }

// Node returns the tree node owning this instance.
func (m *Model) Node() *node.Node { return m.n }

// Type returns the model's type.
func (m *Model) Type() *ModelType { return m.typ }

// New instantiates a detached root from a plain snapshot.
func (t *ModelType) New(snapshot map[string]any) (*Model, error) {
	return t.NewWithEnv(snapshot, nil)
}

// NewWithEnv instantiates a detached root carrying env, available to
// the whole tree through the root.
func (t *ModelType) NewWithEnv(snapshot map[string]any, env any) (*Model, error) {
	inst, err := t.instantiate(nil, "", snapshot, env)
	if err != nil {
		return nil, err
	}
	return inst.(*Model), nil
}

// Create implements node.Type.
func (t *ModelType) Create(snapshot, env any) (*node.Node, error) {
	inst, err := t.instantiate(nil, "", snapshot, env)
	if err != nil {
		return nil, err
	}
	return inst.nodeRef(), nil
}

func (t *ModelType) instantiate(parent *node.Node, subpath string, snapshot, env any) (instance, error) {
	snapMap, ok := snapshot.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: model %q expects an object snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	if err := t.checkKeys(snapMap); err != nil {
		return nil, err
	}
	m := &Model{typ: t, props: map[string]any{}}
	n, err := node.New(t, parent, subpath, m, env)
	if err != nil {
		return nil, err
	}
	m.n = n
	for _, k := range t.propNames {
		stored, err := t.props[k].slotAssign(n, k, snapMap[k])
		if err != nil {
			n.Die()
			return nil, fmt.Errorf("prop %q of model %q: %w", k, t.name, err)
		}
		m.props[k] = stored
	}
	if err := n.Attached(); err != nil {
		n.Die()
		return nil, err
	}
	return m, nil
}

func (t *ModelType) checkKeys(snapMap map[string]any) error {
	for k := range snapMap {
		if _, declared := t.props[k]; !declared {
			return fmt.Errorf("%w: unknown prop %q in snapshot for model %q", node.ErrInvalidArgument, k, t.name)
		}
	}
	for _, k := range t.propNames {
		if _, present := snapMap[k]; !present {
			return fmt.Errorf("%w: missing prop %q in snapshot for model %q", node.ErrInvalidArgument, k, t.name)
		}
	}
	return nil
}

// Get returns the live value of a property: the raw value for
// primitives, the child instance for composites.
func (m *Model) Get(prop string) (any, error) {
	if err := m.n.AssertAlive(); err != nil {
		return nil, err
	}
	if _, declared := m.typ.props[prop]; !declared {
		return nil, fmt.Errorf("%w: model %q has no prop %q", node.ErrInvalidArgument, m.typ.name, prop)
	}
	return m.props[prop], nil
}

// Set assigns a property. Composite props accept a detached instance
// or a plain snapshot; the replaced child, if any, dies. Fails on
// protected trees outside an action.
func (m *Model) Set(prop string, v any) error {
	pt, declared := m.typ.props[prop]
	if !declared {
		return fmt.Errorf("%w: model %q has no prop %q", node.ErrInvalidArgument, m.typ.name, prop)
	}
	if err := m.n.AssertWritable(); err != nil {
		return err
	}
	return txn.Atomic(func() error {
		return m.setSlot(prop, pt, v)
	})
}

func (m *Model) setSlot(prop string, pt PropType, v any) error {
	old := m.props[prop]
	if quickEqual(v, old) {
		return nil
	}
	if prop == m.typ.idProp {
		return fmt.Errorf("%w: identifier prop %q of model %q is immutable", node.ErrInvalidArgument, prop, m.typ.name)
	}
	oldSnap := pt.slotSnapshot(old)
	// the old child's identifiers step aside so an incoming snapshot
	// may reuse them; the child itself dies only once the replacement
	// is in hand, so a failed assignment changes nothing
	oldNode := pt.slotNode(old)
	if oldNode != nil {
		oldNode.DropIdentifiers()
	}
	stored, err := pt.slotAssign(m.n, prop, v)
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
	m.props[prop] = stored
	m.n.EmitPatch(patch.Patch{
		Op:       patch.OpReplace,
		Path:     "/" + treepath.EscapeSegment(prop),
		Value:    pt.slotSnapshot(stored),
		OldValue: oldSnap,
	})
	return nil
}

// Call invokes a named action through the middleware chain.
func (m *Model) Call(name string, args ...any) (any, error) {
	fn, declared := m.typ.actions[name]
	if !declared {
		return nil, fmt.Errorf("%w: model %q has no action %q", node.ErrInvalidArgument, m.typ.name, name)
	}
	return m.n.RunAction(name, args, func() (any, error) {
		return fn(m, args)
	})
}

// slot protocol (model used as a prop type)

func (t *ModelType) slotAssign(parent *node.Node, subpath string, v any) (any, error) {
	return assignComposite(t, func(v any) (instance, bool) {
		m, ok := v.(*Model)
		if ok && m.typ == t {
			return m, true
		}
		return nil, false
	}, parent, subpath, v)
}

func (t *ModelType) slotSnapshot(stored any) any {
	return compositeSnapshot(stored)
}

func (t *ModelType) slotNode(stored any) *node.Node {
	return compositeNode(stored)
}

func (t *ModelType) slotReconcile(parent *node.Node, subpath string, stored, snapshot any) (any, error) {
	if snapshot == nil {
		killComposite(stored)
		return nil, nil
	}
	if m, ok := stored.(*Model); ok && m.typ == t && t.sameIdentity(m, snapshot) {
		if err := t.ApplySnapshot(m.n, snapshot); err != nil {
			return nil, err
		}
		return stored, nil
	}
	killComposite(stored)
	return t.slotAssign(parent, subpath, snapshot)
}

func (t *ModelType) sameIdentity(m *Model, snapshot any) bool {
	if t.idProp == "" {
		return true
	}
	snapMap, ok := snapshot.(map[string]any)
	if !ok {
		return false
	}
	return snapMap[t.idProp] == m.props[t.idProp]
}

// node.Type

func (t *ModelType) SnapshotOf(n *node.Node) any {
	m := n.StoredValue().(*Model)
	res := make(map[string]any, len(t.propNames))
	for _, k := range t.propNames {
		res[k] = t.props[k].slotSnapshot(m.props[k])
	}
	return res
}

func (t *ModelType) ApplySnapshot(n *node.Node, snapshot any) error {
	if err := n.AssertWritable(); err != nil {
		return err
	}
	snapMap, ok := snapshot.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: model %q expects an object snapshot, got %T", node.ErrInvalidArgument, t.name, snapshot)
	}
	if err := t.checkKeys(snapMap); err != nil {
		return err
	}
	m := n.StoredValue().(*Model)
	for _, k := range t.propNames {
		pt := t.props[k]
		old := m.props[k]
		newV := snapMap[k]
		if _, prim := pt.(*Primitive); prim {
			conv, err := pt.slotAssign(n, k, newV)
			if err != nil {
				return fmt.Errorf("prop %q of model %q: %w", k, t.name, err)
			}
			if conv == old {
				continue
			}
			if k == t.idProp {
				return fmt.Errorf("%w: identifier prop %q of model %q is immutable", node.ErrInvalidArgument, k, t.name)
			}
			m.props[k] = conv
			n.EmitPatch(patch.Patch{
				Op:       patch.OpReplace,
				Path:     "/" + treepath.EscapeSegment(k),
				Value:    conv,
				OldValue: old,
			})
			continue
		}
		oldSnap := pt.slotSnapshot(old)
		stored, err := pt.slotReconcile(n, k, old, newV)
		if err != nil {
			return fmt.Errorf("prop %q of model %q: %w", k, t.name, err)
		}
		m.props[k] = stored
		if stored != old {
			n.EmitPatch(patch.Patch{
				Op:       patch.OpReplace,
				Path:     "/" + treepath.EscapeSegment(k),
				Value:    pt.slotSnapshot(stored),
				OldValue: oldSnap,
			})
		}
	}
	return nil
}

func (t *ModelType) ApplyPatchOp(n *node.Node, key string, op patch.Op, value any) error {
	pt, declared := t.props[key]
	if !declared {
		return fmt.Errorf("%w: model %q has no prop %q", patch.ErrApply, t.name, key)
	}
	m := n.StoredValue().(*Model)
	switch op {
	case patch.OpAdd, patch.OpReplace:
		if key == t.idProp && m.props[key] == value {
			return nil
		}
		if err := m.setSlot(key, pt, value); err != nil {
			return fmt.Errorf("%w: %v", patch.ErrApply, err)
		}
		return nil
	case patch.OpRemove:
		if _, prim := pt.(*Primitive); prim {
			return fmt.Errorf("%w: cannot remove primitive prop %q of model %q", patch.ErrApply, key, t.name)
		}
		if m.props[key] == nil {
			return fmt.Errorf("%w: prop %q of model %q is already empty", patch.ErrApply, key, t.name)
		}
		return t.RemoveChild(n, key)
	default:
		return fmt.Errorf("%w: unknown op %q", patch.ErrApply, op)
	}
}

func (t *ModelType) ChildNode(n *node.Node, subpath string) *node.Node {
	pt, declared := t.props[subpath]
	if !declared {
		return nil
	}
	m := n.StoredValue().(*Model)
	return pt.slotNode(m.props[subpath])
}

func (t *ModelType) ChildNodes(n *node.Node) []*node.Node {
	m := n.StoredValue().(*Model)
	var res []*node.Node
	for _, k := range t.propNames {
		if child := t.props[k].slotNode(m.props[k]); child != nil {
			res = append(res, child)
		}
	}
	return res
}

func (t *ModelType) LeafValue(n *node.Node, key string) (any, bool) {
	pt, declared := t.props[key]
	if !declared {
		return nil, false
	}
	if _, prim := pt.(*Primitive); !prim {
		return nil, false
	}
	m := n.StoredValue().(*Model)
	return m.props[key], true
}

func (t *ModelType) RemoveChild(n *node.Node, subpath string) error {
	pt, declared := t.props[subpath]
	if !declared {
		return fmt.Errorf("%w: model %q has no prop %q", node.ErrInvalidArgument, t.name, subpath)
	}
	m := n.StoredValue().(*Model)
	old := m.props[subpath]
	child := pt.slotNode(old)
	if child == nil {
		return fmt.Errorf("%w: no child at %q of model %q", node.ErrInvalidArgument, subpath, t.name)
	}
	oldSnap := pt.slotSnapshot(old)
	m.props[subpath] = nil
	n.EmitPatch(patch.Patch{
		Op:       patch.OpRemove,
		Path:     "/" + treepath.EscapeSegment(subpath),
		OldValue: oldSnap,
	})
	child.Die()
	return nil
}

func (t *ModelType) DetachChild(n *node.Node, subpath string) error {
	pt, declared := t.props[subpath]
	if !declared {
		return fmt.Errorf("%w: model %q has no prop %q", node.ErrInvalidArgument, t.name, subpath)
	}
	m := n.StoredValue().(*Model)
	old := m.props[subpath]
	child := pt.slotNode(old)
	if child == nil {
		return fmt.Errorf("%w: no child at %q of model %q", node.ErrInvalidArgument, subpath, t.name)
	}
	oldSnap := pt.slotSnapshot(old)
	m.props[subpath] = nil
	child.ClearParent()
	n.EmitPatch(patch.Patch{
		Op:       patch.OpRemove,
		Path:     "/" + treepath.EscapeSegment(subpath),
		OldValue: oldSnap,
	})
	return nil
}

func (t *ModelType) IdentifierOf(n *node.Node) (string, bool) {
	if t.idProp == "" {
		return "", false
	}
	m := n.StoredValue().(*Model)
	id, ok := m.props[t.idProp].(string)
	return id, ok
}

// helpers shared by composite slot types

func compositeSnapshot(stored any) any {
	if stored == nil {
		return nil
	}
	snap, err := stored.(instance).nodeRef().Snapshot()
	if err != nil {
		return nil
	}
	return snap
}

func compositeNode(stored any) *node.Node {
	if stored == nil {
		return nil
	}
	return stored.(instance).nodeRef()
}

func killComposite(stored any) {
	if stored == nil {
		return
	}
	stored.(instance).nodeRef().Die()
}
