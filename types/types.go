// Package types implements the schema layer of the tree store: model,
// list, and map types that build live instances from plain snapshots,
// compute snapshots back, and funnel every mutation through the node
// core so protection, patches, and snapshot batching apply uniformly.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/faassen/mobx-state-tree/node"
)

// PropType describes the type of one value slot: a primitive kind or
// a node-backed composite (model, list, map). The set of
// implementations is closed.
type PropType interface {
	Name() string

	// slotAssign validates v and returns the stored representation
	// for a slot at subpath under parent, creating or attaching a
	// child node for composite types.
	slotAssign(parent *node.Node, subpath string, v any) (any, error)

	// slotSnapshot returns the plain value for a stored
	// representation.
	slotSnapshot(stored any) any

	// slotNode returns the child node behind a stored
	// representation, or nil for primitives.
	slotNode(stored any) *node.Node

	// slotReconcile minimally updates a stored representation to
	// match snapshot, preserving the child node where type and
	// identifier allow it. The previous child dies when replaced.
	slotReconcile(parent *node.Node, subpath string, stored, snapshot any) (any, error)
}

type primitiveKind int

const (
	stringKind primitiveKind = iota
	numberKind
	boolKind
)

// Primitive is a leaf slot type. Primitive values live directly in
// their container's stored value and have no node of their own.
type Primitive struct {
	kind primitiveKind
	name string
}

var (
	String = &Primitive{kind: stringKind, name: "string"}
	Number = &Primitive{kind: numberKind, name: "number"}
	Bool   = &Primitive{kind: boolKind, name: "boolean"}
)

func (p *Primitive) Name() string { return p.name }

func (p *Primitive) slotAssign(parent *node.Node, subpath string, v any) (any, error) {
	return p.convert(v)
}

func (p *Primitive) slotSnapshot(stored any) any { return stored }

func (p *Primitive) slotNode(stored any) *node.Node { return nil }

func (p *Primitive) slotReconcile(parent *node.Node, subpath string, stored, snapshot any) (any, error) {
	return p.convert(snapshot)
}

// convert checks kind and normalizes numbers to float64 so snapshots
// compare equal after a JSON round trip.
func (p *Primitive) convert(v any) (any, error) {
	switch p.kind {
	case stringKind:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %T", node.ErrInvalidArgument, v)
		}
		return s, nil
	case numberKind:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected number, got %T", node.ErrInvalidArgument, v)
		}
		return f, nil
	case boolKind:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected boolean, got %T", node.ErrInvalidArgument, v)
		}
		return b, nil
	default:
		panic("kind")
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// quickEqual compares two slot values when the left side has a
// comparable dynamic type. Snapshot maps and slices report false and
// take the slow path.
func quickEqual(a, b any) bool {
	switch a.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint:
		return a == b
	case *Model, *List, *Map:
		return a == b
	default:
		return false
	}
}

// instance is implemented by all live composite values.
type instance interface {
	nodeRef() *node.Node
}

// nodeType is the protocol shared by composite types: PropType for
// slot handling plus node.Type for the core's callbacks.
type nodeType interface {
	PropType
	node.Type
	// instantiate builds an instance subtree from snapshot at
	// subpath under parent (nil parent for roots).
	instantiate(parent *node.Node, subpath string, snapshot, env any) (instance, error)
}

// assignComposite implements slotAssign for composite types: an
// existing detached instance of the right type attaches as-is, nil
// stays nil, anything else is treated as a snapshot.
func assignComposite(t nodeType, sameType func(v any) (instance, bool), parent *node.Node, subpath string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if inst, ok := sameType(v); ok {
		if err := inst.nodeRef().AttachTo(parent, subpath); err != nil {
			return nil, err
		}
		return inst, nil
	}
	inst, err := t.instantiate(parent, subpath, v, nil)
	if err != nil {
		return nil, err
	}
	return inst, nil
}
