package node_test

import (
	"errors"
	"testing"

	"github.com/faassen/mobx-state-tree/node"
	"github.com/faassen/mobx-state-tree/types"
)

func itemType() *types.ModelType {
	return types.NewModel("Item").
		Prop("id", types.String).
		Prop("label", types.String).
		Identifier("id")
}

func boxType(item *types.ModelType) *types.ModelType {
	return types.NewModel("Box").
		Prop("name", types.String).
		Prop("items", types.NewList(item))
}

func newBox(t *testing.T) (*types.Model, *types.ModelType) {
	t.Helper()
	item := itemType()
	box := boxType(item)
	b, err := box.New(map[string]any{
		"name": "b",
		"items": []any{
			map[string]any{"id": "i1", "label": "one"},
			map[string]any{"id": "i2", "label": "two"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return b, item
}

func TestPathsAndRoot(t *testing.T) {
	b, _ := newBox(t)
	root := b.Node()
	if root.Path() != "" {
		t.Errorf("root path = %q", root.Path())
	}
	items, err := root.Resolve("items")
	if err != nil {
		t.Fatal(err)
	}
	if items.Path() != "/items" {
		t.Errorf("items path = %q", items.Path())
	}
	first, err := root.Resolve("items/0")
	if err != nil {
		t.Fatal(err)
	}
	if first.Path() != "/items/0" {
		t.Errorf("first path = %q", first.Path())
	}
	if first.Root() != root {
		t.Error("wrong root")
	}
	if first.Parent() != items {
		t.Error("wrong parent")
	}
}

func TestResolveSegments(t *testing.T) {
	b, _ := newBox(t)
	root := b.Node()
	first, err := root.Resolve("items/0")
	if err != nil {
		t.Fatal(err)
	}
	back, err := first.Resolve("../1")
	if err != nil {
		t.Fatal(err)
	}
	if back.Path() != "/items/1" {
		t.Errorf("resolved %q", back.Path())
	}
	same, err := first.Resolve(".")
	if err != nil || same != first {
		t.Errorf("dot resolve: %v %v", same, err)
	}
	abs, err := first.Resolve("/items")
	if err != nil {
		t.Fatal(err)
	}
	if abs.Path() != "/items" {
		t.Errorf("absolute resolve %q", abs.Path())
	}
	if _, err := root.Resolve(".."); !errors.Is(err, node.ErrResolution) {
		t.Errorf("above root: got %v", err)
	}
	if _, err := root.Resolve("nope"); !errors.Is(err, node.ErrResolution) {
		t.Errorf("missing segment: got %v", err)
	}
	if root.TryResolve("nope") != nil {
		t.Error("TryResolve should report nil")
	}
}

func TestRelativePathRoundTrip(t *testing.T) {
	b, _ := newBox(t)
	root := b.Node()
	first, err := root.Resolve("items/0")
	if err != nil {
		t.Fatal(err)
	}
	second, err := root.Resolve("items/1")
	if err != nil {
		t.Fatal(err)
	}
	rel, err := first.RelativePathTo(second)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "../1" {
		t.Errorf("relative path = %q", rel)
	}
	resolved, err := first.Resolve(rel)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != second {
		t.Error("round trip missed the target")
	}

	other, _ := newBox(t)
	if _, err := first.RelativePathTo(other.Node()); !errors.Is(err, node.ErrResolution) {
		t.Errorf("cross-tree: got %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	b, _ := newBox(t)
	itemsAny, err := b.Get("items")
	if err != nil {
		t.Fatal(err)
	}
	items := itemsAny.(*types.List)
	if node.For(items) != items.Node() {
		t.Error("registry does not map value to node")
	}
	if node.For("unrelated") != nil {
		t.Error("unknown value should map to nil")
	}
	items.Node().Die()
	if node.For(items) != nil {
		t.Error("dead value still registered")
	}
}

func TestDeathCascade(t *testing.T) {
	b, item := newBox(t)
	root := b.Node()
	items, _ := root.Resolve("items")
	first, _ := root.Resolve("items/0")
	cache := root.IdentifierCache()
	if cache.Resolve(item, "i1") != first {
		t.Fatal("identifier not cached")
	}
	root.Die()
	for _, n := range []*node.Node{root, items, first} {
		if n.IsAlive() {
			t.Errorf("node at %q still alive", n.Path())
		}
	}
	if cache.Len() != 0 {
		t.Errorf("identifier cache has %d entries after death", cache.Len())
	}
	// dying twice is fine
	root.Die()
}

func TestDisposersRunInOrderAndIsolated(t *testing.T) {
	b, _ := newBox(t)
	root := b.Node()
	var order []string
	if err := root.AddDisposer(func() { order = append(order, "a") }); err != nil {
		t.Fatal(err)
	}
	if err := root.AddDisposer(func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	if err := root.AddDisposer(func() { order = append(order, "c") }); err != nil {
		t.Fatal(err)
	}
	root.Die()
	if len(order) != 2 || order[0] != "a" || order[1] != "c" {
		t.Errorf("disposer order = %v", order)
	}
}

func TestDetachCarriesEnvAndIdentifiers(t *testing.T) {
	item := itemType()
	box := boxType(item)
	env := map[string]any{"io": "here"}
	b, err := box.NewWithEnv(map[string]any{
		"name": "b",
		"items": []any{
			map[string]any{"id": "i1", "label": "one"},
		},
	}, env)
	if err != nil {
		t.Fatal(err)
	}
	root := b.Node()
	first, err := root.Resolve("items/0")
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Detach(); err != nil {
		t.Fatal(err)
	}
	if !first.IsRoot() || !first.IsAlive() {
		t.Fatal("detached node should be a live root")
	}
	if first.Env() == nil {
		t.Error("detached tree lost its env")
	}
	if root.IdentifierCache().Resolve(item, "i1") != nil {
		t.Error("old tree still resolves the detached identifier")
	}
	if first.IdentifierCache().Resolve(item, "i1") != first {
		t.Error("detached tree does not resolve its own identifier")
	}
	// the old tree no longer contains the child
	if root.TryResolve("items/0") != nil {
		t.Error("old tree still resolves the detached child")
	}
}

func TestDetachRootIsNoop(t *testing.T) {
	b, _ := newBox(t)
	if err := b.Node().Detach(); err != nil {
		t.Fatal(err)
	}
	if !b.Node().IsRoot() {
		t.Error("root stopped being root")
	}
}

func TestDuplicateIdentifierRejected(t *testing.T) {
	item := itemType()
	box := boxType(item)
	_, err := box.New(map[string]any{
		"name": "b",
		"items": []any{
			map[string]any{"id": "dup", "label": "one"},
			map[string]any{"id": "dup", "label": "two"},
		},
	})
	if !errors.Is(err, node.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestFailedAttachLeavesTreesIntact(t *testing.T) {
	item := itemType()
	box := boxType(item)
	shelf := types.NewMap(box)
	s, err := shelf.New(map[string]any{
		"x": map[string]any{
			"name": "b",
			"items": []any{
				map[string]any{"id": "i1", "label": "one"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	other, err := box.New(map[string]any{
		"name": "o",
		"items": []any{
			map[string]any{"id": "fresh", "label": "new"},
			map[string]any{"id": "i1", "label": "clash"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Set("y", other)
	if !errors.Is(err, node.ErrInvalidArgument) {
		t.Fatalf("colliding attach: got %v, want ErrInvalidArgument", err)
	}
	if s.Has("y") {
		t.Error("failed attach left the entry in the map")
	}
	if found := s.Node().IdentifierCache().Resolve(item, "fresh"); found != nil {
		t.Error("failed attach leaked identifiers into the target tree")
	}
	if !other.Node().IsRoot() {
		t.Error("failed attach left the subtree half-attached")
	}
	if found := other.Node().IdentifierCache().Resolve(item, "fresh"); found == nil {
		t.Error("failed attach lost the subtree's own identifier cache")
	}
	if _, err := other.Node().Resolve("items/1"); err != nil {
		t.Errorf("detached subtree no longer resolves: %v", err)
	}
}

func TestProtectOnlyOnRoot(t *testing.T) {
	b, _ := newBox(t)
	root := b.Node()
	items, _ := root.Resolve("items")
	if err := items.Protect(); !errors.Is(err, node.ErrInvalidArgument) {
		t.Errorf("protect non-root: got %v", err)
	}
	if err := root.Protect(); err != nil {
		t.Fatal(err)
	}
	if !items.IsProtectionEnabled() {
		t.Error("protection should be visible tree-wide")
	}
	if err := root.Unprotect(); err != nil {
		t.Fatal(err)
	}
	if items.IsProtectionEnabled() {
		t.Error("protection should be off")
	}
}
