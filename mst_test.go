package mst_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	mst "github.com/faassen/mobx-state-tree"
	"github.com/faassen/mobx-state-tree/types"
)

func todoType() *types.ModelType {
	return types.NewModel("Todo").
		Prop("id", types.String).
		Prop("title", types.String).
		Prop("done", types.Bool).
		Identifier("id").
		Action("toggle", func(self *types.Model, args []any) (any, error) {
			done, err := self.Get("done")
			if err != nil {
				return nil, err
			}
			return nil, self.Set("done", !done.(bool))
		}).
		Action("rename", func(self *types.Model, args []any) (any, error) {
			return nil, self.Set("title", args[0])
		}).
		Action("renameAndToggle", func(self *types.Model, args []any) (any, error) {
			if err := self.Set("title", args[0]); err != nil {
				return nil, err
			}
			done, err := self.Get("done")
			if err != nil {
				return nil, err
			}
			return nil, self.Set("done", !done.(bool))
		})
}

func storeType(todo *types.ModelType) *types.ModelType {
	return types.NewModel("Store").
		Prop("title", types.String).
		Prop("todos", types.NewList(todo)).
		Prop("tags", types.NewMap(types.String))
}

func storeSnap() map[string]any {
	return map[string]any{
		"title": "today",
		"todos": []any{
			map[string]any{"id": "t1", "title": "milk", "done": false},
			map[string]any{"id": "t2", "title": "code", "done": true},
		},
		"tags": map[string]any{"home": "x"},
	}
}

type fixture struct {
	store *types.Model
	todo  *types.ModelType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	todo := todoType()
	store, err := storeType(todo).New(storeSnap())
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{store: store, todo: todo}
}

func (f *fixture) todoAt(t *testing.T, i int) *types.Model {
	t.Helper()
	todosAny, err := f.store.Get("todos")
	if err != nil {
		t.Fatal(err)
	}
	v, err := todosAny.(*types.List).Get(i)
	if err != nil {
		t.Fatal(err)
	}
	return v.(*types.Model)
}

func TestGetSnapshotNormalized(t *testing.T) {
	f := newFixture(t)
	snap, err := mst.GetSnapshot(f.store)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(storeSnap(), snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestGetParent(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	if _, err := mst.GetParent(first, 0); !errors.Is(err, mst.ErrInvalidArgument) {
		t.Errorf("depth 0: got %v", err)
	}
	todosAny, _ := f.store.Get("todos")
	p, err := mst.GetParent(first, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p != todosAny {
		t.Error("depth 1 should be the list")
	}
	p, err = mst.GetParent(first, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p != any(f.store) {
		t.Error("depth 2 should be the store")
	}
	if _, err := mst.GetParent(first, 3); !errors.Is(err, mst.ErrResolution) {
		t.Errorf("above root: got %v", err)
	}
	root, err := mst.GetRoot(first)
	if err != nil {
		t.Fatal(err)
	}
	if root != any(f.store) {
		t.Error("wrong root")
	}
}

func TestPathsAndResolution(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	path, err := mst.GetPath(first)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/todos/0" {
		t.Errorf("path = %q", path)
	}
	got, err := mst.Resolve(f.store, path)
	if err != nil {
		t.Fatal(err)
	}
	if got != any(first) {
		t.Error("resolve by path missed")
	}
	title, err := mst.Resolve(f.store, "/todos/0/title")
	if err != nil {
		t.Fatal(err)
	}
	if title != "milk" {
		t.Errorf("leaf resolve = %v", title)
	}
	if mst.TryResolve(f.store, "/todos/9") != nil {
		t.Error("TryResolve should report nil")
	}
	if _, err := mst.Resolve(f.store, "/nope"); !errors.Is(err, mst.ErrResolution) {
		t.Errorf("got %v, want ErrResolution", err)
	}
}

func TestRelativePathRoundTrip(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	second := f.todoAt(t, 1)
	rel, err := mst.GetRelativePath(first, second)
	if err != nil {
		t.Fatal(err)
	}
	if rel != "../1" {
		t.Errorf("relative path = %q", rel)
	}
	got, err := mst.Resolve(first, rel)
	if err != nil {
		t.Fatal(err)
	}
	if got != any(second) {
		t.Error("round trip missed the target")
	}
}

func TestResolveIdentifierLookup(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	got, err := mst.ResolveIdentifier(f.store, f.todo, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got != any(first) {
		t.Error("identifier lookup missed")
	}
	absent, err := mst.ResolveIdentifier(f.store, f.todo, "zz")
	if err != nil {
		t.Fatal(err)
	}
	if absent != nil {
		t.Error("absent identifier should be nil")
	}
	if err := mst.Destroy(first); err != nil {
		t.Fatal(err)
	}
	gone, err := mst.ResolveIdentifier(f.store, f.todo, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("destroyed identifier should be nil")
	}
}

func TestDestroyRemovesFromParent(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	if err := mst.Destroy(first); err != nil {
		t.Fatal(err)
	}
	if mst.IsAlive(first) {
		t.Error("destroyed value still alive")
	}
	todosAny, _ := f.store.Get("todos")
	if todosAny.(*types.List).Len() != 1 {
		t.Error("destroyed value still in parent")
	}
	if _, err := mst.GetSnapshot(first); !errors.Is(err, mst.ErrInvalidArgument) {
		t.Errorf("dead value lookup: got %v", err)
	}
}

func TestDetachKeepsValueUsable(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	if err := mst.Detach(first); err != nil {
		t.Fatal(err)
	}
	if !mst.IsRoot(first) || !mst.IsAlive(first) {
		t.Fatal("detached value should be a live root")
	}
	got, err := mst.ResolveIdentifier(first, f.todo, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got != any(first) {
		t.Error("detached tree should resolve its own identifier")
	}
	old, err := mst.ResolveIdentifier(f.store, f.todo, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if old != nil {
		t.Error("old tree still resolves the detached identifier")
	}
	// the detached value can mutate and join another tree
	if err := first.Set("title", "detached"); err != nil {
		t.Fatal(err)
	}
	todosAny, _ := f.store.Get("todos")
	if err := todosAny.(*types.List).Push(first); err != nil {
		t.Fatal(err)
	}
	path, err := mst.GetPath(first)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/todos/1" {
		t.Errorf("reattached path = %q", path)
	}
}

func TestCloneIndependence(t *testing.T) {
	env := map[string]any{"api": "x"}
	todo := todoType()
	store, err := storeType(todo).NewWithEnv(storeSnap(), env)
	if err != nil {
		t.Fatal(err)
	}
	cloneAny, err := mst.Clone(store)
	if err != nil {
		t.Fatal(err)
	}
	clone := cloneAny.(*types.Model)
	if err := clone.Set("title", "changed"); err != nil {
		t.Fatal(err)
	}
	orig, _ := store.Get("title")
	if orig != "today" {
		t.Error("mutating the clone touched the original")
	}
	cloneEnv, err := mst.GetEnv(clone)
	if err != nil {
		t.Fatal(err)
	}
	if cloneEnv != nil {
		t.Error("clone should not keep env by default")
	}
	keptAny, err := mst.Clone(store, mst.CloneKeepEnv(true))
	if err != nil {
		t.Fatal(err)
	}
	keptEnv, err := mst.GetEnv(keptAny)
	if err != nil {
		t.Fatal(err)
	}
	if keptEnv == nil {
		t.Error("CloneKeepEnv should carry the env")
	}
}

func TestProtection(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	if err := mst.Protect(f.store); err != nil {
		t.Fatal(err)
	}
	if !mst.IsProtected(first) {
		t.Error("protection should be visible on descendants")
	}
	if err := first.Set("title", "x"); !errors.Is(err, mst.ErrProtected) {
		t.Errorf("direct mutation: got %v, want ErrProtected", err)
	}
	if _, err := first.Call("rename", "via action"); err != nil {
		t.Fatal(err)
	}
	title, _ := first.Get("title")
	if title != "via action" {
		t.Errorf("title = %v", title)
	}
	if err := mst.Unprotect(f.store); err != nil {
		t.Fatal(err)
	}
	if err := first.Set("title", "direct again"); err != nil {
		t.Fatal(err)
	}
}

func TestAddDisposer(t *testing.T) {
	f := newFixture(t)
	first := f.todoAt(t, 0)
	ran := false
	if err := mst.AddDisposer(first, func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if err := mst.Destroy(first); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("disposer did not run")
	}
}
