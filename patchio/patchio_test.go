package patchio

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/faassen/mobx-state-tree/patch"
)

func TestToJSONPatchDropsOldValue(t *testing.T) {
	d, err := ToJSONPatch([]patch.Patch{
		{Op: patch.OpReplace, Path: "/title", Value: "b", OldValue: "a"},
		{Op: patch.OpRemove, Path: "/done"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(d, &got); err != nil {
		t.Fatal(err)
	}
	want := []map[string]any{
		{"op": "replace", "path": "/title", "value": "b"},
		{"op": "remove", "path": "/done"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyToJSON(t *testing.T) {
	doc := []byte(`{"title":"a","items":["x"]}`)
	out, err := ApplyToJSON(doc, []patch.Patch{
		{Op: patch.OpReplace, Path: "/title", Value: "b"},
		{Op: patch.OpAdd, Path: "/items/-", Value: "y"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"title": "b",
		"items": []any{"x", "y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("patched document mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyToJSONBadPath(t *testing.T) {
	_, err := ApplyToJSON([]byte(`{}`), []patch.Patch{
		{Op: patch.OpReplace, Path: "/missing", Value: 1},
	})
	if !errors.Is(err, patch.ErrApply) {
		t.Errorf("got %v, want ErrApply", err)
	}
}

func TestFromJSONPatch(t *testing.T) {
	got, err := FromJSONPatch([]byte(`[{"op":"add","path":"/a","value":1}]`))
	if err != nil {
		t.Fatal(err)
	}
	want := []patch.Patch{{Op: patch.OpAdd, Path: "/a", Value: float64(1)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := FromJSONPatch([]byte(`[{"op":"move","from":"/a","path":"/b"}]`)); !errors.Is(err, patch.ErrApply) {
		t.Errorf("move: got %v, want ErrApply", err)
	}
}
