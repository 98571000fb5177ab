package query

import (
	"errors"
	"testing"

	"github.com/faassen/mobx-state-tree/patch"
)

func TestPatchFilter(t *testing.T) {
	tests := []struct {
		name string
		src  string
		p    patch.Patch
		want bool
	}{
		{
			name: "op match",
			src:  `op == "replace"`,
			p:    patch.Patch{Op: patch.OpReplace, Path: "/title", Value: "b"},
			want: true,
		},
		{
			name: "op mismatch",
			src:  `op == "remove"`,
			p:    patch.Patch{Op: patch.OpReplace, Path: "/title", Value: "b"},
			want: false,
		},
		{
			name: "path prefix",
			src:  `path startsWith "/todos/"`,
			p:    patch.Patch{Op: patch.OpAdd, Path: "/todos/0", Value: nil},
			want: true,
		},
		{
			name: "segments helper",
			src:  `segments(path)[0] == "todos"`,
			p:    patch.Patch{Op: patch.OpAdd, Path: "/todos/0/title", Value: "x"},
			want: true,
		},
		{
			name: "value inspection",
			src:  `value == true`,
			p:    patch.Patch{Op: patch.OpReplace, Path: "/done", Value: true, OldValue: false},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompilePatchFilter(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			got, err := f.Match(tt.p)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatchFilterCompileError(t *testing.T) {
	_, err := CompilePatchFilter(`op ==`)
	if !errors.Is(err, ErrQuery) {
		t.Errorf("got %v, want ErrQuery", err)
	}
}

func TestCallFilter(t *testing.T) {
	f, err := CompileCallFilter(`name == "toggle" && len(args) == 0`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := f.Match(patch.Call{Name: "toggle", Path: "/todos/0", Args: []any{}})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected match")
	}
	ok, err = f.Match(patch.Call{Name: "rename", Path: "", Args: []any{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no match")
	}
}

func TestSnapshotQuery(t *testing.T) {
	q, err := CompileSnapshot(`len(s.todos)`)
	if err != nil {
		t.Fatal(err)
	}
	res, err := q.Eval(map[string]any{
		"todos": []any{map[string]any{"title": "a"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res != 1 {
		t.Errorf("got %v, want 1", res)
	}
}
