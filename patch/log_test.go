package patch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogRoundTrip(t *testing.T) {
	in := []Patch{
		{Op: OpAdd, Path: "/todos/0", Value: map[string]any{"title": "x"}},
		{Op: OpReplace, Path: "/todos/0/title", Value: "y", OldValue: "x"},
		{Op: OpRemove, Path: "/todos/0", OldValue: map[string]any{"title": "y"}},
	}
	buf := &bytes.Buffer{}
	if err := WriteLog(buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadLog(buf)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(in, out); d != "" {
		t.Errorf("round trip: %s", d)
	}
}

func TestReadLogBadOp(t *testing.T) {
	_, err := ReadLog(strings.NewReader(`{"op":"move","path":"/a"}`))
	if err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestReadLogSkipsBlank(t *testing.T) {
	out, err := ReadLog(strings.NewReader("\n{\"op\":\"remove\",\"path\":\"/a\"}\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d patches", len(out))
	}
}

func TestCallLogRoundTrip(t *testing.T) {
	in := []Call{
		{Name: "setTitle", Path: "/todos/1", Args: []any{"done"}},
		{Name: "clear", Path: "", Args: []any{}},
	}
	buf := &bytes.Buffer{}
	if err := WriteCallLog(buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadCallLog(buf)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(in, out); d != "" {
		t.Errorf("round trip: %s", d)
	}
}

func TestWithPrefix(t *testing.T) {
	p := Patch{Op: OpReplace, Path: "/title"}
	got := p.WithPrefix("todos")
	if got.Path != "/todos/title" {
		t.Errorf("got %q", got.Path)
	}
	if p.Path != "/title" {
		t.Errorf("receiver mutated: %q", p.Path)
	}
}
