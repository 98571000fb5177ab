// Package patch defines the structural patch and serialized action
// call artifacts emitted by the tree store. These shapes are the
// interop surface: a recorded sequence of patches replayed on a
// structurally identical tree reproduces the same end state, in or
// across processes.
package patch

import (
	"encoding/json"
	"fmt"
)

// Op is a structural patch operation.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
)

func (o Op) Valid() bool {
	switch o {
	case OpAdd, OpRemove, OpReplace:
		return true
	default:
		return false
	}
}

// Patch describes one atomic structural change. Path is relative to
// the node whose listener emitted it, with segments escaped per the
// treepath codec. OldValue is an extension over RFC 6902 carried for
// reverse application; interop consumers may ignore it.
type Patch struct {
	Op       Op     `json:"op"`
	Path     string `json:"path"`
	Value    any    `json:"value,omitempty"`
	OldValue any    `json:"oldValue,omitempty"`
}

func (p Patch) String() string {
	d, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("patch<%s %s>", p.Op, p.Path)
	}
	return string(d)
}

// WithPrefix returns a copy of p whose path is re-rooted one level up
// under the escaped segment seg.
func (p Patch) WithPrefix(seg string) Patch {
	p.Path = "/" + seg + p.Path
	return p
}

// Call is the serialized form of an action invocation: the action
// name, the path of the target node relative to the listening node,
// and the plain (snapshot) forms of the arguments.
type Call struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Args []any  `json:"args"`
}

func (c Call) String() string {
	d, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("call<%s %s>", c.Name, c.Path)
	}
	return string(d)
}
