// Package patchio bridges recorded tree patches and RFC 6902 JSON
// Patch documents, so a patch stream recorded in one process can be
// applied to a serialized snapshot in another without instantiating a
// tree.
package patchio

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/faassen/mobx-state-tree/patch"
)

// rfcOp is the RFC 6902 operation shape. OldValue is dropped: it is
// an extension the standard does not know.
type rfcOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ToJSONPatch renders patches as an RFC 6902 JSON Patch document.
func ToJSONPatch(patches []patch.Patch) ([]byte, error) {
	ops := make([]rfcOp, len(patches))
	for i := range patches {
		p := &patches[i]
		if !p.Op.Valid() {
			return nil, fmt.Errorf("%w: entry %d has op %q", patch.ErrApply, i, p.Op)
		}
		ops[i].Op = string(p.Op)
		ops[i].Path = p.Path
		if p.Op != patch.OpRemove {
			d, err := json.Marshal(p.Value)
			if err != nil {
				return nil, err
			}
			ops[i].Value = d
		}
	}
	return json.Marshal(ops)
}

// FromJSONPatch parses an RFC 6902 document into tree patches.
// Unsupported ops (move, copy, test) are rejected.
func FromJSONPatch(doc []byte) ([]patch.Patch, error) {
	var ops []struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(doc, &ops); err != nil {
		return nil, fmt.Errorf("%w: %v", patch.ErrApply, err)
	}
	res := make([]patch.Patch, len(ops))
	for i, op := range ops {
		p := patch.Patch{Op: patch.Op(op.Op), Path: op.Path, Value: op.Value}
		if !p.Op.Valid() {
			return nil, fmt.Errorf("%w: entry %d has unsupported op %q", patch.ErrApply, i, op.Op)
		}
		res[i] = p
	}
	return res, nil
}

// ApplyToJSON applies patches to a JSON document and returns the
// patched document.
func ApplyToJSON(doc []byte, patches []patch.Patch) ([]byte, error) {
	d, err := ToJSONPatch(patches)
	if err != nil {
		return nil, err
	}
	ops, err := jsonpatch.DecodePatch(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", patch.ErrApply, err)
	}
	res, err := ops.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", patch.ErrApply, err)
	}
	return res, nil
}
