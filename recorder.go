package mst

import (
	"io"

	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/txn"
)

// PatchRecorder buffers every patch emitted in a target's subtree
// from construction until Stop, and can replay the recorded sequence
// onto another target in order, as one atomic application.
type PatchRecorder struct {
	patches []patch.Patch
	stop    func()
}

// RecordPatches starts recording patches under target.
func RecordPatches(target any) (*PatchRecorder, error) {
	r := &PatchRecorder{}
	stop, err := OnPatch(target, func(p patch.Patch) {
		r.patches = append(r.patches, p)
	})
	if err != nil {
		return nil, err
	}
	r.stop = stop
	return r, nil
}

// Patches returns the recorded sequence in emission order.
func (r *PatchRecorder) Patches() []patch.Patch {
	return r.patches
}

// Stop unsubscribes the recorder. Idempotent.
func (r *PatchRecorder) Stop() {
	r.stop()
}

// Replay applies the recorded sequence to target via ApplyPatches.
func (r *PatchRecorder) Replay(target any) error {
	return ApplyPatches(target, r.patches)
}

// WriteLog writes the recorded patches as a JSON-lines log.
func (r *PatchRecorder) WriteLog(w io.Writer) error {
	return patch.WriteLog(w, r.patches)
}

// ActionRecorder buffers every serialized action call executed in a
// target's subtree.
type ActionRecorder struct {
	calls []patch.Call
	stop  func()
}

// RecordActions starts recording action calls under target.
func RecordActions(target any) (*ActionRecorder, error) {
	r := &ActionRecorder{}
	stop, err := OnAction(target, func(c patch.Call) {
		r.calls = append(r.calls, c)
	})
	if err != nil {
		return nil, err
	}
	r.stop = stop
	return r, nil
}

// Calls returns the recorded sequence in invocation order.
func (r *ActionRecorder) Calls() []patch.Call {
	return r.calls
}

// Stop unsubscribes the recorder. Idempotent.
func (r *ActionRecorder) Stop() {
	r.stop()
}

// Replay invokes the recorded calls on target in order, inside one
// atomic unit. A failing call aborts the rest.
func (r *ActionRecorder) Replay(target any) error {
	if len(r.calls) == 0 {
		return nil
	}
	return txn.Atomic(func() error {
		for i := range r.calls {
			if _, err := ApplyAction(target, r.calls[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteLog writes the recorded calls as a JSON-lines log.
func (r *ActionRecorder) WriteLog(w io.Writer) error {
	return patch.WriteCallLog(w, r.calls)
}
