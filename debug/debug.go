// Package debug provides env-gated debug logging for the tree store.
// Set MST_DEBUG_<AREA>=1 to enable an area.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Patch     bool
	Snapshot  bool
	Action    bool
	Lifecycle bool
	Resolve   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Patch = boolEnv("MST_DEBUG_PATCH")
	d.Snapshot = boolEnv("MST_DEBUG_SNAPSHOT")
	d.Action = boolEnv("MST_DEBUG_ACTION")
	d.Lifecycle = boolEnv("MST_DEBUG_LIFECYCLE")
	d.Resolve = boolEnv("MST_DEBUG_RESOLVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Patch() bool {
	return d.Patch
}
func Snapshot() bool {
	return d.Snapshot
}
func Action() bool {
	return d.Action
}
func Lifecycle() bool {
	return d.Lifecycle
}
func Resolve() bool {
	return d.Resolve
}

func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.Marshal(a)
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
