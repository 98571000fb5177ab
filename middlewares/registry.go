// Package middlewares provides ready-made action middlewares and a
// name registry so configuration files and the CLI can refer to them
// by name.
package middlewares

import (
	"fmt"
	"sort"
	"sync"

	"github.com/faassen/mobx-state-tree/node"
)

// Factory builds a middleware from string arguments.
type Factory func(args []string) (node.Middleware, error)

var (
	regMu    sync.Mutex
	registry = map[string]Factory{}
)

// Register makes a factory available under name. Registering the same
// name twice panics.
func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("middlewares: %q registered twice", name))
	}
	registry[name] = f
}

// New instantiates the named middleware.
func New(name string, args []string) (node.Middleware, error) {
	regMu.Lock()
	f, ok := registry[name]
	regMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("middlewares: unknown middleware %q", name)
	}
	return f(args)
}

// Names lists the registered middleware names, sorted.
func Names() []string {
	regMu.Lock()
	defer regMu.Unlock()
	res := make([]string, 0, len(registry))
	for name := range registry {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
