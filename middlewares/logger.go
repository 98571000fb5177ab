package middlewares

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/faassen/mobx-state-tree/node"
)

func init() {
	Register("logger", func(args []string) (node.Middleware, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("middlewares: logger takes no args, got %v", args)
		}
		return Logger(os.Stderr, color.NoColor == false), nil
	})
}

// Logger writes one line per action call to w, before and after the
// call runs. The result line carries the returned error, if any.
func Logger(w io.Writer, colorize bool) node.Middleware {
	arrow := func(s string) string { return s }
	fail := func(s string) string { return s }
	if colorize {
		arrow = func(s string) string { return color.CyanString("%s", s) }
		fail = func(s string) string { return color.RedString("%s", s) }
	}
	return func(call *node.Call, next func() (any, error)) (any, error) {
		args, _ := json.Marshal(call.Args)
		fmt.Fprintf(w, "%s %s %q %s\n", arrow("->"), call.Name, call.Target.Path(), args)
		res, err := next()
		if err != nil {
			fmt.Fprintf(w, "%s %s %s\n", fail("<-"), call.Name, fail(err.Error()))
		} else {
			fmt.Fprintf(w, "%s %s ok\n", arrow("<-"), call.Name)
		}
		return res, err
	}
}
