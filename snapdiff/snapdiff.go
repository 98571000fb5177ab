// Package snapdiff renders human-readable diffs between two
// snapshots. Snapshots are serialized to canonical indented JSON and
// compared line-wise; output uses unified-style +/- prefixes,
// optionally colorized for terminals.
package snapdiff

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/faassen/mobx-state-tree/encode"
)

type Config struct {
	Color bool
}

type Opt func(*Config)

// Color enables ANSI colors for inserted and deleted lines.
func Color(v bool) Opt {
	return func(c *Config) { c.Color = v }
}

// WriterWantsColor reports whether w is a terminal, the usual default
// for the Color option.
func WriterWantsColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Diff returns the rendered diff between the canonical JSON of a and
// b, and "" when they are equal.
func Diff(a, b any, opts ...Opt) (string, error) {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}
	da, err := encode.JSON(a)
	if err != nil {
		return "", err
	}
	db, err := encode.JSON(b)
	if err != nil {
		return "", err
	}
	if string(da) == string(db) {
		return "", nil
	}
	diffCfg := diffpatch.New()
	ca, cb, lines := diffCfg.DiffLinesToChars(string(da), string(db))
	diffs := diffCfg.DiffCharsToLines(diffCfg.DiffMain(ca, cb, false), lines)
	return render(diffs, cfg), nil
}

func render(diffs []diffpatch.Diff, cfg *Config) string {
	ins := func(s string) string { return s }
	del := ins
	if cfg.Color {
		ins = func(s string) string { return color.GreenString("%s", s) }
		del = func(s string) string { return color.RedString("%s", s) }
	}
	buf := &strings.Builder{}
	for i := range diffs {
		diff := &diffs[i]
		for _, line := range splitLines(diff.Text) {
			switch diff.Type {
			case diffpatch.DiffInsert:
				buf.WriteString(ins("+ " + line))
			case diffpatch.DiffDelete:
				buf.WriteString(del("- " + line))
			case diffpatch.DiffEqual:
				buf.WriteString("  " + line)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
