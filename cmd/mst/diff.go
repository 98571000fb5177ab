package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/faassen/mobx-state-tree/snapdiff"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return usageErr("diff requires 2 args, got %v", args)
	}
	a, err := getSnapFile(cfg.MainConfig, cc, args[0])
	if err != nil {
		return err
	}
	b, err := getSnapFile(cfg.MainConfig, cc, args[1])
	if err != nil {
		return err
	}
	color := cfg.Color || snapdiff.WriterWantsColor(cc.Out)
	d, err := snapdiff.Diff(a, b, snapdiff.Color(color))
	if err != nil {
		return err
	}
	if d == "" {
		return nil
	}
	if !cfg.Quiet {
		if _, err := fmt.Fprint(cc.Out, d); err != nil {
			return err
		}
	}
	return cli.ExitCodeErr(1)
}
