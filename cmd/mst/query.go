package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/faassen/mobx-state-tree/query"
)

func queryCmd(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		cfg.Query.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return usageErr("query requires 1 argument, an expr query")
	}
	q, err := query.CompileSnapshot(args[0])
	if err != nil {
		return usageErr("%v", err)
	}
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, file := range files {
		snap, err := getSnapFile(cfg.MainConfig, cc, file)
		if err != nil {
			return err
		}
		res, err := q.Eval(snap)
		if err != nil {
			return fmt.Errorf("error querying %s: %w", file, err)
		}
		d, err := cfg.encodeSnap(res)
		if err != nil {
			return err
		}
		if _, err := cc.Out.Write(d); err != nil {
			return err
		}
	}
	return nil
}
