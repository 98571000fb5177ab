package main

import (
	"bytes"

	"github.com/scott-cotton/cli"

	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/query"
)

func filter(cfg *FilterConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Filter.Parse(cc, args)
	if err != nil {
		cfg.Filter.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return usageErr("filter requires 1 argument, an expr predicate")
	}
	pred := args[0]
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	if cfg.Calls {
		return filterCalls(cfg, cc, pred, files)
	}
	return filterPatches(cfg, cc, pred, files)
}

func filterPatches(cfg *FilterConfig, cc *cli.Context, pred string, files []string) error {
	f, err := query.CompilePatchFilter(pred)
	if err != nil {
		return usageErr("%v", err)
	}
	var kept []patch.Patch
	for _, file := range files {
		d, err := readFileArg(cc, file)
		if err != nil {
			return err
		}
		patches, err := patch.ReadLog(bytes.NewReader(d))
		if err != nil {
			return err
		}
		for _, p := range patches {
			ok, err := f.Match(p)
			if err != nil {
				return err
			}
			if ok {
				kept = append(kept, p)
			}
		}
	}
	return patch.WriteLog(cc.Out, kept)
}

func filterCalls(cfg *FilterConfig, cc *cli.Context, pred string, files []string) error {
	f, err := query.CompileCallFilter(pred)
	if err != nil {
		return usageErr("%v", err)
	}
	var kept []patch.Call
	for _, file := range files {
		d, err := readFileArg(cc, file)
		if err != nil {
			return err
		}
		calls, err := patch.ReadCallLog(bytes.NewReader(d))
		if err != nil {
			return err
		}
		for _, c := range calls {
			ok, err := f.Match(c)
			if err != nil {
				return err
			}
			if ok {
				kept = append(kept, c)
			}
		}
	}
	return patch.WriteCallLog(cc.Out, kept)
}
