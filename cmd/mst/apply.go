package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/faassen/mobx-state-tree/encode"
	"github.com/faassen/mobx-state-tree/patch"
	"github.com/faassen/mobx-state-tree/patchio"
)

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return usageErr("apply requires 2 arguments, a patch log and a snapshot file to apply it to")
	}
	patches, err := getPatchLog(cfg, cc, args[0])
	if err != nil {
		return err
	}
	snap, err := getSnapFile(cfg.MainConfig, cc, args[1])
	if err != nil {
		return err
	}
	doc, err := encode.JSON(snap)
	if err != nil {
		return err
	}
	res, err := patchio.ApplyToJSON(doc, patches)
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	out, err := encode.FromJSON(res)
	if err != nil {
		return err
	}
	d, err := cfg.encodeSnap(out)
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	_, err = cc.Out.Write(d)
	return err
}

func getPatchLog(cfg *ApplyConfig, cc *cli.Context, arg string) ([]patch.Patch, error) {
	if cfg.String && cfg.File {
		return nil, usageErr("only one of -s, -f may be specified")
	}
	if cfg.String {
		return patch.ReadLog(strings.NewReader(arg))
	}
	d, err := readFileArg(cc, arg)
	if err != nil {
		return nil, err
	}
	return patch.ReadLog(bytes.NewReader(d))
}
