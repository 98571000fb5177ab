package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"
)

func readFileArg(cc *cli.Context, path string) ([]byte, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return d, nil
}

func getSnapFile(cfg *MainConfig, cc *cli.Context, path string) (any, error) {
	d, err := readFileArg(cc, path)
	if err != nil {
		return nil, err
	}
	snap, err := cfg.decodeSnap(path, d)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return snap, nil
}
