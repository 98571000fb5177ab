package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/faassen/mobx-state-tree/encode"
)

type MainConfig struct {
	J     bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y     bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`
	Color bool `cli:"name=color desc='colorize output'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// encodeSnap renders a snapshot in the configured output format. The
// default is JSON; -y switches to YAML.
func (cfg *MainConfig) encodeSnap(snapshot any) ([]byte, error) {
	if cfg.Y {
		return encode.YAML(snapshot)
	}
	return encode.JSON(snapshot)
}

// decodeSnap parses snapshot data, picking the format from flags or
// the file extension.
func (cfg *MainConfig) decodeSnap(name string, d []byte) (any, error) {
	switch {
	case cfg.J:
		return encode.FromJSON(d)
	case cfg.Y:
		return encode.FromYAML(d)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return encode.FromYAML(d)
	default:
		return encode.FromJSON(d)
	}
}

type ViewConfig struct {
	*MainConfig

	View *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Quiet bool `cli:"name=q desc='suppress output, only set exit status'"`

	Diff *cli.Command
}

type ApplyConfig struct {
	*MainConfig

	String bool `cli:"name=s desc='patch log arg as string'"`
	File   bool `cli:"name=f desc='patch log arg as file'"`

	Apply *cli.Command
}

type FilterConfig struct {
	*MainConfig

	Calls bool `cli:"name=a aliases=actions desc='filter action call logs instead of patch logs'"`

	Filter *cli.Command
}

type QueryConfig struct {
	*MainConfig

	Query *cli.Command
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", cli.ErrUsage, fmt.Sprintf(format, args...))
}
