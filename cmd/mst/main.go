package main

import (
	"context"

	"github.com/scott-cotton/cli"
	_ "github.com/faassen/mobx-state-tree/middlewares"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
