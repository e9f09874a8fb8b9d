package main

import (
	"github.com/robotalks/headtrack/pkg/cli/sh"
	"github.com/robotalks/headtrack/pkg/env"

	_ "github.com/robotalks/headtrack/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
