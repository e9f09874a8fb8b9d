// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/headtrack/pkg/cli/cmds/monitor"
	_ "github.com/robotalks/headtrack/pkg/cli/cmds/sensor"
)
