package sensor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/headtrack/pkg/cli/sh"
	"github.com/robotalks/headtrack/pkg/imu"
)

const commandTimeout = 5 * time.Second

func parseDegrees(c *ishell.Context, index int, name string) (float64, bool) {
	val, err := strconv.ParseFloat(c.Args[index], 64)
	if err != nil {
		c.Err(fmt.Errorf("Invalid %s: %v", name, err))
		return 0, false
	}
	return imu.AngleFromDegrees(val).Radians(), true
}

var (
	// AttachCmd enables the sensor stream.
	AttachCmd = ishell.Cmd{
		Name:    "attach",
		Aliases: []string{"a"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := sh.ShellFrom(c).Session.Tracker.Attach(ctx); err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, map[string]bool{"ok": true}, "OK")
		}),
	}

	// DetachCmd disables the sensor stream.
	DetachCmd = ishell.Cmd{
		Name: "detach",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := sh.ShellFrom(c).Session.Tracker.Detach(ctx); err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, map[string]bool{"ok": true}, "OK")
		}),
	}

	// CalibrateCmd sets the neutral reference, from the latest sample or
	// explicit angles.
	CalibrateCmd = ishell.Cmd{
		Name:    "calibrate",
		Aliases: []string{"cal"},
		Help:    "[YAW(degrees) PITCH(degrees)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			t := sh.ShellFrom(c).Session.Tracker
			switch len(c.Args) {
			case 0:
				if err := t.Calibrate(); err != nil {
					c.Err(err)
					return
				}
			case 2:
				yaw, ok := parseDegrees(c, 0, "YAW")
				if !ok {
					return
				}
				pitch, ok := parseDegrees(c, 1, "PITCH")
				if !ok {
					return
				}
				t.SetReference(imu.EulerAngles{Yaw: yaw, Pitch: pitch})
			default:
				c.Err(fmt.Errorf("YAW and PITCH required together"))
				return
			}
			ref := t.Reference()
			sh.Output(c, ref, "reference: "+sh.FormatAngles(ref))
		}),
	}

	// KeepAliveCmd sends a keep-alive immediately.
	KeepAliveCmd = ishell.Cmd{
		Name:    "keepalive",
		Aliases: []string{"ka"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if err := sh.ShellFrom(c).Session.Tracker.SendKeepAlive(); err != nil {
				c.Err(err)
				return
			}
			sh.Output(c, map[string]bool{"ok": true}, "OK")
		}),
	}
)

func init() {
	sh.AddCmds(
		&AttachCmd,
		&DetachCmd,
		&CalibrateCmd,
		&KeepAliveCmd,
	)
}
