package monitor

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/cli/sh"
	"github.com/robotalks/headtrack/pkg/tracker"
)

const defaultCount = 10

// samples calls fn on the next COUNT samples, 0 means until the session stops.
func samples(c *ishell.Context, fn func(tracker.Sample)) {
	count := defaultCount
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil || n < 0 {
			c.Err(fmt.Errorf("Invalid COUNT: %q", c.Args[0]))
			return
		}
		count = n
	}
	sess := sh.ShellFrom(c).Session
	if n := sess.Tracker.DrainSamples(); n > 0 {
		glog.V(2).Infof("discarded %d stale samples", n)
	}
	for n := 0; count == 0 || n < count; n++ {
		select {
		case s, ok := <-sess.Tracker.Samples():
			if !ok {
				c.Err(fmt.Errorf("session stopped: %v", sess.Wait()))
				return
			}
			fn(s)
		case <-sess.Done():
			c.Err(fmt.Errorf("session stopped: %v", sess.Wait()))
			return
		}
	}
}

var (
	// WatchCmd prints samples.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			device := sh.ShellFrom(c).Config.Device
			samples(c, func(s tracker.Sample) {
				sh.Output(c, s.Message(device), fmt.Sprintf("#%-6d raw %s | rel %s",
					s.Seq, sh.FormatAngles(s.Raw), sh.FormatAngles(s.Relative)))
			})
		}),
	}

	// PointerCmd prints the screen position of samples.
	PointerCmd = ishell.Cmd{
		Name:    "pointer",
		Aliases: []string{"p"},
		Help:    "[COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			m := sh.ShellFrom(c).Config.Mapper()
			samples(c, func(s tracker.Sample) {
				pt := m.MapClamped(s.Relative)
				x, y := pt.Round()
				sh.Output(c, pt, fmt.Sprintf("#%-6d x=%5d y=%5d", s.Seq, x, y))
			})
		}),
	}

	// StatsCmd prints the counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			st := sh.ShellFrom(c).Session.Tracker.Stats()
			sh.Output(c, st, fmt.Sprintf(
				"frames:      %d\nsamples:     %d\nchecksum:    %d\nframing:     %d\ngarbage:     %d\nunsupported: %d\nbad payload: %d\noverruns:    %d\nsink errors: %d",
				st.Frames, st.Samples, st.ChecksumErrors, st.FramingErrors, st.GarbageBytes,
				st.Unsupported, st.BadPayloads, st.Overruns, st.SinkErrors))
		}),
	}
)

func init() {
	sh.AddCmds(
		&WatchCmd,
		&PointerCmd,
		&StatsCmd,
	)
}
