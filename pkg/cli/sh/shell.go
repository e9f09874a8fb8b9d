package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/env"
	fx "github.com/robotalks/headtrack/pkg/framework"
	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/session"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *env.Config
	Session *session.Session
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "

	connectTimeout = 30 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&ServeCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Output prints v as JSON in JSON mode, otherwise prints text.
func Output(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// FormatAngles prints angles in degrees.
func FormatAngles(e imu.EulerAngles) string {
	yaw, pitch, roll := e.Degrees()
	return fmt.Sprintf("yaw=%+7.2f pitch=%+7.2f roll=%+7.2f", yaw, pitch, roll)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens a session on the transport URL.
func (s *Shell) Connect(transportURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	sess, err := session.Open(ctx, s.Config, transportURL)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Session = sess
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Config.Device))
	return nil
}

// Disconnect closes the current session.
func (s *Shell) Disconnect() {
	if sess := s.Session; sess != nil {
		s.Session = nil
		if err := sess.Close(); err != nil {
			glog.V(1).Infof("disconnect: %v", err)
		}
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Transport != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Transport)
		}
		if err := s.Connect(s.Config.Transport); err != nil {
			glog.Exitf("connect %q failed: %v", s.Config.Transport, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	glog.Exit("command expected")
}

var (
	// ConnectCmd opens a transport.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TRANSPORT_URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.Transport
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if url == "" {
				c.Err(fmt.Errorf("TRANSPORT_URL required"))
				return
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
				return
			}
			Output(c, map[string]string{"transport": url}, "Connected "+url)
		},
	}

	// DisconnectCmd closes the current session.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StatusCmd shows the session state.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			sess := ShellFrom(c).Session
			t := sess.Tracker
			ref := t.Reference()
			yaw, pitch, _ := ref.Degrees()
			status := map[string]interface{}{
				"transport": sess.URL,
				"sensor":    t.SensorState().String(),
				"wear":      t.WearState().String(),
				"reference": &msgs.Euler{Yaw: yaw, Pitch: pitch},
			}
			text := fmt.Sprintf("transport: %s\nsensor:    %s\nwear:      %s\nreference: %s",
				sess.URL, t.SensorState(), t.WearState(), FormatAngles(ref))
			if latest, ok := t.Latest(); ok {
				status["latest"] = latest.Message(ShellFrom(c).Config.Device)
				text += fmt.Sprintf("\nraw:       %s\nrelative:  %s",
					FormatAngles(latest.Raw), FormatAngles(latest.Relative))
			}
			select {
			case <-sess.Done():
				status["error"] = fmt.Sprint(sess.Wait())
				text += fmt.Sprintf("\nstopped:   %v", sess.Wait())
			default:
			}
			Output(c, status, text)
		}),
	}

	// ServeCmd keeps the session running until it stops or the process is
	// interrupted.
	ServeCmd = ishell.Cmd{
		Name: "serve",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			sess := ShellFrom(c).Session
			err := fx.NewRunner().HandleSignals().Go(
				fx.NamedRun("session", fx.RunFunc(func(ctx context.Context) error {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-sess.Done():
						return sess.Wait()
					}
				})),
			).Wait()
			if err != nil {
				c.Err(err)
			}
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
