// Package session runs a tracker over a transport with the configured sinks.
package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/env"
	fx "github.com/robotalks/headtrack/pkg/framework"
	"github.com/robotalks/headtrack/pkg/publish/csvlog"
	"github.com/robotalks/headtrack/pkg/publish/mqtt"
	"github.com/robotalks/headtrack/pkg/publish/ws"
	"github.com/robotalks/headtrack/pkg/tracker"
	"github.com/robotalks/headtrack/pkg/transport"
)

// Session is a connected tracker.
type Session struct {
	URL       string
	Tracker   *tracker.Tracker
	Publisher *mqtt.Publisher
	Hub       *ws.Hub
	CSV       *csvlog.Writer
	// Addr is the websocket listening address.
	Addr net.Addr

	conn   io.ReadWriteCloser
	runner *fx.Runner
	doneCh chan struct{}
	err    error
}

// Open connects the transport and starts the tracker and sinks.
func Open(ctx context.Context, conf *env.Config, transportURL string) (*Session, error) {
	tc, err := conf.TrackerConfig()
	if err != nil {
		return nil, err
	}
	conn, err := transport.Open(ctx, transportURL)
	if err != nil {
		return nil, err
	}
	s := &Session{
		URL:     transportURL,
		Tracker: tracker.New(conn, tc),
		conn:    conn,
		runner:  fx.NewRunner(),
		doneCh:  make(chan struct{}),
	}
	if err := s.setupSinks(conf); err != nil {
		s.closeSinks()
		conn.Close()
		return nil, err
	}
	s.runner.Go(s.Tracker)
	go s.wait()

	if conf.AutoAttach {
		if err := s.Tracker.Attach(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("attach error: %v", err)
		}
	}
	glog.Infof("session started on %s", transportURL)
	return s, nil
}

func (s *Session) setupSinks(conf *env.Config) error {
	mapper := conf.Mapper()
	if conf.CSVFile != "" {
		w, err := csvlog.Create(conf.CSVFile)
		if err != nil {
			return err
		}
		s.CSV = w
		s.Tracker.AddSink(w)
	}
	if conf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTBrokerURL, conf.Device, conf.Format)
		if err != nil {
			return err
		}
		pub.Mapper = mapper
		pub.Calibrator = s.Tracker
		pub.Meta.Transport = s.URL
		pub.Meta.Coverage = conf.Coverage
		s.Publisher = pub
		s.Tracker.AddSink(pub)
	}
	if conf.Listen != "" {
		ln, err := net.Listen("tcp", conf.Listen)
		if err != nil {
			return err
		}
		hub := ws.NewHub(conf.Device, conf.Format)
		hub.Mapper = mapper
		hub.Calibrator = s.Tracker
		mux := http.NewServeMux()
		mux.Handle("/", hub.Handler())
		server := &http.Server{Handler: mux}
		s.Hub, s.Addr = hub, ln.Addr()
		s.Tracker.AddSink(hub)
		s.runner.Go(fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, server, func() error {
				return server.Serve(ln)
			})
		})))
		glog.Infof("serving websocket on %s", ln.Addr())
	}
	if s.Publisher != nil {
		s.runner.Go(s.Publisher)
	}
	return nil
}

func (s *Session) wait() {
	s.err = s.runner.Wait()
	s.conn.Close()
	s.closeSinks()
	if s.err != nil {
		glog.Warningf("session %s stopped: %v", s.URL, s.err)
	} else {
		glog.Infof("session %s stopped", s.URL)
	}
	close(s.doneCh)
}

func (s *Session) closeSinks() {
	if s.CSV != nil {
		if err := s.CSV.Close(); err != nil {
			glog.Warningf("close CSV error: %v", err)
		}
	}
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.doneCh
}

// Wait waits for the session to stop and returns the error.
func (s *Session) Wait() error {
	<-s.doneCh
	return s.err
}

// Close stops the session.
func (s *Session) Close() error {
	s.runner.Cancel()
	return s.Wait()
}
