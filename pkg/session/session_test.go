package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/headtrack/pkg/env"
	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/spp"
)

func testConfig() *env.Config {
	conf := env.Defaults()
	conf.Device = "buds"
	conf.MQTTBrokerURL = ""
	conf.Listen = ""
	conf.CSVFile = ""
	conf.AutoAttach = false
	conf.KeepAlive = -1
	return &conf
}

func writeCapture(t *testing.T, frames ...*spp.Frame) string {
	var data []byte
	for _, f := range frames {
		data = append(data, f.Bytes()...)
	}
	fn := filepath.Join(t.TempDir(), "capture.bin")
	require.NoError(t, os.WriteFile(fn, data, 0644))
	return fn
}

func TestSessionReplay(t *testing.T) {
	tilted := imu.Quaternion{W: 0.707, Y: 0.707}
	capture := writeCapture(t, tilted.Frame(), imu.Identity.Frame(), tilted.Frame())
	conf := testConfig()
	conf.CSVFile = filepath.Join(t.TempDir(), "samples.csv")

	s, err := Open(context.Background(), conf, "file://"+capture)
	require.NoError(t, err)
	err = s.Wait()
	require.True(t, errors.Is(err, spp.ErrTransportClosed))

	require.Equal(t, uint64(3), s.Tracker.Stats().Samples)
	require.Equal(t, uint64(3), s.CSV.Count())
	data, err := os.ReadFile(conf.CSVFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[1], "0.0000,"))
	require.True(t, strings.HasSuffix(lines[2], ",1.0000,0.0000,0.0000,0.0000"))
}

func TestSessionOpenErrors(t *testing.T) {
	conf := testConfig()
	_, err := Open(context.Background(), conf, "file:///nonexistent/capture.bin")
	require.Error(t, err)

	_, err = Open(context.Background(), conf, "ftp://host/capture.bin")
	require.Error(t, err)

	conf.Coverage = "header"
	_, err = Open(context.Background(), conf, "file://"+writeCapture(t))
	require.Error(t, err)

	conf = testConfig()
	conf.MQTTBrokerURL = "mqtt://localhost:1883/"
	conf.Format = "xml"
	_, err = Open(context.Background(), conf, "file://"+writeCapture(t))
	require.Error(t, err)
}

func TestSessionSampleMessage(t *testing.T) {
	capture := writeCapture(t, imu.Identity.Frame())
	s, err := Open(context.Background(), testConfig(), "file://"+capture)
	require.NoError(t, err)
	s.Wait()
	latest, ok := s.Tracker.Latest()
	require.True(t, ok)
	data, err := msgs.Encode(msgs.FormatJSON, latest.Message("buds"))
	require.NoError(t, err)
	var m msgs.Sample
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "buds", m.Device)
	require.Equal(t, uint64(1), m.Seq)
}
