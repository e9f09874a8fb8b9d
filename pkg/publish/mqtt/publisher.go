package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/pointer"
	"github.com/robotalks/headtrack/pkg/publish"
	"github.com/robotalks/headtrack/pkg/tracker"
)

// Topic suffixes under <prefix><device>.
const (
	TopicSample    = "sample"
	TopicMeta      = "meta"
	TopicCalibrate = "calibrate"
)

// Publisher is a tracker.Sink publishing samples to MQTT.
type Publisher struct {
	Queue  *Queue
	Device string
	Format string
	// Mapper adds the pointer position to samples if set.
	Mapper     *pointer.Mapper
	Calibrator publish.Calibrator
	Meta       msgs.DeviceMeta

	metaLock sync.Mutex
}

// NewPublisher creates a Publisher from a broker URL.
func NewPublisher(brokerURL, device, format string) (*Publisher, error) {
	if _, err := msgs.CodecFor(format); err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %v", err)
	}
	opts.SetBinaryWill(topicPrefix+Topic(device, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("headtrack:" + device)
	}
	p := &Publisher{
		Queue:  NewQueue(opts, topicPrefix),
		Device: device,
		Format: format,
		Meta:   msgs.DeviceMeta{Device: device, Format: format},
	}
	p.Queue.OnConnect = func(*Queue) { p.onConnected() }
	return p, nil
}

// Topic returns the topic of a device.
func Topic(device, suffix string) string {
	return device + "/" + suffix
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	p.Queue.Sub(Topic(p.Device, TopicCalibrate), p.handleCalibrate)
	if err := p.Queue.Connect(ctx); err != nil {
		return fmt.Errorf("MQTT connect error: %v", err)
	}
	<-ctx.Done()
	p.setOnline(false).WaitTimeout(time.Second)
	p.Queue.Close()
	return nil
}

// WriteSample implements tracker.Sink.
func (p *Publisher) WriteSample(s tracker.Sample) error {
	data, err := msgs.Encode(p.Format, publish.SampleMessage(s, p.Device, p.Mapper))
	if err != nil {
		return err
	}
	p.Queue.Pub(Topic(p.Device, TopicSample), data)
	return nil
}

func (p *Publisher) onConnected() {
	p.setOnline(true)
}

func (p *Publisher) setOnline(online bool) paho.Token {
	p.metaLock.Lock()
	defer p.metaLock.Unlock()
	p.Meta.Online = online
	if online && p.Meta.StartedAt == 0 {
		p.Meta.StartedAt = time.Now().UnixNano()
	}
	if !online {
		return p.Queue.PubWith(Topic(p.Device, TopicMeta), nil, 1, true)
	}
	data, err := msgs.Encode(msgs.FormatJSON, &p.Meta)
	if err != nil {
		panic(err)
	}
	return p.Queue.PubWith(Topic(p.Device, TopicMeta), data, 1, true)
}

func (p *Publisher) handleCalibrate(topic string, payload []byte) {
	if c := p.Calibrator; c != nil {
		if err := publish.HandleCalibrate(c, p.Format, payload); err != nil {
			glog.Warningf("calibrate request on %s: %v", topic, err)
		}
	}
}
