// Package tracker turns the earbud stream into orientation samples.
package tracker

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/headtrack/pkg/framework"
	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/spp"
)

// Tracker decodes samples from the stream and sends commands to the device.
type Tracker struct {
	config Config
	stream *spp.Stream
	engine *imu.Engine
	now    func() time.Time

	samplesCh chan Sample
	sinks     []Sink
	sinksLock sync.RWMutex

	lock        sync.RWMutex
	latest      Sample
	hasLatest   bool
	sensorState SensorState
	wearState   WearState
	stats       Stats
}

// New creates a Tracker over a byte stream.
func New(rw io.ReadWriter, config Config) *Tracker {
	if config.Buffer <= 0 {
		config.Buffer = DefaultBuffer
	}
	if config.AttachPause == 0 {
		config.AttachPause = DefaultAttachPause
	}
	if config.KeepAlive == 0 {
		config.KeepAlive = DefaultKeepAlive
	}
	t := &Tracker{
		config:    config,
		engine:    imu.NewEngine(config.Reference),
		now:       time.Now,
		samplesCh: make(chan Sample, config.Buffer),
	}
	t.engine.Normalize = config.Normalize
	t.stream = spp.NewStream(rw).
		WithCoverage(config.Coverage).
		WithMaxPayload(config.MaxPayload)
	t.stream.Handler = spp.HandleFrameFunc(t.handleFrame)
	return t
}

// Name implements framework.Named.
func (t *Tracker) Name() string {
	return "tracker"
}

// Run implements framework.Runnable. It returns when the stream ends or
// ctx is cancelled, and closes the sample channel.
func (t *Tracker) Run(ctx context.Context) error {
	defer close(t.samplesCh)
	runner := fx.NewRunnerWith(ctx)
	runner.Go(fx.NamedRun("stream", t.stream))
	if t.config.KeepAlive > 0 {
		runner.Go(fx.NamedRun("keep-alive", fx.RunFunc(t.keepAlive)))
	}
	err := runner.Wait()
	var agg *fx.AggregatedError
	if errors.As(err, &agg) && len(agg.Errors) == 1 {
		return agg.Errors[0]
	}
	return err
}

func (t *Tracker) keepAlive(ctx context.Context) error {
	ticker := time.NewTicker(t.config.KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.stream.SendControl(spp.ControlKeepAlive); err != nil {
				glog.Warningf("keep-alive error: %v", err)
			}
		}
	}
}

// Samples returns the sample channel, closed when Run returns.
// When the consumer falls behind, the oldest pending sample is discarded
// and counted in Stats.Overruns, which keeps growing while nobody reads.
func (t *Tracker) Samples() <-chan Sample {
	return t.samplesCh
}

// DrainSamples discards the pending samples without blocking, so a new
// consumer starts from fresh data. It returns the number discarded.
func (t *Tracker) DrainSamples() (n int) {
	for {
		select {
		case _, ok := <-t.samplesCh:
			if !ok {
				return
			}
			n++
		default:
			return
		}
	}
}

// AddSink registers a Sink, sink errors are logged and counted.
func (t *Tracker) AddSink(sinks ...Sink) *Tracker {
	t.sinksLock.Lock()
	t.sinks = append(t.sinks, sinks...)
	t.sinksLock.Unlock()
	return t
}

// Latest returns the most recent sample.
func (t *Tracker) Latest() (Sample, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.latest, t.hasLatest
}

// Calibrate makes the latest orientation the neutral reference.
func (t *Tracker) Calibrate() error {
	s, ok := t.Latest()
	if !ok {
		return ErrNoSample
	}
	t.engine.SetReference(s.Raw)
	glog.Infof("calibrated: yaw=%.2f pitch=%.2f",
		imu.Angle(s.Raw.Yaw).Degrees(), imu.Angle(s.Raw.Pitch).Degrees())
	return nil
}

// SetReference sets the neutral reference explicitly.
func (t *Tracker) SetReference(e imu.EulerAngles) {
	t.engine.SetReference(e)
}

// Reference returns the current reference.
func (t *Tracker) Reference() imu.EulerAngles {
	return t.engine.Reference().Get()
}

// Attach enables the sensor stream.
func (t *Tracker) Attach(ctx context.Context) error {
	if err := t.stream.Send(spp.NewFrame(spp.MsgSetSpatialSensor, 1)); err != nil {
		return err
	}
	if err := t.pause(ctx); err != nil {
		return err
	}
	return t.stream.SendControl(spp.ControlAttach)
}

// Detach disables the sensor stream.
func (t *Tracker) Detach(ctx context.Context) error {
	if err := t.stream.SendControl(spp.ControlDetach); err != nil {
		return err
	}
	if err := t.pause(ctx); err != nil {
		return err
	}
	return t.stream.Send(spp.NewFrame(spp.MsgSetSpatialSensor, 0))
}

// SendKeepAlive sends a keep-alive immediately.
func (t *Tracker) SendKeepAlive() error {
	return t.stream.SendControl(spp.ControlKeepAlive)
}

func (t *Tracker) pause(ctx context.Context) error {
	timer := time.NewTimer(t.config.AttachPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SensorState returns the last state reported by the device.
func (t *Tracker) SensorState() SensorState {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.sensorState
}

// WearState returns whether the earbud is worn.
func (t *Tracker) WearState() WearState {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.wearState
}

// Stats returns the counters.
func (t *Tracker) Stats() Stats {
	t.lock.RLock()
	stats := t.stats
	t.lock.RUnlock()
	stats.Stats = t.stream.Stats()
	return stats
}

func (t *Tracker) handleFrame(ctx context.Context, f *spp.Frame) {
	switch f.ID {
	case spp.MsgIMU:
		t.handleOrientation(imu.DecodeQuaternion(f))
	case spp.MsgSpatialData:
		t.handleSpatialData(f)
	case spp.MsgSensorControl:
		t.handleControl(f)
	default:
		glog.V(3).Infof("skip message id=0x%02x", f.ID)
		t.count(&t.stats.Unsupported)
	}
}

func (t *Tracker) handleSpatialData(f *spp.Frame) {
	ev, err := imu.SpatialEventOf(f)
	if err != nil {
		t.handleOrientation(imu.Quaternion{}, err)
		return
	}
	switch ev {
	case imu.EventGRV:
		t.handleOrientation(imu.DecodeGRV(f))
	case imu.EventWearOn, imu.EventWearOff:
		state := WearOn
		if ev == imu.EventWearOff {
			state = WearOff
		}
		glog.Infof("wear state: %s", state)
		t.lock.Lock()
		t.wearState = state
		t.lock.Unlock()
	default:
		glog.V(3).Infof("skip spatial event 0x%02x", byte(ev))
		t.count(&t.stats.Unsupported)
	}
}

func (t *Tracker) handleControl(f *spp.Frame) {
	if len(f.Payload) == 0 {
		t.count(&t.stats.BadPayloads)
		return
	}
	var state SensorState
	switch spp.SensorControl(f.Payload[0]) {
	case spp.ControlAttachSuccess:
		state = SensorAttached
	case spp.ControlDetachSuccess:
		state = SensorDetached
	default:
		glog.V(3).Infof("sensor control 0x%02x", f.Payload[0])
		return
	}
	glog.Infof("sensor %s", state)
	t.lock.Lock()
	t.sensorState = state
	t.lock.Unlock()
}

func (t *Tracker) handleOrientation(q imu.Quaternion, err error) {
	if err != nil {
		glog.V(2).Infof("skip orientation: %v", err)
		if errors.Is(err, imu.ErrPayloadSize) {
			t.count(&t.stats.BadPayloads)
		} else {
			t.count(&t.stats.Unsupported)
		}
		return
	}
	raw, rel := t.engine.Process(q)
	t.lock.Lock()
	t.stats.Samples++
	s := Sample{
		Seq:        t.stats.Samples,
		Time:       t.now(),
		Quaternion: q,
		Raw:        raw,
		Relative:   rel,
	}
	t.latest, t.hasLatest = s, true
	t.lock.Unlock()

	t.writeSinks(s)
	t.push(s)
}

func (t *Tracker) writeSinks(s Sample) {
	t.sinksLock.RLock()
	defer t.sinksLock.RUnlock()
	for _, sink := range t.sinks {
		if err := sink.WriteSample(s); err != nil {
			glog.Warningf("sink error: %v", err)
			t.count(&t.stats.SinkErrors)
		}
	}
}

func (t *Tracker) push(s Sample) {
	for {
		select {
		case t.samplesCh <- s:
			return
		default:
		}
		select {
		case <-t.samplesCh:
			t.count(&t.stats.Overruns)
		default:
		}
	}
}

func (t *Tracker) count(counter *uint64) {
	t.lock.Lock()
	*counter++
	t.lock.Unlock()
}
