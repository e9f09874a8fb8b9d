// Package env builds the configuration from defaults, environment
// variables, an optional YAML file and command line flags.
package env

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/pointer"
	"github.com/robotalks/headtrack/pkg/spp"
	"github.com/robotalks/headtrack/pkg/tracker"
)

// Config provides common options of the commands.
type Config struct {
	// Device names the earbud in published topics.
	Device string `yaml:"device"`
	// Transport is the URL of the byte stream,
	// e.g. rfcomm://AA:BB:CC:DD:EE:FF?channel=27
	Transport  string `yaml:"transport"`
	AutoAttach bool   `yaml:"auto_attach"`

	Coverage   string        `yaml:"coverage"`
	MaxPayload int           `yaml:"max_payload"`
	Normalize  bool          `yaml:"normalize"`
	KeepAlive  time.Duration `yaml:"keep_alive"`

	// MQTTBrokerURL specifies the MQTT broker to publish samples.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`
	Format        string `yaml:"format"`
	// Listen is the address serving websocket clients.
	Listen  string `yaml:"listen"`
	CSVFile string `yaml:"csv"`

	Screen ScreenConfig `yaml:"screen"`

	ConfigFile string `yaml:"-"`
}

// ScreenConfig defines the pointer projection.
type ScreenConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Gain   float64 `yaml:"gain"`
}

var (
	defaultConfig = Config{
		AutoAttach: true,
		KeepAlive:  tracker.DefaultKeepAlive,
		Format:     msgs.DefaultFormat,
		Screen: ScreenConfig{
			Width:  1920,
			Height: 1080,
			Gain:   pointer.DefaultGain,
		},
	}

	// snapshot before flags are bound.
	envConfig Config
)

func init() {
	if val := os.Getenv("HEADTRACK_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("HEADTRACK_TRANSPORT"); val != "" {
		defaultConfig.Transport = val
	}
	if val := os.Getenv("HEADTRACK_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("HEADTRACK_FORMAT"); val != "" {
		defaultConfig.Format = val
	}
	if val := os.Getenv("HEADTRACK_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("HEADTRACK_CSV"); val != "" {
		defaultConfig.CSVFile = val
	}
	if val := os.Getenv("HEADTRACK_CONFIG"); val != "" {
		defaultConfig.ConfigFile = val
	}
	if defaultConfig.Device == "" {
		defaultConfig.Device = DeviceID()
	}
	envConfig = defaultConfig
}

// BindFlags defines the flags on fs storing into conf.
func BindFlags(fs *flag.FlagSet, conf *Config) {
	fs.StringVar(&conf.ConfigFile, "config", conf.ConfigFile, "YAML config file.")
	fs.StringVar(&conf.Device, "device", conf.Device, "Device name used in topics.")
	fs.StringVar(&conf.Transport, "transport", conf.Transport, "Transport URL: rfcomm://ADDR[?channel=N], serial:///dev/...[?baud=N] or file:///path.")
	fs.BoolVar(&conf.AutoAttach, "attach", conf.AutoAttach, "Attach the sensor after connecting.")
	fs.StringVar(&conf.Coverage, "coverage", conf.Coverage, "Checksum coverage: id+payload or frame.")
	fs.IntVar(&conf.MaxPayload, "max-payload", conf.MaxPayload, "Largest accepted payload, 0 for protocol limit.")
	fs.BoolVar(&conf.Normalize, "normalize", conf.Normalize, "Normalize quaternions before conversion.")
	fs.DurationVar(&conf.KeepAlive, "keep-alive", conf.KeepAlive, "Keep-alive interval, negative to disable.")
	fs.StringVar(&conf.MQTTBrokerURL, "mqtt", conf.MQTTBrokerURL, "MQTT broker URL to publish samples.")
	fs.StringVar(&conf.Format, "format", conf.Format, "Sample encoding: json, proto or cbor.")
	fs.StringVar(&conf.Listen, "listen", conf.Listen, "Address to serve websocket clients.")
	fs.StringVar(&conf.CSVFile, "csv", conf.CSVFile, "Record samples to CSV file.")
	fs.Float64Var(&conf.Screen.Width, "screen-width", conf.Screen.Width, "Screen width in pixels.")
	fs.Float64Var(&conf.Screen.Height, "screen-height", conf.Screen.Height, "Screen height in pixels.")
	fs.Float64Var(&conf.Screen.Gain, "gain", conf.Screen.Gain, "Pointer gain in pixels per degree.")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	BindFlags(flag.CommandLine, &defaultConfig)
}

// Defaults returns the defaults with environment variables applied.
func Defaults() Config {
	return envConfig
}

// Load builds the Config from base, the YAML file and the flags explicitly
// set on fs, in increasing precedence.
func Load(fs *flag.FlagSet, base Config) (*Config, error) {
	conf := base
	if f := fs.Lookup("config"); f != nil {
		conf.ConfigFile = f.Value.String()
	}
	if conf.ConfigFile != "" {
		if err := conf.LoadFile(conf.ConfigFile); err != nil {
			return nil, err
		}
	}

	overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
	BindFlags(overlay, &conf)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		if e := overlay.Set(f.Name, f.Value.String()); e != nil {
			err = fmt.Errorf("flag -%s: %v", f.Name, e)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// NewConfig loads the Config from the command line, must be called after
// flag.Parse.
func NewConfig() *Config {
	conf, err := Load(flag.CommandLine, envConfig)
	if err != nil {
		glog.Fatalf("config error: %v", err)
	}
	return conf
}

// LoadFile overlays the YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the values.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device name must be specified")
	}
	if _, err := msgs.CodecFor(c.Format); err != nil {
		return err
	}
	if _, err := spp.ParseCoverage(c.Coverage); err != nil {
		return err
	}
	if c.MaxPayload < 0 || c.MaxPayload > spp.MaxPayloadLen {
		return fmt.Errorf("max payload out of range: %d", c.MaxPayload)
	}
	if c.Screen.Gain < 0 {
		return fmt.Errorf("negative gain: %v", c.Screen.Gain)
	}
	return nil
}

// TrackerConfig creates the tracker.Config.
func (c *Config) TrackerConfig() (tracker.Config, error) {
	conf := tracker.DefaultConfig()
	cov, err := spp.ParseCoverage(c.Coverage)
	if err != nil {
		return conf, err
	}
	conf.Coverage = cov
	conf.MaxPayload = c.MaxPayload
	conf.Normalize = c.Normalize
	if c.KeepAlive != 0 {
		conf.KeepAlive = c.KeepAlive
	}
	return conf, nil
}

// Mapper creates the pointer.Mapper for the screen.
func (c *Config) Mapper() *pointer.Mapper {
	return pointer.NewMapper(pointer.Size{CX: c.Screen.Width, CY: c.Screen.Height}, c.Screen.Gain)
}
