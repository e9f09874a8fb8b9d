package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/headtrack/pkg/framework"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/publish/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/headtrack/"
	format  = msgs.DefaultFormat
	device  = "+"
)

func init() {
	if val := os.Getenv("HEADTRACK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	if val := os.Getenv("HEADTRACK_FORMAT"); val != "" {
		format = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&format, "format", format, "Sample encoding: json, proto or cbor.")
	flag.StringVar(&device, "device", device, "Device to monitor, + for all.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if _, err := msgs.CodecFor(format); err != nil {
		log.Fatalln(err)
	}
	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(mqtt.Topic(device, mqtt.TopicMeta), func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: offline", topic)
			return
		}
		log.Printf("%s: %s", topic, string(payload))
	})
	q.Sub(mqtt.Topic(device, mqtt.TopicSample), func(topic string, payload []byte) {
		sample, err := msgs.DecodeSample(format, payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		line := strings.TrimSpace(sample.String())
		log.Printf("%s: %s", topic, line)
	})

	err = framework.NewRunner().HandleSignals().Go(
		framework.NamedRun("monitor", framework.RunFunc(func(ctx context.Context) error {
			if err := q.Connect(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			q.Close()
			return ctx.Err()
		})),
	).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
