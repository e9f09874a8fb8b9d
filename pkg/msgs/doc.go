// Package msgs defines the messages published by the tracker.
package msgs

// Samples are published to MQTT and websocket clients. The encoding is
// selected by name, see Codecs. Angles are in degrees.
//
// Producer: headtrack
// Consumer: headmon, browsers, any MQTT subscriber
