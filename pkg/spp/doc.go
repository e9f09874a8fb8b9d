// Package spp decodes the serial-port-profile stream of the earbud sensor.
package spp

// The earbud emits frames over an RFCOMM channel with no framing guarantees
// from the transport. Each frame is
//
//	0xFD | LE16(length | flags<<10) | id | payload[length] | LE16(crc)
//
// The parser consumes one byte at a time and keeps its state between calls,
// so a stream may be fed in chunks of any size. A frame that fails its
// length or checksum validation is dropped, and every byte after its start
// marker is scanned again, so a valid frame hidden behind a stray 0xFD is
// never lost.
//
// Producer: earbud firmware
// Consumer: tracker
