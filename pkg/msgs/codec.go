package msgs

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/protobuf/proto"
)

// Codec encodes/decodes messages.
type Codec interface {
	Marshal(proto.Message) ([]byte, error)
	Unmarshal([]byte, proto.Message) error
}

// Codec names.
const (
	FormatJSON  = "json"
	FormatProto = "proto"
	FormatCBOR  = "cbor"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatJSON

// ErrUnknownFormat indicates the codec isn't registered.
type ErrUnknownFormat struct {
	Format string
}

// Error implements error.
func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("unknown format: %q", e.Format)
}

// Codecs are registered codecs by format name.
var Codecs = map[string]Codec{
	FormatJSON:  jsonCodec{},
	FormatProto: protoCodec{},
	FormatCBOR:  newCBORCodec(),
}

// Formats lists the registered format names.
func Formats() []string {
	names := make([]string, 0, len(Codecs))
	for name := range Codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodecFor finds the codec, empty format means DefaultFormat.
func CodecFor(format string) (Codec, error) {
	if format == "" {
		format = DefaultFormat
	}
	c, ok := Codecs[format]
	if !ok {
		return nil, &ErrUnknownFormat{Format: format}
	}
	return c, nil
}

// Encode encodes msg using the named format.
func Encode(format string, msg proto.Message) ([]byte, error) {
	c, err := CodecFor(format)
	if err != nil {
		return nil, err
	}
	return c.Marshal(msg)
}

// Decode decodes data into msg using the named format.
func Decode(format string, data []byte, msg proto.Message) error {
	c, err := CodecFor(format)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, msg)
}

// DecodeSample decodes a Sample.
func DecodeSample(format string, data []byte) (*Sample, error) {
	var s Sample
	if err := Decode(format, data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type jsonCodec struct{}

func (jsonCodec) Marshal(msg proto.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg proto.Message) error {
	return json.Unmarshal(data, msg)
}

type protoCodec struct{}

func (protoCodec) Marshal(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

func (protoCodec) Unmarshal(data []byte, msg proto.Message) error {
	return proto.Unmarshal(data, msg)
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() *cborCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("msgs: CBOR encoder: " + err.Error())
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("msgs: CBOR decoder: " + err.Error())
	}
	return &cborCodec{enc: enc, dec: dec}
}

func (c *cborCodec) Marshal(msg proto.Message) ([]byte, error) {
	return c.enc.Marshal(msg)
}

func (c *cborCodec) Unmarshal(data []byte, msg proto.Message) error {
	return c.dec.Unmarshal(data, msg)
}
