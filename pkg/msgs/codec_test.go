package msgs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSample() *Sample {
	return &Sample{
		Device:      "buds",
		TimestampNs: 1700000000123456789,
		Seq:         42,
		Quaternion:  &Quaternion{W: 0.707, Y: 0.707},
		Raw:         &Euler{Yaw: 10.5, Pitch: 88.2, Roll: -1},
		Relative:    &Euler{Yaw: 0.5, Pitch: -3.25},
	}
}

func TestCodecs(t *testing.T) {
	require.Equal(t, []string{FormatCBOR, FormatJSON, FormatProto}, Formats())
	for _, format := range Formats() {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(format, testSample())
			require.NoError(t, err)
			s, err := DecodeSample(format, data)
			require.NoError(t, err)
			require.Equal(t, testSample(), s)
		})
	}
}

func TestCodecDefault(t *testing.T) {
	data, err := Encode("", &Calibrate{})
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))

	var m map[string]interface{}
	data, err = Encode(FormatJSON, testSample())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "buds", m["device"])
	require.Contains(t, m, "relative")
	require.NotContains(t, m, "pointer")
}

func TestCodecUnknown(t *testing.T) {
	_, err := Encode("xml", testSample())
	require.Error(t, err)
	require.IsType(t, &ErrUnknownFormat{}, err)
	require.Error(t, Decode("xml", nil, &Sample{}))
}

func TestDecodeCalibrate(t *testing.T) {
	var c Calibrate
	require.NoError(t, Decode(FormatJSON, []byte(`{"reference":{"yaw":1,"pitch":2}}`), &c))
	require.Equal(t, &Euler{Yaw: 1, Pitch: 2}, c.Reference)

	c.Reset()
	require.NoError(t, Decode(FormatJSON, []byte(`{}`), &c))
	require.Nil(t, c.Reference)
}
