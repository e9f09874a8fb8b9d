package spp

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func frameBytes(id byte, payload ...byte) []byte {
	return NewFrame(id, payload...).Bytes()
}

func concat(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

func padding(n int) []byte {
	return bytes.Repeat([]byte{0x55}, n)
}

func parseAll(p *Parser, data []byte) ParseResult {
	return p.Feed(data)
}

func TestParser(t *testing.T) {
	keepAlive := frameBytes(MsgSensorControl, byte(ControlKeepAlive))
	tilted := frameBytes(MsgIMU, tiltedPayload...)

	testCases := []struct {
		name       string
		maxPayload int
		input      []byte
		frames     []*Frame
		stats      Stats
		state      State
	}{
		{
			name:   "single frame",
			input:  keepAlive,
			frames: []*Frame{NewControlFrame(ControlKeepAlive)},
			stats:  Stats{Frames: 1},
		},
		{
			name:   "back to back",
			input:  concat(tilted, tilted),
			frames: []*Frame{NewFrame(MsgIMU, tiltedPayload...), NewFrame(MsgIMU, tiltedPayload...)},
			stats:  Stats{Frames: 2},
		},
		{
			name:   "garbage around frames",
			input:  concat([]byte{1, 2, 3}, keepAlive, []byte{4, 5}, tilted),
			frames: []*Frame{NewControlFrame(ControlKeepAlive), NewFrame(MsgIMU, tiltedPayload...)},
			stats:  Stats{Frames: 2, GarbageBytes: 5},
		},
		{
			name:   "empty payload",
			input:  []byte{0xfd, 0x00, 0x00, 0x05, 0xa5, 0x50},
			frames: []*Frame{{ID: 5, Payload: []byte{}}},
			stats:  Stats{Frames: 1},
		},
		{
			name:   "response flag",
			input:  []byte{0xfd, 0x01, 0x10, 0xc3, 0x04, 0x83, 0x03},
			frames: []*Frame{{ID: MsgSensorControl, Flags: FlagResponse, Payload: []byte{4}}},
			stats:  Stats{Frames: 1},
		},
		{
			name:   "stray start marker",
			input:  concat([]byte{0xfd, 0x02, 0x00}, keepAlive),
			frames: []*Frame{NewControlFrame(ControlKeepAlive)},
			stats:  Stats{Frames: 1, ChecksumErrors: 1, GarbageBytes: 2},
		},
		{
			name:   "stray start marker with large length",
			input:  concat([]byte{0x00, 0xfd, 0x10}, frameBytes(MsgIMU, identityPayload...), padding(1100)),
			frames: []*Frame{NewFrame(MsgIMU, identityPayload...)},
			stats:  Stats{Frames: 1, ChecksumErrors: 1, GarbageBytes: 1102},
		},
		{
			name:       "length exceeds limit",
			maxPayload: 16,
			input:      concat([]byte{0xfd, 0xff, 0x03}, keepAlive),
			frames:     []*Frame{NewControlFrame(ControlKeepAlive)},
			stats:      Stats{Frames: 1, FramingErrors: 1, GarbageBytes: 2},
		},
		{
			name:   "checksum mismatch",
			input:  concat([]byte{0xfd, 0x01, 0x00, 0xc3, 0x04, 0x83, 0x02}, keepAlive),
			frames: []*Frame{NewControlFrame(ControlKeepAlive)},
			stats:  Stats{Frames: 1, ChecksumErrors: 1, GarbageBytes: 6},
		},
		{
			name:  "truncated",
			input: tilted[:10],
			stats: Stats{},
			state: StateReceiving,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Parser{MaxPayload: tc.maxPayload}
			pr := parseAll(p, tc.input)
			require.Len(t, pr.Frames, len(tc.frames))
			for i, f := range tc.frames {
				require.Equal(t, f.ID, pr.Frames[i].ID)
				require.Equal(t, f.Flags, pr.Frames[i].Flags)
				require.Equal(t, len(f.Payload), len(pr.Frames[i].Payload))
				if len(f.Payload) > 0 {
					require.Equal(t, f.Payload, pr.Frames[i].Payload)
				}
			}
			require.Equal(t, tc.stats, p.Stats())
			require.Len(t, pr.Dropped, int(tc.stats.Dropped()))
			require.Equal(t, tc.state, pr.State)
			require.Equal(t, tc.state, p.State())
		})
	}
}

func TestParserDropError(t *testing.T) {
	var p Parser
	pr := p.Feed([]byte{0xfd, 0x01, 0x00, 0xc3, 0x04, 0x83, 0x02})
	require.Empty(t, pr.Frames)
	require.Len(t, pr.Dropped, 1)
	require.True(t, errors.Is(pr.Dropped[0], ErrChecksum))
	var dropErr *DropError
	require.True(t, errors.As(pr.Dropped[0], &dropErr))
	require.Equal(t, MsgSensorControl, dropErr.ID)
	require.Equal(t, 1, dropErr.Length)
	require.Equal(t, uint16(0x0283), dropErr.Expect)
	require.Equal(t, uint16(0x0383), dropErr.Actual)

	p = Parser{MaxPayload: 4}
	pr = p.Feed([]byte{0xfd, 0x05, 0x00})
	require.Len(t, pr.Dropped, 1)
	require.True(t, errors.Is(pr.Dropped[0], ErrFraming))
	require.False(t, errors.Is(pr.Dropped[0], ErrChecksum))
}

func TestParserPayloadIsCopied(t *testing.T) {
	var p Parser
	data := frameBytes(MsgIMU, identityPayload...)
	pr := p.Feed(data)
	require.Len(t, pr.Frames, 1)
	pr1 := p.Feed(frameBytes(MsgIMU, tiltedPayload...))
	require.Len(t, pr1.Frames, 1)
	require.Equal(t, identityPayload, pr.Frames[0].Payload)
	require.Equal(t, tiltedPayload, pr1.Frames[0].Payload)
}

func TestParserChunking(t *testing.T) {
	data := concat(
		[]byte{0x11, 0x22},
		frameBytes(MsgIMU, tiltedPayload...),
		[]byte{0xfd, 0x02, 0x00},
		frameBytes(MsgSensorControl, byte(ControlAttachSuccess)),
		frameBytes(MsgIMU, identityPayload...),
		[]byte{0x33},
		frameBytes(MsgSetSpatialSensor, 1),
	)

	var whole Parser
	expect := whole.Feed(data)
	require.Len(t, expect.Frames, 4)

	for _, size := range []int{1, 2, 3, 7, 16, 64} {
		var p Parser
		var frames []*Frame
		for off := 0; off < len(data); off += size {
			end := off + size
			if end > len(data) {
				end = len(data)
			}
			frames = append(frames, p.Feed(data[off:end]).Frames...)
		}
		require.Equal(t, expect.Frames, frames, "chunk size %d", size)
		require.Equal(t, whole.Stats(), p.Stats(), "chunk size %d", size)
	}

	var p Parser
	var frames []*Frame
	for _, b := range data {
		frames = append(frames, p.Parse(b).Frames...)
	}
	require.Equal(t, expect.Frames, frames)
}

func TestParserBitFlip(t *testing.T) {
	frameA := frameBytes(MsgIMU, tiltedPayload...)
	frameB := frameBytes(MsgIMU, identityPayload...)
	for i := headerLen; i < len(frameA); i++ {
		for bit := uint(0); bit < 8; bit++ {
			corrupted := append([]byte{}, frameA...)
			corrupted[i] ^= 1 << bit
			var p Parser
			pr := p.Feed(concat(corrupted, frameB))
			pr.merge(p.Reset())
			require.Len(t, pr.Frames, 1, "byte %d bit %d", i, bit)
			require.Equal(t, identityPayload, pr.Frames[0].Payload, "byte %d bit %d", i, bit)
			require.True(t, p.Stats().ChecksumErrors >= 1, "byte %d bit %d", i, bit)
		}
	}
}

func TestParserRandomStream(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var data []byte
	var expect [][]byte
	for i := 0; i < 64; i++ {
		for n := r.Intn(8); n > 0; n-- {
			b := byte(r.Intn(256))
			if b == StartOfMessage {
				b = 0
			}
			data = append(data, b)
		}
		if i%8 == 3 {
			data = append(data, StartOfMessage, 0x01, 0x00)
		}
		payload := make([]byte, r.Intn(33))
		r.Read(payload)
		expect = append(expect, payload)
		data = append(data, frameBytes(byte(r.Intn(256)), payload...)...)
	}

	var p Parser
	var frames []*Frame
	for off := 0; off < len(data); {
		end := off + 1 + r.Intn(40)
		if end > len(data) {
			end = len(data)
		}
		frames = append(frames, p.Feed(data[off:end]).Frames...)
		off = end
	}
	frames = append(frames, p.Reset().Frames...)
	require.Len(t, frames, len(expect))
	for i, payload := range expect {
		require.Equal(t, len(payload), len(frames[i].Payload))
		if len(payload) > 0 {
			require.Equal(t, payload, frames[i].Payload)
		}
	}
}

func TestParserReset(t *testing.T) {
	var p Parser
	pr := p.Feed(frameBytes(MsgIMU, tiltedPayload...)[:8])
	require.Equal(t, StateReceiving, pr.State)

	// drops the attempt and the one started by 0xFD inside its payload.
	pr = p.Reset()
	require.Equal(t, StateSeeking, pr.State)
	require.Empty(t, pr.Frames)
	require.Len(t, pr.Dropped, 2)
	require.True(t, errors.Is(pr.Dropped[0], ErrFraming))
	require.True(t, errors.Is(pr.Dropped[1], ErrFraming))
	require.Equal(t, uint64(2), p.Stats().FramingErrors)

	pr = p.Reset()
	require.Empty(t, pr.Dropped)

	pr = p.Feed(frameBytes(MsgIMU, tiltedPayload...))
	require.Len(t, pr.Frames, 1)
}

func TestParserResetRecoversFrames(t *testing.T) {
	keepAlive := frameBytes(MsgSensorControl, byte(ControlKeepAlive))
	testCases := []struct {
		name   string
		input  []byte
		frames []*Frame
		stats  Stats
	}{
		{
			name:   "bogus maximum length",
			input:  concat([]byte{0xfd, 0xff, 0x03}, keepAlive),
			frames: []*Frame{NewControlFrame(ControlKeepAlive)},
			stats:  Stats{Frames: 1, FramingErrors: 1, GarbageBytes: 2},
		},
		{
			name:   "stray start marker with large length",
			input:  concat([]byte{0x00, 0xfd, 0x10}, frameBytes(MsgIMU, identityPayload...)),
			frames: []*Frame{NewFrame(MsgIMU, identityPayload...)},
			stats:  Stats{Frames: 1, FramingErrors: 1, GarbageBytes: 2},
		},
		{
			name:  "truncated frame",
			input: frameBytes(MsgIMU, identityPayload...)[:10],
			stats: Stats{FramingErrors: 1, GarbageBytes: 9},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p Parser
			pr := p.Feed(tc.input)
			require.Empty(t, pr.Frames)
			require.Equal(t, StateReceiving, pr.State)
			pr = p.Reset()
			require.Equal(t, StateSeeking, pr.State)
			require.Equal(t, tc.frames, pr.Frames)
			require.Equal(t, tc.stats, p.Stats())
		})
	}
}

func TestParserCoverFrame(t *testing.T) {
	f := NewFrame(MsgIMU, tiltedPayload...)
	full, err := f.Encode(CoverFrame)
	require.NoError(t, err)

	p := Parser{Coverage: CoverFrame}
	pr := p.Feed(concat(full, padding(32)))
	require.Len(t, pr.Frames, 1)
	require.Equal(t, tiltedPayload, pr.Frames[0].Payload)

	// id+payload encoding rejected under full coverage.
	p = Parser{Coverage: CoverFrame}
	pr = p.Feed(concat(f.Bytes(), padding(32)))
	require.Empty(t, pr.Frames)
	require.Equal(t, uint64(1), p.Stats().ChecksumErrors)
}
