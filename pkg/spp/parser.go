package spp

import "encoding/binary"

// Parser parses bytes received.
type Parser struct {
	// MaxPayload limits the accepted payload length, 0 means MaxPayloadLen.
	MaxPayload int
	// Coverage selects the bytes protected by the checksum.
	Coverage Coverage

	state  parseState
	buf    []byte
	length int
	stats  Stats
}

// Stats contains the counters of a Parser.
type Stats struct {
	Frames         uint64 `json:"frames"`
	ChecksumErrors uint64 `json:"checksum_errors"`
	FramingErrors  uint64 `json:"framing_errors"`
	GarbageBytes   uint64 `json:"garbage_bytes"`
}

// Dropped is the total number of dropped frame attempts.
func (s Stats) Dropped() uint64 {
	return s.ChecksumErrors + s.FramingErrors
}

// State indicates whether the parser is in the middle of a frame.
type State int

const (
	// StateSeeking means the parser is looking for a start marker.
	StateSeeking State = iota
	// StateReceiving means a frame is partially received.
	StateReceiving
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == StateReceiving {
		return "receiving"
	}
	return "seeking"
}

// ParseResult indicates the result after one parsing step.
// Re-scanning the bytes of a dropped attempt may complete more than
// one frame in a single step.
type ParseResult struct {
	State   State
	Frames  []*Frame
	Dropped []error
}

func (r *ParseResult) merge(r1 ParseResult) {
	r.State = r1.State
	r.Frames = append(r.Frames, r1.Frames...)
	r.Dropped = append(r.Dropped, r1.Dropped...)
}

type parseState int

const (
	stateSeekStart parseState = iota // waiting for StartOfMessage
	stateHeader                      // waiting for length/flags
	stateMsgID                       // waiting for message id
	statePayload                     // waiting for payload bytes
	stateChecksum                    // waiting for checksum bytes
)

// State gets the current state.
func (p *Parser) State() State {
	if p.state == stateSeekStart {
		return StateSeeking
	}
	return StateReceiving
}

// Stats returns the counters.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Reset ends the stream, e.g. on EOF. A partially received attempt is
// dropped and the bytes after its start marker are scanned again, so frames
// buffered behind a bogus length are still emitted. Whatever remains
// incomplete is discarded, a partial frame is never emitted.
func (p *Parser) Reset() (pr ParseResult) {
	for p.state != stateSeekStart {
		p.stats.FramingErrors++
		rescan := p.drop(&pr, &DropError{Reason: ErrFraming, Length: p.length})
		pr.merge(p.Feed(rescan))
	}
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	queue := []byte{b}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if rescan := p.parseByte(c, &pr); len(rescan) > 0 {
			queue = append(rescan, queue...)
		}
	}
	pr.State = p.State()
	return
}

// Feed consumes a chunk of bytes.
func (p *Parser) Feed(data []byte) (pr ParseResult) {
	pr.State = p.State()
	for _, b := range data {
		pr.merge(p.Parse(b))
	}
	return
}

func (p *Parser) maxPayload() int {
	if p.MaxPayload <= 0 || p.MaxPayload > MaxPayloadLen {
		return MaxPayloadLen
	}
	return p.MaxPayload
}

func (p *Parser) parseByte(b byte, pr *ParseResult) (rescan []byte) {
	switch p.state {
	case stateSeekStart:
		if b != StartOfMessage {
			p.stats.GarbageBytes++
			return
		}
		p.buf = append(p.buf[:0], b)
		p.state = stateHeader
	case stateHeader:
		p.buf = append(p.buf, b)
		if len(p.buf) < 3 {
			return
		}
		p.length = int(binary.LittleEndian.Uint16(p.buf[1:3]) & lengthMask)
		if p.length > p.maxPayload() {
			p.stats.FramingErrors++
			return p.drop(pr, &DropError{Reason: ErrFraming, Length: p.length})
		}
		p.state = stateMsgID
	case stateMsgID:
		p.buf = append(p.buf, b)
		if p.length == 0 {
			p.state = stateChecksum
		} else {
			p.state = statePayload
		}
	case statePayload:
		p.buf = append(p.buf, b)
		if len(p.buf) >= headerLen+p.length {
			p.state = stateChecksum
		}
	case stateChecksum:
		p.buf = append(p.buf, b)
		if len(p.buf) >= headerLen+p.length+checksumLen {
			return p.frameReady(pr)
		}
	}
	return
}

func (p *Parser) frameReady(pr *ParseResult) []byte {
	end := headerLen + p.length
	expect := binary.LittleEndian.Uint16(p.buf[end:])
	var actual uint16
	if p.Coverage == CoverFrame {
		actual = CRC16(p.buf[:end])
	} else {
		actual = CRC16(p.buf[3:end])
	}
	if actual != expect {
		p.stats.ChecksumErrors++
		return p.drop(pr, &DropError{
			Reason: ErrChecksum,
			ID:     p.buf[3],
			Length: p.length,
			Expect: expect,
			Actual: actual,
		})
	}
	frame := &Frame{
		ID:      p.buf[3],
		Flags:   uint8(binary.LittleEndian.Uint16(p.buf[1:3]) >> flagsShift),
		Payload: make([]byte, p.length),
	}
	copy(frame.Payload, p.buf[headerLen:end])
	p.stats.Frames++
	pr.Frames = append(pr.Frames, frame)
	p.state, p.buf, p.length = stateSeekStart, p.buf[:0], 0
	return nil
}

// drop abandons the current attempt and returns the bytes after its start
// marker so they are scanned again.
func (p *Parser) drop(pr *ParseResult, err *DropError) []byte {
	pr.Dropped = append(pr.Dropped, err)
	rescan := make([]byte, len(p.buf)-1)
	copy(rescan, p.buf[1:])
	p.state, p.buf, p.length = stateSeekStart, p.buf[:0], 0
	return rescan
}
