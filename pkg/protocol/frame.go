package protocol

import (
	"errors"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Frame constants.
const (
	// FrameHeaderSize is the fixed header size in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest payload a single frame can carry
	// (the length field is 16 bits). Larger messages are fragmented
	// with SplitPayload.
	MaxPayloadSize = 65535

	// ChecksumSize is the size of the xxhash64 trailer appended to
	// checksummed frames.
	ChecksumSize = 8
)

// FrameType identifies what the payload contains.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // Connection setup
	FrameEvent     FrameType = 0x01 // Client → Server events
	FramePatches   FrameType = 0x02 // Server → Client patches
	FrameControl   FrameType = 0x03 // Control messages (ping, resync, close)
	FrameAck       FrameType = 0x04 // Acknowledgment
	FrameError     FrameType = 0x05 // Error message
)

// String returns the frame type's name.
func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameAck:
		return "Ack"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags modify how a frame is framed and processed.
type FrameFlags uint8

const (
	FlagChecksum  FrameFlags = 0x01 // Payload is followed by an xxhash64 trailer
	FlagSequenced FrameFlags = 0x02 // Payload carries a sequence number
	FlagPartial   FrameFlags = 0x04 // More fragments of this message follow
	FlagPriority  FrameFlags = 0x08 // Process ahead of queued frames
)

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrChecksumMismatch = errors.New("protocol: frame checksum mismatch")
	ErrFragmentType     = errors.New("protocol: fragment frame type mismatch")
	ErrMessageTooLarge  = errors.New("protocol: reassembled message too large")
)

// Frame is one wire message: a 4-byte header, the payload, and an
// optional 8-byte checksum trailer.
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	├─────────────┴──────────────┴───────────────────────────────┤
//	│  Payload (variable length)                                 │
//	├────────────────────────────────────────────────────────────┤
//	│  xxhash64 of payload (8 bytes, only with FlagChecksum)     │
//	└────────────────────────────────────────────────────────────┘
//
// The length field counts payload bytes only; the trailer is fixed
// size and announced by the flag.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// Encode serializes the frame, header and trailer included.
func (f *Frame) Encode() []byte {
	length := len(f.Payload)
	size := FrameHeaderSize + length
	if f.Flags.Has(FlagChecksum) {
		size += ChecksumSize
	}
	buf := make([]byte, size)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	if f.Flags.Has(FlagChecksum) {
		putUint64(buf[FrameHeaderSize+length:], xxhash.Sum64(f.Payload))
	}
	return buf
}

// EncodeTo serializes the frame through an encoder.
func (f *Frame) EncodeTo(e *Encoder) {
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint16(uint16(len(f.Payload)))
	e.WriteBytes(f.Payload)
	if f.Flags.Has(FlagChecksum) {
		e.WriteUint64(xxhash.Sum64(f.Payload))
	}
}

// DecodeFrame decodes one frame from data. The input must hold the
// full header, payload and, for checksummed frames, the trailer.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}

	ft := FrameType(data[0])
	flags := FrameFlags(data[1])
	length := int(data[2])<<8 | int(data[3])

	total := FrameHeaderSize + length
	if flags.Has(FlagChecksum) {
		total += ChecksumSize
	}
	if len(data) < total {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+length])

	if flags.Has(FlagChecksum) {
		want := getUint64(data[FrameHeaderSize+length:])
		if xxhash.Sum64(payload) != want {
			return nil, ErrChecksumMismatch
		}
	}

	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// DecodeFrameHeader decodes only the header, returning type, flags and
// payload length.
func DecodeFrameHeader(data []byte) (FrameType, FrameFlags, int, error) {
	if len(data) < FrameHeaderSize {
		return 0, 0, 0, io.ErrUnexpectedEOF
	}
	return FrameType(data[0]), FrameFlags(data[1]), int(data[2])<<8 | int(data[3]), nil
}

// ReadFrame reads one complete frame from r, verifying the checksum
// when present.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	ft := FrameType(header[0])
	flags := FrameFlags(header[1])
	length := int(header[2])<<8 | int(header[3])

	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	if flags.Has(FlagChecksum) {
		trailer := make([]byte, ChecksumSize)
		if _, err := io.ReadFull(r, trailer); err != nil {
			return nil, err
		}
		if xxhash.Sum64(payload) != getUint64(trailer) {
			return nil, ErrChecksumMismatch
		}
	}

	return &Frame{Type: ft, Flags: flags, Payload: payload}, nil
}

// WriteFrame writes a complete frame to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

// NewFrame creates a frame with no flags set.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// NewFrameWithFlags creates a frame with the given flags.
func NewFrameWithFlags(ft FrameType, flags FrameFlags, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: flags, Payload: payload}
}

// NewChecksummedFrame creates a frame whose payload will carry an
// xxhash64 trailer.
func NewChecksummedFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: FlagChecksum, Payload: payload}
}

// SplitPayload cuts a payload into frames of at most MaxPayloadSize
// bytes each. Every frame but the last carries FlagPartial; the given
// flags are applied to all of them. A payload that fits in one frame
// yields exactly one unfragmented frame.
func SplitPayload(ft FrameType, flags FrameFlags, payload []byte) []*Frame {
	if len(payload) <= MaxPayloadSize {
		return []*Frame{{Type: ft, Flags: flags, Payload: payload}}
	}

	frames := make([]*Frame, 0, (len(payload)+MaxPayloadSize-1)/MaxPayloadSize)
	for len(payload) > MaxPayloadSize {
		frames = append(frames, &Frame{
			Type:    ft,
			Flags:   flags | FlagPartial,
			Payload: payload[:MaxPayloadSize],
		})
		payload = payload[MaxPayloadSize:]
	}
	return append(frames, &Frame{Type: ft, Flags: flags, Payload: payload})
}

// FrameAssembler reassembles fragmented messages. Feed it frames in
// arrival order; it buffers FlagPartial fragments and returns the
// concatenated payload once the final fragment lands. Unfragmented
// frames pass straight through.
type FrameAssembler struct {
	ftype FrameType
	buf   []byte
	count int
}

// Add folds one frame into the assembler. It returns the complete
// payload and true once a message is whole, or nil and false while
// fragments are still outstanding. Mixing frame types inside one
// fragmented message or exceeding the assembly limits is an error; the
// assembler resets itself on error.
func (a *FrameAssembler) Add(f *Frame) ([]byte, bool, error) {
	if a.count > 0 && f.Type != a.ftype {
		a.reset()
		return nil, false, ErrFragmentType
	}
	if a.count >= MaxFramesPerMessage || len(a.buf)+len(f.Payload) > MaxAssembledSize {
		a.reset()
		return nil, false, ErrMessageTooLarge
	}

	if a.count == 0 && !f.Flags.Has(FlagPartial) {
		// Whole message in a single frame; skip the copy.
		return f.Payload, true, nil
	}

	a.ftype = f.Type
	a.buf = append(a.buf, f.Payload...)
	a.count++

	if f.Flags.Has(FlagPartial) {
		return nil, false, nil
	}

	payload := a.buf
	a.reset()
	return payload, true, nil
}

// Pending reports whether the assembler holds buffered fragments.
func (a *FrameAssembler) Pending() bool {
	return a.count > 0
}

func (a *FrameAssembler) reset() {
	a.ftype = 0
	a.buf = nil
	a.count = 0
}

func putUint64(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}

func getUint64(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}
