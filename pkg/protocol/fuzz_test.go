package protocol

import (
	"bytes"
	"testing"
)

// FuzzDecodeUvarint tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeUvarint(f *testing.F) {
	// Seed with valid varints
	f.Add([]byte{0x00})
	f.Add([]byte{0x7F})
	f.Add([]byte{0x80, 0x01})
	f.Add([]byte{0xFF, 0x7F})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeUvarint(data)
	})
}

// FuzzDecodeSvarint tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeSvarint(f *testing.F) {
	// Seed with valid varints
	f.Add([]byte{0x00})
	f.Add([]byte{0x01})
	f.Add([]byte{0x02})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeSvarint(data)
	})
}

// FuzzDecodeFrame tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeFrame(f *testing.F) {
	// Seed with valid frames
	frame := &Frame{Type: FrameEvent, Payload: []byte{0x01, 0x02}}
	f.Add(frame.Encode())

	frame2 := NewChecksummedFrame(FramePatches, []byte("test"))
	f.Add(frame2.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeFrame(data)
	})
}

// FuzzDecodeEvent tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeEvent(f *testing.F) {
	// Seed with valid events
	click := &Event{Seq: 1, Type: EventClick, HID: "v1"}
	f.Add(EncodeEvent(click))

	input := &Event{Seq: 2, Type: EventInput, HID: "v5", Payload: "hello"}
	f.Add(EncodeEvent(input))

	keyboard := &Event{
		Seq:     3,
		Type:    EventKeyDown,
		HID:     "v3",
		Payload: &KeyboardEventData{Key: "Enter", Modifiers: ModCtrl},
	}
	f.Add(EncodeEvent(keyboard))

	submit := &Event{
		Seq:     4,
		Type:    EventSubmit,
		HID:     "v7",
		Payload: &SubmitEventData{Fields: map[string]string{"name": "Ada"}},
	}
	f.Add(EncodeEvent(submit))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeEvent(data)
	})
}

// FuzzDecodePatches tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodePatches(f *testing.F) {
	// Seed with valid patches
	pf := &PatchesFrame{
		Seq: 1,
		Patches: []Patch{
			NewSetTextPatch("v1", 0, "Hello"),
			NewSetAttrPatch("v2", "class", "active"),
			NewInsertBeforePatch("v1", 2, `<li data-hid="v8">item</li>`),
		},
	}
	f.Add(EncodePatches(pf))

	pf2 := &PatchesFrame{Seq: 2, Patches: []Patch{}}
	f.Add(EncodePatches(pf2))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodePatches(data)
	})
}

// FuzzDecodeClientHello tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeClientHello(f *testing.F) {
	ch := &ClientHello{
		Version:   CurrentVersion,
		SessionID: "session",
		LastSeq:   42,
		ViewportW: 1920,
		ViewportH: 1080,
		TZOffset:  -480,
	}
	f.Add(EncodeClientHello(ch))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeClientHello(data)
	})
}

// FuzzDecodeServerHello tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeServerHello(f *testing.F) {
	sh := &ServerHello{
		Status:     HandshakeOK,
		Version:    CurrentVersion,
		SessionID:  "session-123",
		NextSeq:    1,
		ServerTime: 1702000000000,
		Flags:      ServerFlagChecksums,
	}
	f.Add(EncodeServerHello(sh))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeServerHello(data)
	})
}

// FuzzDecodeControl tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeControl(f *testing.F) {
	// Seed with valid control messages
	f.Add(EncodeControl(ControlPing, &PingPong{Timestamp: 1702000000000}))
	f.Add(EncodeControl(ControlClose, &CloseMessage{Reason: CloseNormal, Message: "bye"}))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _, _ = DecodeControl(data)
	})
}

// FuzzDecodeAck tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeAck(f *testing.F) {
	f.Add(EncodeAck(NewAck(42, 100)))
	f.Add(EncodeAck(NewAck(0, 0)))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeAck(data)
	})
}

// FuzzDecodeErrorMessage tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeErrorMessage(f *testing.F) {
	f.Add(EncodeErrorMessage(NewError(ErrListenerNotFound, "test")))
	f.Add(EncodeErrorMessage(NewFatalError(ErrServerError, "fatal error")))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeErrorMessage(data)
	})
}

// FuzzRoundTrip tests that encoding and decoding produces the same result.
func FuzzRoundTrip(f *testing.F) {
	f.Add("hello world", uint64(42), int64(-123))

	f.Fuzz(func(t *testing.T, s string, u uint64, i int64) {
		e := NewEncoder()
		e.WriteString(s)
		e.WriteUvarint(u)
		e.WriteSvarint(i)

		d := NewDecoder(e.Bytes())
		gotS, err := d.ReadString()
		if err != nil {
			return // Invalid input, that's fine
		}
		gotU, err := d.ReadUvarint()
		if err != nil {
			return
		}
		gotI, err := d.ReadSvarint()
		if err != nil {
			return
		}

		if gotS != s {
			t.Errorf("String: got %q, want %q", gotS, s)
		}
		if gotU != u {
			t.Errorf("Uvarint: got %d, want %d", gotU, u)
		}
		if gotI != i {
			t.Errorf("Svarint: got %d, want %d", gotI, i)
		}
	})
}

// FuzzSplitAssemble tests that any payload survives fragmentation and
// reassembly unchanged.
func FuzzSplitAssemble(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("short"))
	f.Add(bytes.Repeat([]byte{0xAB}, MaxPayloadSize))
	f.Add(bytes.Repeat([]byte{0xCD}, MaxPayloadSize+1))

	f.Fuzz(func(t *testing.T, payload []byte) {
		if len(payload) > MaxAssembledSize-MaxPayloadSize {
			return
		}

		frames := SplitPayload(FramePatches, 0, payload)

		var a FrameAssembler
		for i, fr := range frames {
			got, done, err := a.Add(fr)
			if err != nil {
				t.Fatalf("Add(frame %d) error = %v", i, err)
			}
			if done != (i == len(frames)-1) {
				t.Fatalf("Add(frame %d) done = %v", i, done)
			}
			if done && !bytes.Equal(got, payload) {
				t.Errorf("reassembled %d bytes, want %d", len(got), len(payload))
			}
		}
	})
}

// FuzzFrameStream tests that a frame survives a write/read cycle and
// that arbitrary prefixes of the stream never panic the reader.
func FuzzFrameStream(f *testing.F) {
	f.Add([]byte("event payload"), true)
	f.Add([]byte{}, false)

	f.Fuzz(func(t *testing.T, payload []byte, checksum bool) {
		if len(payload) > MaxPayloadSize {
			return
		}

		fr := NewFrame(FrameEvent, payload)
		if checksum {
			fr.Flags = FlagChecksum
		}

		var buf bytes.Buffer
		if err := WriteFrame(&buf, fr); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}

		encoded := buf.Bytes()
		got, err := ReadFrame(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Error("payload altered by write/read cycle")
		}

		for i := 0; i < len(encoded); i++ {
			// Should not panic
			_, _ = ReadFrame(bytes.NewReader(encoded[:i]))
		}
	})
}
