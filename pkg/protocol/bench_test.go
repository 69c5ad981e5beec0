package protocol

import (
	"testing"
)

// Cross-cutting benchmarks over the whole wire surface. The per-file
// benchmarks next to each codec cover the narrow paths; these are the
// shapes a busy session actually produces.

// === Varint ===

func BenchmarkVarint_EncodeSmall(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeUvarint(buf, 127)
	}
}

func BenchmarkVarint_EncodeLarge(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeUvarint(buf, 1<<28)
	}
}

func BenchmarkVarint_DecodeSmall(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	EncodeUvarint(buf, 127)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DecodeUvarint(buf)
	}
}

func BenchmarkVarint_DecodeLarge(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	n := EncodeUvarint(buf, 1<<28)
	buf = buf[:n]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DecodeUvarint(buf)
	}
}

// === Encoder/Decoder ===

func BenchmarkEncoder_MixedTypes(b *testing.B) {
	e := NewEncoder()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		e.WriteByte(0x42)
		e.WriteUvarint(12345)
		e.WriteSvarint(-9876)
		e.WriteString("hello world")
		e.WriteUint32(0x12345678)
		e.WriteFloat64(3.14159)
	}
}

func BenchmarkDecoder_MixedTypes(b *testing.B) {
	e := NewEncoder()
	e.WriteByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	e.WriteUint32(0x12345678)
	e.WriteFloat64(3.14159)
	data := e.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(data)
		d.ReadByte()
		d.ReadUvarint()
		d.ReadSvarint()
		d.ReadString()
		d.ReadUint32()
		d.ReadFloat64()
	}
}

// === Frames ===

func BenchmarkFrame_EncodeSmall(b *testing.B) {
	f := &Frame{Type: FrameEvent, Payload: []byte{0x01, 0x02, 0x03}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkFrame_EncodeLarge(b *testing.B) {
	f := &Frame{Type: FramePatches, Payload: make([]byte, 1000)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkFrame_EncodeChecksummed(b *testing.B) {
	f := NewChecksummedFrame(FramePatches, make([]byte, 1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkFrame_DecodeSmall(b *testing.B) {
	f := &Frame{Type: FrameEvent, Payload: []byte{0x01, 0x02, 0x03}}
	data := f.Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFrame(data)
	}
}

func BenchmarkFrame_DecodeChecksummed(b *testing.B) {
	f := NewChecksummedFrame(FramePatches, make([]byte, 1000))
	data := f.Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFrame(data)
	}
}

func BenchmarkFrame_SplitAssemble(b *testing.B) {
	payload := make([]byte, 3*MaxPayloadSize+100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var a FrameAssembler
		for _, f := range SplitPayload(FramePatches, 0, payload) {
			_, _, _ = a.Add(f)
		}
	}
}

// === Events ===

func BenchmarkEvent_EncodeClick(b *testing.B) {
	e := &Event{Seq: 1, Type: EventClick, HID: "v42"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(e)
	}
}

func BenchmarkEvent_DecodeClick(b *testing.B) {
	e := &Event{Seq: 1, Type: EventClick, HID: "v42"}
	data := EncodeEvent(e)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeEvent(data)
	}
}

func BenchmarkEvent_EncodeInput(b *testing.B) {
	e := &Event{Seq: 1, Type: EventInput, HID: "v5", Payload: "user input text"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(e)
	}
}

func BenchmarkEvent_DecodeInput(b *testing.B) {
	e := &Event{Seq: 1, Type: EventInput, HID: "v5", Payload: "user input text"}
	data := EncodeEvent(e)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeEvent(data)
	}
}

func BenchmarkEvent_EncodeKeyboard(b *testing.B) {
	e := &Event{
		Seq:     1,
		Type:    EventKeyDown,
		HID:     "v3",
		Payload: &KeyboardEventData{Key: "Enter", Code: "Enter", Modifiers: ModCtrl | ModShift},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(e)
	}
}

// === Patches ===

func BenchmarkPatch_EncodeSetText(b *testing.B) {
	pf := &PatchesFrame{
		Seq:     1,
		Patches: []Patch{NewSetTextPatch("v1", 0, "Hello, World!")},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodePatches(pf)
	}
}

func BenchmarkPatch_DecodeSetText(b *testing.B) {
	pf := &PatchesFrame{
		Seq:     1,
		Patches: []Patch{NewSetTextPatch("v1", 0, "Hello, World!")},
	}
	data := EncodePatches(pf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodePatches(data)
	}
}

func BenchmarkPatch_EncodeMixed(b *testing.B) {
	// The shape of a typical list reorder plus a form update.
	pf := &PatchesFrame{
		Seq: 1,
		Patches: []Patch{
			NewMoveNodePatch("v4", 3, "v4", 0),
			NewSetAttrPatch("v7", "class", "selected"),
			NewRemoveAttrPatch("v9", "disabled"),
			NewSetTextPatch("v4", 0, "first"),
			NewSetValuePatch("v12", "typed text"),
		},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodePatches(pf)
	}
}

func BenchmarkPatch_DecodeMixed(b *testing.B) {
	pf := &PatchesFrame{
		Seq: 1,
		Patches: []Patch{
			NewMoveNodePatch("v4", 3, "v4", 0),
			NewSetAttrPatch("v7", "class", "selected"),
			NewRemoveAttrPatch("v9", "disabled"),
			NewSetTextPatch("v4", 0, "first"),
			NewSetValuePatch("v12", "typed text"),
		},
	}
	data := EncodePatches(pf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodePatches(data)
	}
}

func BenchmarkPatch_EncodeInsertHTML(b *testing.B) {
	pf := &PatchesFrame{
		Seq: 1,
		Patches: []Patch{
			NewInsertBeforePatch("v2", 5,
				`<li data-hid="v31" class="todo-item"><span data-hid="v32">Buy milk</span><button data-hid="v33" data-on="click">Done</button></li>`),
		},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodePatches(pf)
	}
}

// === Handshake ===

func BenchmarkHandshake_EncodeClientHello(b *testing.B) {
	ch := &ClientHello{
		Version:   CurrentVersion,
		SessionID: "session-12345",
		LastSeq:   42,
		ViewportW: 1920,
		ViewportH: 1080,
		TZOffset:  -480,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeClientHello(ch)
	}
}

func BenchmarkHandshake_DecodeClientHello(b *testing.B) {
	ch := &ClientHello{
		Version:   CurrentVersion,
		SessionID: "session-12345",
		LastSeq:   42,
		ViewportW: 1920,
		ViewportH: 1080,
		TZOffset:  -480,
	}
	data := EncodeClientHello(ch)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeClientHello(data)
	}
}
