package protocol

import (
	"errors"
	"testing"
)

func TestEventEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
	}{
		{
			name: "click",
			event: &Event{
				Seq:  1,
				Type: EventClick,
				HID:  "v1",
			},
		},
		{
			name: "dblclick",
			event: &Event{
				Seq:  2,
				Type: EventDblClick,
				HID:  "v42",
			},
		},
		{
			name: "mouseenter",
			event: &Event{
				Seq:  3,
				Type: EventMouseEnter,
				HID:  "v3",
			},
		},
		{
			name: "input",
			event: &Event{
				Seq:     4,
				Type:    EventInput,
				HID:     "v5",
				Payload: "hello world",
			},
		},
		{
			name: "change",
			event: &Event{
				Seq:     5,
				Type:    EventChange,
				HID:     "v6",
				Payload: "new value",
			},
		},
		{
			name: "submit",
			event: &Event{
				Seq:  6,
				Type: EventSubmit,
				HID:  "v7",
				Payload: &SubmitEventData{
					Fields: map[string]string{
						"name":  "John",
						"email": "john@example.com",
					},
				},
			},
		},
		{
			name: "keydown",
			event: &Event{
				Seq:  7,
				Type: EventKeyDown,
				HID:  "v8",
				Payload: &KeyboardEventData{
					Key:       "Enter",
					Code:      "Enter",
					Modifiers: ModCtrl | ModShift,
				},
			},
		},
		{
			name: "keyup_repeat",
			event: &Event{
				Seq:  8,
				Type: EventKeyUp,
				HID:  "v9",
				Payload: &KeyboardEventData{
					Key:    "a",
					Code:   "KeyA",
					Repeat: true,
				},
			},
		},
		{
			name: "mousedown",
			event: &Event{
				Seq:  9,
				Type: EventMouseDown,
				HID:  "v10",
				Payload: &MouseEventData{
					ClientX:   100,
					ClientY:   200,
					Button:    0,
					Modifiers: ModAlt,
				},
			},
		},
		{
			name: "mouseup_negative_coords",
			event: &Event{
				Seq:  10,
				Type: EventMouseUp,
				HID:  "v11",
				Payload: &MouseEventData{
					ClientX:   -50,
					ClientY:   -100,
					Button:    2,
					Modifiers: ModMeta,
				},
			},
		},
		{
			name: "scroll",
			event: &Event{
				Seq:  11,
				Type: EventScroll,
				HID:  "v12",
				Payload: &ScrollEventData{
					ScrollTop:  500,
					ScrollLeft: 100,
				},
			},
		},
		{
			name: "load",
			event: &Event{
				Seq:  12,
				Type: EventLoad,
				HID:  "v13",
			},
		},
		{
			name: "custom",
			event: &Event{
				Seq:  13,
				Type: EventCustom,
				HID:  "v14",
				Payload: &CustomEventData{
					Name: "my-event",
					Data: []byte{0x01, 0x02, 0x03},
				},
			},
		},
		{
			name: "focus",
			event: &Event{
				Seq:  14,
				Type: EventFocus,
				HID:  "v15",
			},
		},
		{
			name: "blur",
			event: &Event{
				Seq:  15,
				Type: EventBlur,
				HID:  "v16",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeEvent(tc.event)
			if len(encoded) == 0 {
				t.Fatal("Encoded event is empty")
			}

			decoded, err := DecodeEvent(encoded)
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}

			if decoded.Seq != tc.event.Seq {
				t.Errorf("Seq = %d, want %d", decoded.Seq, tc.event.Seq)
			}
			if decoded.Type != tc.event.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tc.event.Type)
			}
			if decoded.HID != tc.event.HID {
				t.Errorf("HID = %q, want %q", decoded.HID, tc.event.HID)
			}

			verifyPayload(t, decoded.Payload, tc.event.Payload)
		})
	}
}

func verifyPayload(t *testing.T, got, want any) {
	t.Helper()

	if want == nil {
		if got != nil {
			t.Errorf("Payload = %v, want nil", got)
		}
		return
	}

	switch w := want.(type) {
	case string:
		if g, ok := got.(string); !ok || g != w {
			t.Errorf("Payload = %v, want %q", got, w)
		}

	case *SubmitEventData:
		g, ok := got.(*SubmitEventData)
		if !ok {
			t.Errorf("Payload type = %T, want *SubmitEventData", got)
			return
		}
		if len(g.Fields) != len(w.Fields) {
			t.Errorf("Fields count = %d, want %d", len(g.Fields), len(w.Fields))
			return
		}
		for k, v := range w.Fields {
			if g.Fields[k] != v {
				t.Errorf("Field[%q] = %q, want %q", k, g.Fields[k], v)
			}
		}

	case *KeyboardEventData:
		g, ok := got.(*KeyboardEventData)
		if !ok {
			t.Errorf("Payload type = %T, want *KeyboardEventData", got)
			return
		}
		if g.Key != w.Key {
			t.Errorf("Key = %q, want %q", g.Key, w.Key)
		}
		if g.Code != w.Code {
			t.Errorf("Code = %q, want %q", g.Code, w.Code)
		}
		if g.Modifiers != w.Modifiers {
			t.Errorf("Modifiers = %v, want %v", g.Modifiers, w.Modifiers)
		}
		if g.Repeat != w.Repeat {
			t.Errorf("Repeat = %v, want %v", g.Repeat, w.Repeat)
		}

	case *MouseEventData:
		g, ok := got.(*MouseEventData)
		if !ok {
			t.Errorf("Payload type = %T, want *MouseEventData", got)
			return
		}
		if g.ClientX != w.ClientX || g.ClientY != w.ClientY {
			t.Errorf("Position = (%d,%d), want (%d,%d)", g.ClientX, g.ClientY, w.ClientX, w.ClientY)
		}
		if g.Button != w.Button {
			t.Errorf("Button = %d, want %d", g.Button, w.Button)
		}
		if g.Modifiers != w.Modifiers {
			t.Errorf("Modifiers = %v, want %v", g.Modifiers, w.Modifiers)
		}

	case *ScrollEventData:
		g, ok := got.(*ScrollEventData)
		if !ok {
			t.Errorf("Payload type = %T, want *ScrollEventData", got)
			return
		}
		if g.ScrollTop != w.ScrollTop || g.ScrollLeft != w.ScrollLeft {
			t.Errorf("Scroll = (%d,%d), want (%d,%d)", g.ScrollTop, g.ScrollLeft, w.ScrollTop, w.ScrollLeft)
		}

	case *CustomEventData:
		g, ok := got.(*CustomEventData)
		if !ok {
			t.Errorf("Payload type = %T, want *CustomEventData", got)
			return
		}
		if g.Name != w.Name {
			t.Errorf("Name = %q, want %q", g.Name, w.Name)
		}
		if string(g.Data) != string(w.Data) {
			t.Errorf("Data = %v, want %v", g.Data, w.Data)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		et   EventType
		want string
	}{
		{EventClick, "Click"},
		{EventDblClick, "DblClick"},
		{EventMouseDown, "MouseDown"},
		{EventMouseUp, "MouseUp"},
		{EventMouseEnter, "MouseEnter"},
		{EventMouseLeave, "MouseLeave"},
		{EventInput, "Input"},
		{EventChange, "Change"},
		{EventSubmit, "Submit"},
		{EventFocus, "Focus"},
		{EventBlur, "Blur"},
		{EventKeyDown, "KeyDown"},
		{EventKeyUp, "KeyUp"},
		{EventScroll, "Scroll"},
		{EventLoad, "Load"},
		{EventCustom, "Custom"},
		{EventType(0x99), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.et.String(); got != tc.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tc.et, got, tc.want)
		}
	}
}

func TestEventTypeDOMName(t *testing.T) {
	// Every named type must map to a DOM name and back to itself.
	types := []EventType{
		EventClick, EventDblClick, EventMouseDown, EventMouseUp,
		EventMouseEnter, EventMouseLeave, EventInput, EventChange,
		EventSubmit, EventFocus, EventBlur, EventKeyDown, EventKeyUp,
		EventScroll, EventLoad,
	}

	for _, et := range types {
		name := et.DOMName()
		if name == "" {
			t.Errorf("%v.DOMName() = \"\", want a DOM event name", et)
			continue
		}
		if back := EventTypeForName(name); back != et {
			t.Errorf("EventTypeForName(%q) = %v, want %v", name, back, et)
		}
	}

	if got := EventCustom.DOMName(); got != "" {
		t.Errorf("EventCustom.DOMName() = %q, want \"\"", got)
	}
	if got := EventTypeForName("sortable:reorder"); got != EventCustom {
		t.Errorf("EventTypeForName(unknown) = %v, want EventCustom", got)
	}
}

func TestModifiersHas(t *testing.T) {
	mods := ModCtrl | ModShift

	if !mods.Has(ModCtrl) {
		t.Error("Has(ModCtrl) = false, want true")
	}
	if !mods.Has(ModShift) {
		t.Error("Has(ModShift) = false, want true")
	}
	if !mods.Has(ModCtrl | ModShift) {
		t.Error("Has(ModCtrl|ModShift) = false, want true")
	}
	if mods.Has(ModAlt) {
		t.Error("Has(ModAlt) = true, want false")
	}
	if mods.Has(ModMeta) {
		t.Error("Has(ModMeta) = true, want false")
	}
	if mods.Has(ModCtrl | ModAlt) {
		t.Error("Has(ModCtrl|ModAlt) = true, want false")
	}
}

func TestDecodeEventInvalidType(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteByte(0x99) // no such event type
	e.WriteString("v1")

	_, err := DecodeEvent(e.Bytes())
	if !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("DecodeEvent() error = %v, want ErrInvalidEventType", err)
	}
}

func TestEventEncodingSize(t *testing.T) {
	// Clicks are the hot path; keep them under 10 bytes.
	click := &Event{
		Seq:  1,
		Type: EventClick,
		HID:  "v1",
	}
	encoded := EncodeEvent(click)
	if len(encoded) > 10 {
		t.Errorf("Click event size = %d bytes, want <= 10", len(encoded))
	}

	input := &Event{
		Seq:     1,
		Type:    EventInput,
		HID:     "v5",
		Payload: "hello",
	}
	encoded = EncodeEvent(input)
	if len(encoded) > 15 {
		t.Errorf("Short input event size = %d bytes, want <= 15", len(encoded))
	}
}

func TestEmptySubmitPayload(t *testing.T) {
	event := &Event{
		Seq:     1,
		Type:    EventSubmit,
		HID:     "v1",
		Payload: &SubmitEventData{Fields: map[string]string{}},
	}

	encoded := EncodeEvent(event)
	decoded, err := DecodeEvent(encoded)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	submitData := decoded.Payload.(*SubmitEventData)
	if len(submitData.Fields) != 0 {
		t.Errorf("Fields count = %d, want 0", len(submitData.Fields))
	}
}

func TestWrongPayloadTypeEncodesZero(t *testing.T) {
	// A mismatched payload encodes as the zero payload for the type
	// rather than corrupting the stream.
	event := &Event{
		Seq:     1,
		Type:    EventKeyDown,
		HID:     "v1",
		Payload: "not keyboard data",
	}

	encoded := EncodeEvent(event)
	decoded, err := DecodeEvent(encoded)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	kb, ok := decoded.Payload.(*KeyboardEventData)
	if !ok {
		t.Fatalf("Payload type = %T, want *KeyboardEventData", decoded.Payload)
	}
	if kb.Key != "" || kb.Code != "" || kb.Modifiers != 0 || kb.Repeat {
		t.Errorf("Payload = %+v, want zero value", kb)
	}
}

func BenchmarkEncodeClickEvent(b *testing.B) {
	event := &Event{
		Seq:  1,
		Type: EventClick,
		HID:  "v42",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(event)
	}
}

func BenchmarkDecodeClickEvent(b *testing.B) {
	event := &Event{
		Seq:  1,
		Type: EventClick,
		HID:  "v42",
	}
	encoded := EncodeEvent(event)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeEvent(encoded)
	}
}

func BenchmarkEncodeInputEvent(b *testing.B) {
	event := &Event{
		Seq:     1,
		Type:    EventInput,
		HID:     "v5",
		Payload: "hello world",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(event)
	}
}

func BenchmarkDecodeInputEvent(b *testing.B) {
	event := &Event{
		Seq:     1,
		Type:    EventInput,
		HID:     "v5",
		Payload: "hello world",
	}
	encoded := EncodeEvent(event)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeEvent(encoded)
	}
}

func BenchmarkEncodeSubmitEvent(b *testing.B) {
	event := &Event{
		Seq:  1,
		Type: EventSubmit,
		HID:  "v7",
		Payload: &SubmitEventData{
			Fields: map[string]string{
				"name":     "John Doe",
				"email":    "john@example.com",
				"password": "secret123",
				"confirm":  "secret123",
				"terms":    "on",
			},
		},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeEvent(event)
	}
}

func BenchmarkDecodeSubmitEvent(b *testing.B) {
	event := &Event{
		Seq:  1,
		Type: EventSubmit,
		HID:  "v7",
		Payload: &SubmitEventData{
			Fields: map[string]string{
				"name":     "John Doe",
				"email":    "john@example.com",
				"password": "secret123",
				"confirm":  "secret123",
				"terms":    "on",
			},
		},
	}
	encoded := EncodeEvent(event)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeEvent(encoded)
	}
}
