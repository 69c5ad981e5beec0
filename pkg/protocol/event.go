package protocol

import (
	"errors"
	"sort"
)

// EventType identifies which DOM event fired on the client.
type EventType uint8

// Event types, grouped by payload shape. The numbering leaves gaps so
// each group can grow without renumbering.
const (
	// Mouse events.
	EventClick      EventType = 0x01
	EventDblClick   EventType = 0x02
	EventMouseDown  EventType = 0x03
	EventMouseUp    EventType = 0x04
	EventMouseEnter EventType = 0x05
	EventMouseLeave EventType = 0x06

	// Form events.
	EventInput  EventType = 0x10
	EventChange EventType = 0x11
	EventSubmit EventType = 0x12
	EventFocus  EventType = 0x13
	EventBlur   EventType = 0x14

	// Keyboard events.
	EventKeyDown EventType = 0x20
	EventKeyUp   EventType = 0x21

	// Document events.
	EventScroll EventType = 0x30
	EventLoad   EventType = 0x31

	// Application-defined events carry their own name.
	EventCustom EventType = 0xFF
)

// String returns the event type's name.
func (t EventType) String() string {
	switch t {
	case EventClick:
		return "Click"
	case EventDblClick:
		return "DblClick"
	case EventMouseDown:
		return "MouseDown"
	case EventMouseUp:
		return "MouseUp"
	case EventMouseEnter:
		return "MouseEnter"
	case EventMouseLeave:
		return "MouseLeave"
	case EventInput:
		return "Input"
	case EventChange:
		return "Change"
	case EventSubmit:
		return "Submit"
	case EventFocus:
		return "Focus"
	case EventBlur:
		return "Blur"
	case EventKeyDown:
		return "KeyDown"
	case EventKeyUp:
		return "KeyUp"
	case EventScroll:
		return "Scroll"
	case EventLoad:
		return "Load"
	case EventCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// DOMName returns the DOM event name this type corresponds to, the
// same name listeners are registered under. Custom events carry their
// name in the payload, so DOMName returns "" for them.
func (t EventType) DOMName() string {
	switch t {
	case EventClick:
		return "click"
	case EventDblClick:
		return "dblclick"
	case EventMouseDown:
		return "mousedown"
	case EventMouseUp:
		return "mouseup"
	case EventMouseEnter:
		return "mouseenter"
	case EventMouseLeave:
		return "mouseleave"
	case EventInput:
		return "input"
	case EventChange:
		return "change"
	case EventSubmit:
		return "submit"
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	case EventKeyDown:
		return "keydown"
	case EventKeyUp:
		return "keyup"
	case EventScroll:
		return "scroll"
	case EventLoad:
		return "load"
	default:
		return ""
	}
}

// EventTypeForName maps a DOM event name to its wire type. Names with
// no dedicated type map to EventCustom.
func EventTypeForName(name string) EventType {
	switch name {
	case "click":
		return EventClick
	case "dblclick":
		return EventDblClick
	case "mousedown":
		return EventMouseDown
	case "mouseup":
		return EventMouseUp
	case "mouseenter":
		return EventMouseEnter
	case "mouseleave":
		return EventMouseLeave
	case "input":
		return EventInput
	case "change":
		return EventChange
	case "submit":
		return EventSubmit
	case "focus":
		return EventFocus
	case "blur":
		return EventBlur
	case "keydown":
		return EventKeyDown
	case "keyup":
		return EventKeyUp
	case "scroll":
		return EventScroll
	case "load":
		return EventLoad
	default:
		return EventCustom
	}
}

// Modifiers is a bitmask of modifier keys held when an event fired.
type Modifiers uint8

// Modifier keys.
const (
	ModCtrl  Modifiers = 0x01
	ModShift Modifiers = 0x02
	ModAlt   Modifiers = 0x04
	ModMeta  Modifiers = 0x08
)

// Has reports whether all of the given modifiers are set.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// MouseEventData is the payload for MouseDown and MouseUp.
type MouseEventData struct {
	ClientX   int
	ClientY   int
	Button    uint8
	Modifiers Modifiers
}

// KeyboardEventData is the payload for KeyDown and KeyUp.
type KeyboardEventData struct {
	Key       string
	Code      string
	Modifiers Modifiers
	Repeat    bool
}

// SubmitEventData is the payload for Submit: the form's fields keyed
// by control name.
type SubmitEventData struct {
	Fields map[string]string
}

// ScrollEventData is the payload for Scroll.
type ScrollEventData struct {
	ScrollTop  int
	ScrollLeft int
}

// CustomEventData is the payload for Custom events. Data is opaque to
// the protocol; the application decides its encoding.
type CustomEventData struct {
	Name string
	Data []byte
}

// ErrInvalidEventType is returned when an event carries a type this
// version does not understand.
var ErrInvalidEventType = errors.New("protocol: invalid event type")

// Event is a client interaction to be dispatched to the listener
// registered on the element HID.
//
// Payload depends on Type: MouseDown and MouseUp carry
// *MouseEventData, KeyDown and KeyUp carry *KeyboardEventData, Input
// and Change carry the control's value as a string, Submit carries
// *SubmitEventData, Scroll carries *ScrollEventData, Custom carries
// *CustomEventData, and the rest carry nil.
type Event struct {
	Seq     uint64
	Type    EventType
	HID     string
	Payload any
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an event through the given encoder. A payload
// of the wrong type for the event encodes as that payload's zero
// value.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Seq)
	e.WriteByte(byte(ev.Type))
	e.WriteString(ev.HID)

	switch ev.Type {
	case EventMouseDown, EventMouseUp:
		data, _ := ev.Payload.(*MouseEventData)
		if data == nil {
			data = &MouseEventData{}
		}
		e.WriteSvarint(int64(data.ClientX))
		e.WriteSvarint(int64(data.ClientY))
		e.WriteByte(data.Button)
		e.WriteByte(byte(data.Modifiers))

	case EventKeyDown, EventKeyUp:
		data, _ := ev.Payload.(*KeyboardEventData)
		if data == nil {
			data = &KeyboardEventData{}
		}
		e.WriteString(data.Key)
		e.WriteString(data.Code)
		e.WriteByte(byte(data.Modifiers))
		e.WriteBool(data.Repeat)

	case EventInput, EventChange:
		value, _ := ev.Payload.(string)
		e.WriteString(value)

	case EventSubmit:
		data, _ := ev.Payload.(*SubmitEventData)
		if data == nil {
			data = &SubmitEventData{}
		}
		names := make([]string, 0, len(data.Fields))
		for name := range data.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		e.WriteUvarint(uint64(len(names)))
		for _, name := range names {
			e.WriteString(name)
			e.WriteString(data.Fields[name])
		}

	case EventScroll:
		data, _ := ev.Payload.(*ScrollEventData)
		if data == nil {
			data = &ScrollEventData{}
		}
		e.WriteSvarint(int64(data.ScrollTop))
		e.WriteSvarint(int64(data.ScrollLeft))

	case EventCustom:
		data, _ := ev.Payload.(*CustomEventData)
		if data == nil {
			data = &CustomEventData{}
		}
		e.WriteString(data.Name)
		e.WriteLenBytes(data.Data)
	}
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	return DecodeEventFrom(NewDecoder(data))
}

// DecodeEventFrom decodes an event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	typeByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	hid, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	ev := &Event{Seq: seq, Type: EventType(typeByte), HID: hid}

	switch ev.Type {
	case EventClick, EventDblClick, EventMouseEnter, EventMouseLeave,
		EventFocus, EventBlur, EventLoad:
		// No payload.

	case EventMouseDown, EventMouseUp:
		data := &MouseEventData{}
		x, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		y, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		data.ClientX = int(x)
		data.ClientY = int(y)
		button, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		data.Button = button
		mods, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		data.Modifiers = Modifiers(mods)
		ev.Payload = data

	case EventKeyDown, EventKeyUp:
		data := &KeyboardEventData{}
		if data.Key, err = d.ReadString(); err != nil {
			return nil, err
		}
		if data.Code, err = d.ReadString(); err != nil {
			return nil, err
		}
		mods, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		data.Modifiers = Modifiers(mods)
		if data.Repeat, err = d.ReadBool(); err != nil {
			return nil, err
		}
		ev.Payload = data

	case EventInput, EventChange:
		value, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		ev.Payload = value

	case EventSubmit:
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		data := &SubmitEventData{Fields: make(map[string]string, count)}
		for i := 0; i < count; i++ {
			name, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			value, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			data.Fields[name] = value
		}
		ev.Payload = data

	case EventScroll:
		data := &ScrollEventData{}
		top, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		left, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		data.ScrollTop = int(top)
		data.ScrollLeft = int(left)
		ev.Payload = data

	case EventCustom:
		data := &CustomEventData{}
		if data.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if data.Data, err = d.ReadLenBytes(); err != nil {
			return nil, err
		}
		ev.Payload = data

	default:
		return nil, ErrInvalidEventType
	}

	return ev, nil
}
