package protocol

import "errors"

// PatchOp is the kind of DOM operation a patch performs.
type PatchOp uint8

// Patch operations.
//
// Structural operations (SetText, InsertBefore, RemoveNode, MoveNode,
// ReplaceNode) address a child slot: HID names the parent element and
// Index the position in its child list. Attribute and form operations
// (SetAttr, RemoveAttr, SetValue, SetChecked, Focus, Blur) address the
// element itself. Text and comment nodes carry no attributes and so no
// hydration IDs of their own; the slot addressing is what makes them
// reachable.
const (
	PatchSetText      PatchOp = 0x01 // Replace the text of the child at Index
	PatchSetAttr      PatchOp = 0x02 // Set an attribute on the element
	PatchRemoveAttr   PatchOp = 0x03 // Remove an attribute from the element
	PatchInsertBefore PatchOp = 0x04 // Insert an HTML fragment before the child at Index
	PatchRemoveNode   PatchOp = 0x05 // Remove the child at Index
	PatchMoveNode     PatchOp = 0x06 // Move an element to a new slot
	PatchReplaceNode  PatchOp = 0x07 // Replace the child at Index with an HTML fragment
	PatchSetValue     PatchOp = 0x08 // Set a form control's current value
	PatchSetChecked   PatchOp = 0x09 // Set a checkbox/radio checked state
	PatchFocus        PatchOp = 0x0A // Focus the element
	PatchBlur         PatchOp = 0x0B // Blur the element
)

// String returns the operation's name.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertBefore:
		return "InsertBefore"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchSetValue:
		return "SetValue"
	case PatchSetChecked:
		return "SetChecked"
	case PatchFocus:
		return "Focus"
	case PatchBlur:
		return "Blur"
	default:
		return "Unknown"
	}
}

// ErrUnknownPatchOp is returned when a patch carries an operation this
// version does not understand. Unknown operations cannot be skipped;
// their payload length is not self-describing.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// Patch is a single DOM operation. Which fields are meaningful depends
// on Op; the constructors populate exactly the right ones.
//
// An empty HID addresses the session root element.
type Patch struct {
	Op       PatchOp
	HID      string // target element, or parent element for child slots
	Key      string // attribute name
	Value    string // text or attribute value
	HTML     string // rendered fragment for InsertBefore and ReplaceNode
	ParentID string // destination parent for MoveNode
	Index    int    // child index under HID
	ToIndex  int    // destination child index for MoveNode
	Bool     bool   // checked state for SetChecked
}

// PatchesFrame is one flush worth of patches, applied in order under a
// single sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame through the given encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	e.WriteString(p.HID)

	switch p.Op {
	case PatchSetText:
		e.WriteUvarint(uint64(p.Index))
		e.WriteString(p.Value)

	case PatchSetAttr:
		e.WriteString(p.Key)
		e.WriteString(p.Value)

	case PatchRemoveAttr:
		e.WriteString(p.Key)

	case PatchInsertBefore:
		e.WriteUvarint(uint64(p.Index))
		e.WriteString(p.HTML)

	case PatchRemoveNode:
		e.WriteUvarint(uint64(p.Index))

	case PatchMoveNode:
		e.WriteUvarint(uint64(p.Index))
		e.WriteString(p.ParentID)
		e.WriteUvarint(uint64(p.ToIndex))

	case PatchReplaceNode:
		e.WriteUvarint(uint64(p.Index))
		e.WriteString(p.HTML)

	case PatchSetValue:
		e.WriteString(p.Value)

	case PatchSetChecked:
		e.WriteBool(p.Bool)

	case PatchFocus, PatchBlur:
		// HID is the whole payload.
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	return DecodePatchesFrom(NewDecoder(data))
}

// DecodePatchesFrom decodes a patches frame from a decoder.
func DecodePatchesFrom(d *Decoder) (*PatchesFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := 0; i < count; i++ {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}

	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(opByte)

	p.HID, err = d.ReadString()
	if err != nil {
		return err
	}

	switch p.Op {
	case PatchSetText:
		var idx uint64
		idx, err = d.ReadUvarint()
		if err != nil {
			return err
		}
		p.Index = int(idx)
		p.Value, err = d.ReadString()

	case PatchSetAttr:
		p.Key, err = d.ReadString()
		if err != nil {
			return err
		}
		p.Value, err = d.ReadString()

	case PatchRemoveAttr:
		p.Key, err = d.ReadString()

	case PatchInsertBefore:
		var idx uint64
		idx, err = d.ReadUvarint()
		if err != nil {
			return err
		}
		p.Index = int(idx)
		p.HTML, err = d.ReadString()

	case PatchRemoveNode:
		var idx uint64
		idx, err = d.ReadUvarint()
		p.Index = int(idx)

	case PatchMoveNode:
		var idx uint64
		idx, err = d.ReadUvarint()
		if err != nil {
			return err
		}
		p.Index = int(idx)
		p.ParentID, err = d.ReadString()
		if err != nil {
			return err
		}
		idx, err = d.ReadUvarint()
		p.ToIndex = int(idx)

	case PatchReplaceNode:
		var idx uint64
		idx, err = d.ReadUvarint()
		if err != nil {
			return err
		}
		p.Index = int(idx)
		p.HTML, err = d.ReadString()

	case PatchSetValue:
		p.Value, err = d.ReadString()

	case PatchSetChecked:
		p.Bool, err = d.ReadBool()

	case PatchFocus, PatchBlur:
		// No payload beyond the HID.

	default:
		return ErrUnknownPatchOp
	}

	return err
}

// NewSetTextPatch replaces the text of parent's child at index.
func NewSetTextPatch(parent string, index int, text string) Patch {
	return Patch{Op: PatchSetText, HID: parent, Index: index, Value: text}
}

// NewSetAttrPatch sets an attribute on the element hid.
func NewSetAttrPatch(hid, key, value string) Patch {
	return Patch{Op: PatchSetAttr, HID: hid, Key: key, Value: value}
}

// NewRemoveAttrPatch removes an attribute from the element hid.
func NewRemoveAttrPatch(hid, key string) Patch {
	return Patch{Op: PatchRemoveAttr, HID: hid, Key: key}
}

// NewInsertBeforePatch inserts an HTML fragment into parent before the
// child at index; index equal to the child count appends.
func NewInsertBeforePatch(parent string, index int, html string) Patch {
	return Patch{Op: PatchInsertBefore, HID: parent, Index: index, HTML: html}
}

// NewRemoveNodePatch removes parent's child at index.
func NewRemoveNodePatch(parent string, index int) Patch {
	return Patch{Op: PatchRemoveNode, HID: parent, Index: index}
}

// NewMoveNodePatch moves parent's child at index into toParent before
// the child at toIndex. Both indexes are read against the tree as it
// stands when the patch is applied, with the moved node still in
// place.
func NewMoveNodePatch(parent string, index int, toParent string, toIndex int) Patch {
	return Patch{Op: PatchMoveNode, HID: parent, Index: index, ParentID: toParent, ToIndex: toIndex}
}

// NewReplaceNodePatch replaces parent's child at index with an HTML
// fragment.
func NewReplaceNodePatch(parent string, index int, html string) Patch {
	return Patch{Op: PatchReplaceNode, HID: parent, Index: index, HTML: html}
}

// NewSetValuePatch sets the current value of the form control hid.
func NewSetValuePatch(hid, value string) Patch {
	return Patch{Op: PatchSetValue, HID: hid, Value: value}
}

// NewSetCheckedPatch sets the checked state of the control hid.
func NewSetCheckedPatch(hid string, checked bool) Patch {
	return Patch{Op: PatchSetChecked, HID: hid, Bool: checked}
}

// NewFocusPatch focuses the element hid.
func NewFocusPatch(hid string) Patch {
	return Patch{Op: PatchFocus, HID: hid}
}

// NewBlurPatch blurs the element hid.
func NewBlurPatch(hid string) Patch {
	return Patch{Op: PatchBlur, HID: hid}
}
