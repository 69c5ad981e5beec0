package protocol

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing          ControlType = 0x01
	ControlPong          ControlType = 0x02
	ControlResyncRequest ControlType = 0x10 // Client asks for missed patches
	ControlResyncPatches ControlType = 0x11 // Server replies with missed patches
	ControlResyncFull    ControlType = 0x12 // Server replies with a full tree reload
	ControlClose         ControlType = 0x20
)

// String returns the control type's name.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlResyncRequest:
		return "ResyncRequest"
	case ControlResyncPatches:
		return "ResyncPatches"
	case ControlResyncFull:
		return "ResyncFull"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// CloseReason says why a session is closing.
type CloseReason uint8

const (
	CloseNormal         CloseReason = 0x00
	CloseGoingAway      CloseReason = 0x01
	CloseSessionExpired CloseReason = 0x02
	CloseServerShutdown CloseReason = 0x03
	CloseError          CloseReason = 0x04
)

// String returns the close reason's name.
func (cr CloseReason) String() string {
	switch cr {
	case CloseNormal:
		return "Normal"
	case CloseGoingAway:
		return "GoingAway"
	case CloseSessionExpired:
		return "SessionExpired"
	case CloseServerShutdown:
		return "ServerShutdown"
	case CloseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// PingPong is the payload for Ping and Pong.
type PingPong struct {
	Timestamp uint64 // unix milliseconds
}

// ResyncRequest asks the server for every patch after LastSeq.
type ResyncRequest struct {
	LastSeq uint64
}

// ResyncResponse answers a resync request, either with the missed
// patches or with a full tree when the gap is too large to replay.
type ResyncResponse struct {
	Type    ControlType // ResyncPatches or ResyncFull
	FromSeq uint64      // first sequence in Patches
	Patches []Patch
	HTML    string // rendered tree for ResyncFull
}

// CloseMessage announces a session close.
type CloseMessage struct {
	Reason  CloseReason
	Message string
}

// EncodeControl encodes a control message to bytes.
func EncodeControl(ct ControlType, payload any) []byte {
	e := NewEncoder()
	EncodeControlTo(e, ct, payload)
	return e.Bytes()
}

// EncodeControlTo encodes a control message through the given encoder.
// A payload of the wrong type for ct encodes as its zero value.
func EncodeControlTo(e *Encoder, ct ControlType, payload any) {
	e.WriteByte(byte(ct))

	switch ct {
	case ControlPing, ControlPong:
		if pp, ok := payload.(*PingPong); ok {
			e.WriteUint64(pp.Timestamp)
		} else {
			e.WriteUint64(0)
		}

	case ControlResyncRequest:
		if rr, ok := payload.(*ResyncRequest); ok {
			e.WriteUvarint(rr.LastSeq)
		} else {
			e.WriteUvarint(0)
		}

	case ControlResyncPatches:
		if rr, ok := payload.(*ResyncResponse); ok {
			e.WriteUvarint(rr.FromSeq)
			e.WriteUvarint(uint64(len(rr.Patches)))
			for i := range rr.Patches {
				encodePatch(e, &rr.Patches[i])
			}
		} else {
			e.WriteUvarint(0)
			e.WriteUvarint(0)
		}

	case ControlResyncFull:
		if rr, ok := payload.(*ResyncResponse); ok {
			e.WriteString(rr.HTML)
		} else {
			e.WriteString("")
		}

	case ControlClose:
		if cm, ok := payload.(*CloseMessage); ok {
			e.WriteByte(byte(cm.Reason))
			e.WriteString(cm.Message)
		} else {
			e.WriteByte(byte(CloseNormal))
			e.WriteString("")
		}
	}
}

// DecodeControl decodes a control message from bytes, returning the
// control type and its payload.
func DecodeControl(data []byte) (ControlType, any, error) {
	return DecodeControlFrom(NewDecoder(data))
}

// DecodeControlFrom decodes a control message from a decoder. Unknown
// control types decode to a nil payload without error so that peers a
// minor version ahead remain usable.
func DecodeControlFrom(d *Decoder) (ControlType, any, error) {
	typeByte, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ct := ControlType(typeByte)

	switch ct {
	case ControlPing, ControlPong:
		ts, err := d.ReadUint64()
		if err != nil {
			return ct, nil, err
		}
		return ct, &PingPong{Timestamp: ts}, nil

	case ControlResyncRequest:
		lastSeq, err := d.ReadUvarint()
		if err != nil {
			return ct, nil, err
		}
		return ct, &ResyncRequest{LastSeq: lastSeq}, nil

	case ControlResyncPatches:
		fromSeq, err := d.ReadUvarint()
		if err != nil {
			return ct, nil, err
		}
		count, err := d.ReadCollectionCount()
		if err != nil {
			return ct, nil, err
		}
		patches := make([]Patch, count)
		for i := 0; i < count; i++ {
			if err := decodePatch(d, &patches[i]); err != nil {
				return ct, nil, err
			}
		}
		return ct, &ResyncResponse{
			Type:    ControlResyncPatches,
			FromSeq: fromSeq,
			Patches: patches,
		}, nil

	case ControlResyncFull:
		html, err := d.ReadString()
		if err != nil {
			return ct, nil, err
		}
		return ct, &ResyncResponse{
			Type: ControlResyncFull,
			HTML: html,
		}, nil

	case ControlClose:
		reason, err := d.ReadByte()
		if err != nil {
			return ct, nil, err
		}
		message, err := d.ReadString()
		if err != nil {
			return ct, nil, err
		}
		return ct, &CloseMessage{
			Reason:  CloseReason(reason),
			Message: message,
		}, nil

	default:
		return ct, nil, nil
	}
}

// NewPing creates a Ping message.
func NewPing(timestamp uint64) (ControlType, *PingPong) {
	return ControlPing, &PingPong{Timestamp: timestamp}
}

// NewPong creates a Pong message.
func NewPong(timestamp uint64) (ControlType, *PingPong) {
	return ControlPong, &PingPong{Timestamp: timestamp}
}

// NewResyncRequest creates a ResyncRequest message.
func NewResyncRequest(lastSeq uint64) (ControlType, *ResyncRequest) {
	return ControlResyncRequest, &ResyncRequest{LastSeq: lastSeq}
}

// NewResyncPatches creates a ResyncPatches response.
func NewResyncPatches(fromSeq uint64, patches []Patch) (ControlType, *ResyncResponse) {
	return ControlResyncPatches, &ResyncResponse{
		Type:    ControlResyncPatches,
		FromSeq: fromSeq,
		Patches: patches,
	}
}

// NewResyncFull creates a ResyncFull response.
func NewResyncFull(html string) (ControlType, *ResyncResponse) {
	return ControlResyncFull, &ResyncResponse{
		Type: ControlResyncFull,
		HTML: html,
	}
}

// NewClose creates a Close message.
func NewClose(reason CloseReason, message string) (ControlType, *CloseMessage) {
	return ControlClose, &CloseMessage{Reason: reason, Message: message}
}
