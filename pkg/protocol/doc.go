// Package protocol implements the binary wire protocol between a live
// session and its browser counterpart.
//
// The protocol carries DOM patches from server to client and user events
// from client to server over a single WebSocket connection. It is built
// for small messages and allocation-free encoding; a typical event is
// under 10 bytes and a typical patch under 30.
//
// # Wire Format
//
// Every message is framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// When the FlagChecksum flag is set, the payload is followed by an
// 8-byte big-endian xxhash64 of the payload. Payloads larger than
// MaxPayloadSize are fragmented with SplitPayload and reassembled with
// a FrameAssembler; every fragment except the last carries FlagPartial.
//
// # Frame Types
//
//   - FrameHandshake (0x00): Connection setup
//   - FrameEvent (0x01): Client → Server events
//   - FramePatches (0x02): Server → Client patches
//   - FrameControl (0x03): Control messages (ping, resync, close)
//   - FrameAck (0x04): Acknowledgment
//   - FrameError (0x05): Error message
//
// # Encoding
//
// Four encoding strategies cover every field:
//
//   - Varint: compact unsigned integers, 7 bits per byte
//   - ZigZag: signed integers folded into unsigned varints
//   - Length-prefixed: strings and byte blobs, varint length first
//   - Big-endian: fixed-width integers and IEEE 754 floats
//
// # Addressing
//
// Patches and events address nodes through hydration IDs. Elements
// carry their HID in a data-hid attribute assigned at render time.
// Text and comment nodes cannot carry attributes, so child operations
// (SetText, InsertBefore, RemoveNode, MoveNode, ReplaceNode) name the
// parent element's HID plus a child index; attribute and form
// operations name the element itself. The empty HID addresses the
// session root.
//
// Inserted and replacement subtrees travel as rendered HTML fragments,
// not as structured trees. The fragment already contains data-hid
// attributes for its elements, so the client needs nothing beyond
// insertAdjacentHTML-style parsing to adopt it.
//
// # Handshake
//
// Connection establishment exchanges ClientHello and ServerHello:
//
//	Client                            Server
//	  │                                 │
//	  │──── ClientHello ──────────────>│
//	  │     (version, session, seq)    │
//	  │                                 │
//	  │<──── ServerHello ──────────────│
//	  │     (status, session, time)    │
//	  │                                 │
//
// A client reconnecting with a live session ID and its last seen
// sequence number is resumed; the server replays missed patches via
// ResyncPatches or falls back to ResyncFull with a fresh HTML render.
//
// # Robustness
//
// Decoding never trusts a length or count from the wire. Strings and
// blobs are capped by DefaultMaxAllocation, collection counts by
// MaxCollectionCount and the bytes actually remaining, reassembled
// messages by MaxAssembledSize. Checksummed frames detect corruption
// before any payload decoding happens.
//
// # Usage
//
//	// Encode an event
//	event := &Event{Seq: 1, Type: EventClick, HID: "v7"}
//	data := EncodeEvent(event)
//
//	// Encode a patch batch
//	pf := &PatchesFrame{
//	    Seq: 12,
//	    Patches: []Patch{
//	        NewSetTextPatch("v3", 0, "Hello, World!"),
//	        NewSetAttrPatch("v5", "class", "active"),
//	    },
//	}
//	frame := NewChecksummedFrame(FramePatches, EncodePatches(pf))
//	wire := frame.Encode()
package protocol
