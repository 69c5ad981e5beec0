package protocol

// HandshakeStatus is the server's verdict on a connection attempt.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeSessionExpired  HandshakeStatus = 0x02
	HandshakeServerBusy      HandshakeStatus = 0x03
	HandshakeUpgradeRequired HandshakeStatus = 0x04
	HandshakeInvalidFormat   HandshakeStatus = 0x05
	HandshakeNotAuthorized   HandshakeStatus = 0x06
	HandshakeInternalError   HandshakeStatus = 0x07
)

// String returns the status name.
func (s HandshakeStatus) String() string {
	switch s {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeSessionExpired:
		return "SessionExpired"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeUpgradeRequired:
		return "UpgradeRequired"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeNotAuthorized:
		return "NotAuthorized"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is a protocol version number. Servers accept clients
// with the same major version; minor versions only add frame types and
// flags.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the protocol version this package implements.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// Compatible reports whether a client at version v can talk to this
// server.
func (v ProtocolVersion) Compatible() bool {
	return v.Major == CurrentVersion.Major
}

// ClientHello is the first frame a client sends after connecting.
//
// SessionID carries the ID embedded in the rendered page, binding the
// socket to its server-side tree. LastSeq is the last patch sequence
// the client applied, so a reconnecting client can resume instead of
// reloading; fresh connections send zero.
type ClientHello struct {
	Version   ProtocolVersion
	SessionID string
	LastSeq   uint32
	ViewportW uint16
	ViewportH uint16
	TZOffset  int16 // minutes east of UTC
}

// NewClientHello creates a hello for a fresh connection to sessionID.
func NewClientHello(sessionID string) *ClientHello {
	return &ClientHello{Version: CurrentVersion, SessionID: sessionID}
}

// EncodeClientHello encodes a client hello to bytes.
func EncodeClientHello(h *ClientHello) []byte {
	e := NewEncoder()
	EncodeClientHelloTo(e, h)
	return e.Bytes()
}

// EncodeClientHelloTo encodes a client hello through the given encoder.
func EncodeClientHelloTo(e *Encoder, h *ClientHello) {
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteString(h.SessionID)
	e.WriteUint32(h.LastSeq)
	e.WriteUint16(h.ViewportW)
	e.WriteUint16(h.ViewportH)
	e.WriteInt16(h.TZOffset)
}

// DecodeClientHello decodes a client hello from bytes.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	return DecodeClientHelloFrom(NewDecoder(data))
}

// DecodeClientHelloFrom decodes a client hello from a decoder.
func DecodeClientHelloFrom(d *Decoder) (*ClientHello, error) {
	h := &ClientHello{}

	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	h.Version = ProtocolVersion{Major: major, Minor: minor}

	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.LastSeq, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if h.ViewportW, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.ViewportH, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.TZOffset, err = d.ReadInt16(); err != nil {
		return nil, err
	}

	return h, nil
}

// Server capability flags advertised in ServerHello.
const (
	// ServerFlagChecksums asks the client to set FlagChecksum on every
	// frame it sends.
	ServerFlagChecksums uint16 = 0x0001

	// ServerFlagResync tells the client its LastSeq was too far behind
	// and a full resync follows instead of incremental patches.
	ServerFlagResync uint16 = 0x0002
)

// ServerHello is the server's reply to a ClientHello. On any status
// other than HandshakeOK the connection is closed after the reply.
type ServerHello struct {
	Status     HandshakeStatus
	Version    ProtocolVersion
	SessionID  string
	NextSeq    uint32
	ServerTime uint64 // unix milliseconds
	Flags      uint16
}

// NewServerHello creates a successful hello.
func NewServerHello(sessionID string, nextSeq uint32, serverTime uint64) *ServerHello {
	return &ServerHello{
		Status:     HandshakeOK,
		Version:    CurrentVersion,
		SessionID:  sessionID,
		NextSeq:    nextSeq,
		ServerTime: serverTime,
	}
}

// NewServerHelloError creates a rejection with the given status.
func NewServerHelloError(status HandshakeStatus) *ServerHello {
	return &ServerHello{Status: status, Version: CurrentVersion}
}

// EncodeServerHello encodes a server hello to bytes.
func EncodeServerHello(h *ServerHello) []byte {
	e := NewEncoder()
	EncodeServerHelloTo(e, h)
	return e.Bytes()
}

// EncodeServerHelloTo encodes a server hello through the given encoder.
func EncodeServerHelloTo(e *Encoder, h *ServerHello) {
	e.WriteByte(byte(h.Status))
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteString(h.SessionID)
	e.WriteUint32(h.NextSeq)
	e.WriteUint64(h.ServerTime)
	e.WriteUint16(h.Flags)
}

// DecodeServerHello decodes a server hello from bytes.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	return DecodeServerHelloFrom(NewDecoder(data))
}

// DecodeServerHelloFrom decodes a server hello from a decoder.
func DecodeServerHelloFrom(d *Decoder) (*ServerHello, error) {
	h := &ServerHello{}

	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	h.Status = HandshakeStatus(status)

	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	h.Version = ProtocolVersion{Major: major, Minor: minor}

	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.NextSeq, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if h.ServerTime, err = d.ReadUint64(); err != nil {
		return nil, err
	}
	if h.Flags, err = d.ReadUint16(); err != nil {
		return nil, err
	}

	return h, nil
}
