package protocol

// ErrorCode classifies an error frame.
type ErrorCode uint16

const (
	ErrUnknown          ErrorCode = 0x0000
	ErrInvalidFrame     ErrorCode = 0x0001 // Malformed frame
	ErrInvalidEvent     ErrorCode = 0x0002 // Malformed event
	ErrListenerNotFound ErrorCode = 0x0003 // No listener registered for the HID
	ErrListenerPanic    ErrorCode = 0x0004 // Listener panicked
	ErrSessionExpired   ErrorCode = 0x0005
	ErrRateLimited      ErrorCode = 0x0006
	ErrServerError      ErrorCode = 0x0100
)

// String returns the error code's name.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrListenerNotFound:
		return "ListenerNotFound"
	case ErrListenerPanic:
		return "ListenerPanic"
	case ErrSessionExpired:
		return "SessionExpired"
	case ErrRateLimited:
		return "RateLimited"
	case ErrServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// ErrorMessage reports a protocol or dispatch failure to the peer.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool // if true, the connection closes after this frame
}

// EncodeErrorMessage encodes an error message to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	EncodeErrorMessageTo(e, em)
	return e.Bytes()
}

// EncodeErrorMessageTo encodes an error message through the given
// encoder.
func EncodeErrorMessageTo(e *Encoder, em *ErrorMessage) {
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
}

// DecodeErrorMessage decodes an error message from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	return DecodeErrorMessageFrom(NewDecoder(data))
}

// DecodeErrorMessageFrom decodes an error message from a decoder.
func DecodeErrorMessageFrom(d *Decoder) (*ErrorMessage, error) {
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	return &ErrorMessage{
		Code:    ErrorCode(code),
		Message: message,
		Fatal:   fatal,
	}, nil
}

// NewError creates a non-fatal error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError creates an error message that closes the connection.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}

// IsFatal reports whether the connection should close.
func (em *ErrorMessage) IsFatal() bool {
	return em.Fatal
}
