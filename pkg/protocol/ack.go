package protocol

// Ack acknowledges patches up to LastSeq. The server uses acks to trim
// its replay history and to pace flushes: once the unacked count
// reaches the client's window it stops sending and queues.
type Ack struct {
	LastSeq uint64
	Window  uint64 // patches the client can accept beyond LastSeq
}

// DefaultWindow is the receive window clients advertise unless
// configured otherwise.
const DefaultWindow = 100

// EncodeAck encodes an ack to bytes.
func EncodeAck(ack *Ack) []byte {
	e := NewEncoder()
	EncodeAckTo(e, ack)
	return e.Bytes()
}

// EncodeAckTo encodes an ack through the given encoder.
func EncodeAckTo(e *Encoder, ack *Ack) {
	e.WriteUvarint(ack.LastSeq)
	e.WriteUvarint(ack.Window)
}

// DecodeAck decodes an ack from bytes.
func DecodeAck(data []byte) (*Ack, error) {
	return DecodeAckFrom(NewDecoder(data))
}

// DecodeAckFrom decodes an ack from a decoder.
func DecodeAckFrom(d *Decoder) (*Ack, error) {
	lastSeq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	window, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}

	return &Ack{LastSeq: lastSeq, Window: window}, nil
}

// NewAck creates an ack for lastSeq with the given window.
func NewAck(lastSeq, window uint64) *Ack {
	return &Ack{LastSeq: lastSeq, Window: window}
}
