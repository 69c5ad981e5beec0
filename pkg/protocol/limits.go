package protocol

// Message assembly limits. Individual frames are already capped at
// MaxPayloadSize by the 16-bit length field; these bound what a peer
// can make a FrameAssembler buffer across fragments. They layer on
// top of the decoder's allocation limits, which bound what any single
// length prefix inside a payload can claim.
const (
	// MaxAssembledSize caps a reassembled message at 16 MiB, the same
	// ceiling as HardMaxAllocation. A full-page resync render fits
	// comfortably; nothing legitimate comes close.
	MaxAssembledSize = 16 * 1024 * 1024

	// MaxFramesPerMessage caps the fragment count of one message.
	// 256 maximum-size fragments add up to MaxAssembledSize, so the
	// two limits agree.
	MaxFramesPerMessage = 256
)
