package live

import (
	"time"

	"github.com/vireo-ui/vireo/pkg/protocol"
)

// historyEntry is one sent flush: its sequence number and patches.
type historyEntry struct {
	seq     uint64
	patches []protocol.Patch
	sentAt  time.Time
}

// PatchHistory is a ring of recently sent patch frames, kept so a
// reconnecting client can be caught up without a full tree reload. Once
// full, new frames overwrite the oldest. Not safe for concurrent use;
// the session touches it only from the run loop.
type PatchHistory struct {
	entries  []historyEntry
	head     int // next write position
	count    int
	capacity int
	minSeq   uint64 // oldest retained seq, 0 when empty
	maxSeq   uint64 // newest retained seq, 0 when empty
}

// NewPatchHistory creates a history retaining up to capacity frames.
// A capacity below 1 is raised to 1.
func NewPatchHistory(capacity int) *PatchHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &PatchHistory{
		entries:  make([]historyEntry, capacity),
		capacity: capacity,
	}
}

// Add records a sent frame. Sequences must arrive in increasing order;
// the session assigns them that way.
func (h *PatchHistory) Add(seq uint64, patches []protocol.Patch) {
	// Own the slice: the session reuses its queue buffer after sending.
	stored := make([]protocol.Patch, len(patches))
	copy(stored, patches)

	h.entries[h.head] = historyEntry{seq: seq, patches: stored, sentAt: time.Now()}
	h.head = (h.head + 1) % h.capacity

	if h.count < h.capacity {
		h.count++
	}
	h.maxSeq = seq
	oldest := (h.head - h.count + h.capacity) % h.capacity
	h.minSeq = h.entries[oldest].seq
}

// CanRecover reports whether every frame after lastSeq is still
// retained, meaning a client at lastSeq can be replayed forward.
func (h *PatchHistory) CanRecover(lastSeq uint64) bool {
	if h.count == 0 {
		return false
	}
	if lastSeq >= h.maxSeq {
		return false
	}
	return lastSeq+1 >= h.minSeq
}

// Since returns the patches of every frame in (lastSeq, maxSeq],
// flattened in order, along with the first replayed sequence. It
// returns ok=false when the ring no longer covers that range.
func (h *PatchHistory) Since(lastSeq uint64) (patches []protocol.Patch, fromSeq uint64, ok bool) {
	if !h.CanRecover(lastSeq) {
		return nil, 0, false
	}
	fromSeq = lastSeq + 1
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		e := &h.entries[idx]
		if e.seq > lastSeq {
			patches = append(patches, e.patches...)
		}
	}
	return patches, fromSeq, true
}

// Len returns how many frames are retained.
func (h *PatchHistory) Len() int { return h.count }

// Bounds returns the oldest and newest retained sequence numbers, both
// zero when the history is empty.
func (h *PatchHistory) Bounds() (minSeq, maxSeq uint64) {
	return h.minSeq, h.maxSeq
}

// Clear drops every retained frame.
func (h *PatchHistory) Clear() {
	for i := range h.entries {
		h.entries[i] = historyEntry{}
	}
	h.head = 0
	h.count = 0
	h.minSeq = 0
	h.maxSeq = 0
}
