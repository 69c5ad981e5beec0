package live

import (
	"testing"

	"github.com/vireo-ui/vireo/pkg/protocol"
)

func textPatch(hid string, idx int, text string) protocol.Patch {
	return protocol.NewSetTextPatch(hid, idx, text)
}

func TestPatchHistory_Empty(t *testing.T) {
	h := NewPatchHistory(4)
	if h.Len() != 0 {
		t.Fatalf("Len()=%d, want 0", h.Len())
	}
	if h.CanRecover(0) {
		t.Fatal("CanRecover(0)=true on empty history")
	}
	if _, _, ok := h.Since(0); ok {
		t.Fatal("Since(0) ok=true on empty history")
	}
	if min, max := h.Bounds(); min != 0 || max != 0 {
		t.Fatalf("Bounds()=(%d, %d), want (0, 0)", min, max)
	}
}

func TestPatchHistory_AddAndSince(t *testing.T) {
	h := NewPatchHistory(8)
	for seq := uint64(1); seq <= 3; seq++ {
		h.Add(seq, []protocol.Patch{textPatch("v1", 0, "a")})
	}

	if h.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", h.Len())
	}
	if min, max := h.Bounds(); min != 1 || max != 3 {
		t.Fatalf("Bounds()=(%d, %d), want (1, 3)", min, max)
	}

	patches, from, ok := h.Since(1)
	if !ok {
		t.Fatal("Since(1) ok=false")
	}
	if from != 2 {
		t.Fatalf("fromSeq=%d, want 2", from)
	}
	if len(patches) != 2 {
		t.Fatalf("len(patches)=%d, want 2", len(patches))
	}

	// A client already at the newest frame has nothing to replay.
	if h.CanRecover(3) {
		t.Fatal("CanRecover(maxSeq)=true, want false")
	}
}

func TestPatchHistory_RingOverwrite(t *testing.T) {
	h := NewPatchHistory(3)
	for seq := uint64(1); seq <= 5; seq++ {
		h.Add(seq, []protocol.Patch{textPatch("v1", 0, "x")})
	}

	if h.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", h.Len())
	}
	if min, max := h.Bounds(); min != 3 || max != 5 {
		t.Fatalf("Bounds()=(%d, %d), want (3, 5)", min, max)
	}

	// Seqs 1 and 2 were overwritten; a client at seq 1 cannot replay
	// forward because frame 2 is gone.
	if h.CanRecover(1) {
		t.Fatal("CanRecover(1)=true after overwrite")
	}
	// A client at seq 2 can: frames 3..5 are all retained.
	patches, from, ok := h.Since(2)
	if !ok {
		t.Fatal("Since(2) ok=false")
	}
	if from != 3 {
		t.Fatalf("fromSeq=%d, want 3", from)
	}
	if len(patches) != 3 {
		t.Fatalf("len(patches)=%d, want 3", len(patches))
	}
}

func TestPatchHistory_OwnsPatchSlice(t *testing.T) {
	h := NewPatchHistory(2)
	buf := []protocol.Patch{textPatch("v1", 0, "before")}
	h.Add(1, buf)
	buf[0] = textPatch("v9", 9, "after")

	patches, _, ok := h.Since(0)
	if !ok {
		t.Fatal("Since(0) ok=false")
	}
	if patches[0].HID != "v1" || patches[0].Value != "before" {
		t.Fatalf("stored patch aliased caller buffer: %+v", patches[0])
	}
}

func TestPatchHistory_Clear(t *testing.T) {
	h := NewPatchHistory(2)
	h.Add(1, []protocol.Patch{textPatch("v1", 0, "a")})
	h.Clear()

	if h.Len() != 0 {
		t.Fatalf("Len()=%d after Clear, want 0", h.Len())
	}
	if h.CanRecover(0) {
		t.Fatal("CanRecover(0)=true after Clear")
	}
}

func TestPatchHistory_MinCapacity(t *testing.T) {
	h := NewPatchHistory(0)
	h.Add(1, []protocol.Patch{textPatch("v1", 0, "a")})
	if h.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", h.Len())
	}
}
