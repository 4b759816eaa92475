package core

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBatchPushAndClear(t *testing.T) {
	b := NewBatch(ClassQuad, 0)
	if b.Len() != 0 {
		t.Fatalf("new batch not empty: %d", b.Len())
	}

	for i := 0; i < 10; i++ {
		if err := b.Push(quadAt(t, float32(i), 0, 5, 5)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if b.Len() != 10 {
		t.Fatalf("expected 10 records, got %d", b.Len())
	}

	before := cap(b.records)
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("clear left %d records", b.Len())
	}
	if cap(b.records) != before {
		t.Errorf("clear changed capacity %d -> %d", before, cap(b.records))
	}
}

func TestBatchLimit(t *testing.T) {
	b := NewBatch(ClassPoint, 3)
	for i := 0; i < 3; i++ {
		if err := b.Push(pointAt(t, float32(i), 0)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	err := b.Push(pointAt(t, 99, 0))
	if !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}
	if b.Len() != 3 {
		t.Errorf("overflowing push changed length to %d", b.Len())
	}

	// Clearing frees the slots again.
	b.Clear()
	if err := b.Push(pointAt(t, 0, 0)); err != nil {
		t.Errorf("push after clear: %v", err)
	}
}

func TestBatchOverflowLatch(t *testing.T) {
	b := NewBatch(ClassQuad, 2)
	for i := 0; i < 2; i++ {
		if err := b.Push(quadAt(t, float32(i), 0, 5, 5)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if b.Overflowed() {
		t.Fatal("batch at limit but not over it reports overflow")
	}

	if err := b.Push(quadAt(t, 9, 0, 5, 5)); !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}
	if !b.Overflowed() {
		t.Error("dropped record did not latch overflow")
	}
	if b.Len() != 2 {
		t.Errorf("overflow changed length to %d", b.Len())
	}

	// The mark resets with the frame.
	b.Clear()
	if b.Overflowed() {
		t.Error("clear did not reset the overflow mark")
	}
}

func TestBatchBytes(t *testing.T) {
	b := NewBatch(ClassQuad, 0)
	recs := []InstanceRecord{
		quadAt(t, 1, 2, 3, 4),
		quadAt(t, 5, 6, 7, 8),
	}
	for _, r := range recs {
		if err := b.Push(r); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	raw := b.Bytes(nil)
	if len(raw) != 2*RecordStride {
		t.Fatalf("expected %d bytes, got %d", 2*RecordStride, len(raw))
	}
	for i, want := range recs {
		got := RecordFromBytes(raw[i*RecordStride:])
		if got != want {
			t.Errorf("record %d: %v != %v", i, got, want)
		}
	}

	// Appending reuses the destination.
	raw2 := b.Bytes(raw[:0])
	if len(raw2) != len(raw) {
		t.Errorf("reuse produced %d bytes", len(raw2))
	}
}

func TestBatchGrowsPastInitialCapacity(t *testing.T) {
	b := NewBatch(ClassSprite, 0)
	n := DefaultBatchCapacity + 100
	uv := Region{W: 1, H: 1}
	for i := 0; i < n; i++ {
		rec, err := EncodeSprite(
			Transform2D{Position: mgl32.Vec2{float32(i), 0}, Size: mgl32.Vec2{8, 8}},
			White, &uv,
		)
		if err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		if err := b.Push(rec); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if b.Len() != n {
		t.Errorf("expected %d records, got %d", n, b.Len())
	}
}
