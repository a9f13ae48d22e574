package memory

import (
	"context"
	"testing"
)

func TestMemoryAdapterGetSetRemove(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, ok, err := store.Get(ctx, "students"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "students", []byte(`[{"roll":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload, ok, err := store.Get(ctx, "students")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(payload) != `[{"roll":"1"}]` {
		t.Fatalf("payload mismatch: %s", payload)
	}

	// overwrites replace the blob
	if err := store.Set(ctx, "students", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload, _, _ = store.Get(ctx, "students")
	if string(payload) != `[]` {
		t.Fatalf("overwrite failed: %s", payload)
	}

	if err := store.Remove(ctx, "students"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "students"); ok {
		t.Fatal("blob survived remove")
	}
	// removing an absent key is a no-op
	if err := store.Remove(ctx, "students"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestMemoryAdapterReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	original := []byte("abc")
	if err := store.Set(ctx, "k", original); err != nil {
		t.Fatalf("set: %v", err)
	}
	original[0] = 'z'

	payload, _, _ := store.Get(ctx, "k")
	if string(payload) != "abc" {
		t.Fatalf("stored blob aliased caller memory: %s", payload)
	}
	payload[0] = 'z'
	again, _, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned blob aliased store memory: %s", again)
	}
}
