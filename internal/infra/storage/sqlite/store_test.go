package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "rollbook.db")
	store, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok, err := store.Get(ctx, "students"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "students", []byte(`[{"roll":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "records", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	// upsert replaces in place
	if err := store.Set(ctx, "students", []byte(`[]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	payload, ok, err := store.Get(ctx, "students")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(payload) != `[]` {
		t.Fatalf("payload mismatch: %s", payload)
	}

	if err := store.Remove(ctx, "records"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "records"); ok {
		t.Fatal("blob survived remove")
	}
}

func TestSQLiteAdapterPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rollbook.db")

	store, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set(ctx, "students", []byte(`[{"roll":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	payload, ok, err := reopened.Get(ctx, "students")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(payload) != `[{"roll":"1"}]` {
		t.Fatalf("payload lost across reopen: %s", payload)
	}
	if reopened.Path() != path {
		t.Fatalf("path mismatch: %s", reopened.Path())
	}
}
