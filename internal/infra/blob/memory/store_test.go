package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"rollbook/internal/infra/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}

	info, err := store.Put(ctx, "attendance_2024-05-06.csv", strings.NewReader("date,roll\n"), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"format": "csv"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 10 || info.ContentType != "text/csv" {
		t.Fatalf("bad info: %+v", info)
	}

	// create-only
	if _, err := store.Put(ctx, "attendance_2024-05-06.csv", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatal("expected duplicate put to fail")
	}

	got, rc, err := store.Get(ctx, "attendance_2024-05-06.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "date,roll\n" {
		t.Fatalf("body mismatch: %q", body)
	}
	if got.Metadata["format"] != "csv" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}

	if _, err := store.Head(ctx, "attendance_2024-05-06.csv"); err != nil {
		t.Fatalf("head: %v", err)
	}

	infos, err := store.List(ctx, "attendance_")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %d", err, len(infos))
	}
	if infos, _ := store.List(ctx, "backup_"); len(infos) != 0 {
		t.Fatalf("prefix filter leaked: %d", len(infos))
	}

	if _, err := store.PresignURL(ctx, "attendance_2024-05-06.csv", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	existed, err := store.Delete(ctx, "attendance_2024-05-06.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v existed=%v", err, existed)
	}
	existed, err = store.Delete(ctx, "attendance_2024-05-06.csv")
	if err != nil || existed {
		t.Fatalf("second delete: %v existed=%v", err, existed)
	}
}
