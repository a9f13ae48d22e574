package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rollbook/internal/infra/blob/core"
)

func TestFilesystemStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}

	info, err := store.Put(ctx, "attendance_2024-05-06.csv", strings.NewReader("date,roll\n"), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 10 || info.ETag == "" {
		t.Fatalf("bad info: %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "attendance_2024-05-06.csv.meta")); err != nil {
		t.Fatalf("meta sidecar missing: %v", err)
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
	if got.ContentType != "text/csv" {
		t.Fatalf("content type lost: %+v", got)
	}

	infos, err := store.List(ctx, "attendance_")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %d", err, len(infos))
	}

	url, err := store.PresignURL(ctx, "attendance_2024-05-06.csv", core.SignedURLOptions{})
	if err != nil || !strings.HasPrefix(url, "file://") {
		t.Fatalf("presign: %v %q", err, url)
	}

	existed, err := store.Delete(ctx, "attendance_2024-05-06.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v existed=%v", err, existed)
	}
	if existed, _ := store.Delete(ctx, "attendance_2024-05-06.csv"); existed {
		t.Fatal("second delete reported existence")
	}
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "../escape", "/abs", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}
