package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"rollbook/internal/infra/blob/core"
)

func TestS3StoreAgainstMockTransport(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	if store.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", store.Driver())
	}

	info, err := store.Put(ctx, "attendance_2024-05-06.csv", strings.NewReader("date,roll\n"), core.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "attendance_2024-05-06.csv" {
		t.Fatalf("bad key %q", info.Key)
	}

	// create-only is emulated via a Head check
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
	if infos[0].Size != 10 {
		t.Fatalf("listed size = %d", infos[0].Size)
	}

	url, err := store.PresignURL(ctx, "attendance_2024-05-06.csv", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "attendance_2024-05-06.csv") {
		t.Fatalf("presigned url missing key: %q", url)
	}

	if _, err := store.Delete(ctx, "attendance_2024-05-06.csv"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Get(ctx, "attendance_2024-05-06.csv"); err == nil {
		t.Fatal("object survived delete")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("ROLLBOOK_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("expected missing bucket error")
	}
}
