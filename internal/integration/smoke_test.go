package integration

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"rollbook/internal/adapters/export"
	"rollbook/internal/core"
	blobcore "rollbook/internal/infra/blob/core"
	blobfs "rollbook/internal/infra/blob/fs"
	blobmem "rollbook/internal/infra/blob/memory"
	blobs3 "rollbook/internal/infra/blob/s3"
	storemem "rollbook/internal/infra/storage/memory"
	storesqlite "rollbook/internal/infra/storage/sqlite"
	"rollbook/pkg/register"
)

// TestIntegrationSmoke exercises a minimal end-to-end write/read cycle for
// each supported in-process storage and blob adapter. It intentionally keeps
// scope tiny so it can act as a fast CI health check.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	// Define storage adapter variants to exercise.
	storageVariants := []struct {
		name string
		open func(t *testing.T) register.StorageAdapter
	}{
		{
			name: "memory-storage",
			open: func(_ *testing.T) register.StorageAdapter {
				return storemem.New()
			},
		},
		{
			name: "sqlite-storage",
			open: func(t *testing.T) register.StorageAdapter {
				path := filepath.Join(t.TempDir(), "rollbook.db")
				s, err := storesqlite.New(path)
				if err != nil {
					t.Fatalf("new sqlite storage: %v", err)
				}
				t.Cleanup(func() { _ = s.Close() })
				return s
			},
		},
	}

	// Define blob adapters to exercise. Include a lightweight mocked S3
	// transport so the smoke test covers all adapters in one place.
	blobVariants := []struct {
		name string
		open func(t *testing.T) blobcore.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blobcore.Store { return blobmem.New() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blobcore.Store {
				fs, err := blobfs.New(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem blob: %v", err)
				}
				return fs
			},
		},
		{
			name: "mock-s3-blob",
			open: func(_ *testing.T) blobcore.Store { return blobs3.NewMockForTests() },
		},
	}

	for _, sv := range storageVariants {
		t.Run(sv.name, func(t *testing.T) {
			storage := sv.open(t)
			registry := prometheus.NewRegistry()
			reg := core.NewRegister(storage, core.WithMetrics(core.NewMetrics(registry)))
			if report := reg.Load(ctx); report.Recovered() {
				t.Fatalf("unexpected recovery on fresh storage: %+v", report)
			}

			if _, err := reg.AddStudent(ctx, "Aarav Mehta", "17"); err != nil {
				t.Fatalf("add student: %v", err)
			}
			if _, err := reg.AddStudent(ctx, "Binta Diallo", "18"); err != nil {
				t.Fatalf("add student: %v", err)
			}
			present := true
			if err := reg.SetAttendance(ctx, "2024-05-06", "17", register.Patch{Present: &present}); err != nil {
				t.Fatalf("set attendance: %v", err)
			}
			if sum := reg.Summarize("2024-05-06"); sum.Total != 2 || sum.Present != 1 {
				t.Fatalf("summary = %+v, want 1/2", sum)
			}

			// Reload from the adapter to prove the write-through landed.
			fresh := core.NewRegister(storage)
			if report := fresh.Load(ctx); report.Recovered() {
				t.Fatalf("unexpected recovery on reload: %+v", report)
			}
			if got := fresh.Students(); len(got) != 2 {
				t.Fatalf("reloaded roster size = %d, want 2", len(got))
			}
			if sum := fresh.Summarize("2024-05-06"); sum.Present != 1 {
				t.Fatalf("reloaded summary = %+v, want 1 present", sum)
			}

			// Mutation metrics must have been recorded.
			families, err := registry.Gather()
			if err != nil {
				t.Fatalf("gather metrics: %v", err)
			}
			var sawMutations bool
			for _, mf := range families {
				if mf.GetName() == "rollbook_mutations_total" {
					sawMutations = true
				}
			}
			if !sawMutations {
				t.Fatalf("expected rollbook_mutations_total family, got %d families", len(families))
			}
		})
	}

	for _, bv := range blobVariants {
		t.Run(bv.name, func(t *testing.T) {
			storage := storemem.New()
			reg := core.NewRegister(storage)
			reg.Load(ctx)
			if _, err := reg.AddStudent(ctx, "Chen Wei", "21"); err != nil {
				t.Fatalf("add student: %v", err)
			}
			if err := reg.MarkAll(ctx, "2024-05-07", true); err != nil {
				t.Fatalf("mark all: %v", err)
			}

			pub := export.NewPublisher(export.NewExporter(reg), bv.open(t))
			info, err := pub.Publish(ctx, export.FormatCSV, "2024-05-07")
			if err != nil {
				t.Fatalf("publish csv: %v", err)
			}
			if info.Key != "attendance_2024-05-07.csv" {
				t.Fatalf("artifact key = %q", info.Key)
			}
		})
	}
}

// TestIntegrationBackupRestore round-trips a full backup through the blob
// store and back into a second register.
func TestIntegrationBackupRestore(t *testing.T) {
	ctx := context.Background()
	reg := core.NewRegister(storemem.New())
	reg.Load(ctx)
	if _, err := reg.AddStudent(ctx, "Dara Okafor", "5"); err != nil {
		t.Fatalf("add student: %v", err)
	}
	if err := reg.MarkAll(ctx, "2024-05-08", true); err != nil {
		t.Fatalf("mark all: %v", err)
	}

	artifacts := blobmem.New()
	pub := export.NewPublisher(export.NewExporter(reg), artifacts)
	info, err := pub.Publish(ctx, export.FormatBackup, "")
	if err != nil {
		t.Fatalf("publish backup: %v", err)
	}
	if !strings.HasPrefix(info.Key, "rollbook_backup_") {
		t.Fatalf("backup key = %q", info.Key)
	}

	_, rc, err := artifacts.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get backup: %v", err)
	}
	payload, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !bytes.Contains(payload, []byte("Dara Okafor")) {
		t.Fatalf("backup payload missing roster entry: %s", payload)
	}

	snap, err := export.ParseBackup(payload)
	if err != nil {
		t.Fatalf("parse backup: %v", err)
	}
	restored := core.NewRegister(storemem.New())
	restored.Load(ctx)
	if err := restored.ReplaceState(ctx, snap); err != nil {
		t.Fatalf("replace state: %v", err)
	}
	if sum := restored.Summarize("2024-05-08"); sum.Total != 1 || sum.Present != 1 {
		t.Fatalf("restored summary = %+v, want 1/1", sum)
	}
}
