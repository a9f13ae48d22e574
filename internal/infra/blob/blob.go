// Package blob selects and re-exports the artifact store backends.
package blob

import (
	"context"
	"fmt"
	"os"

	"rollbook/internal/infra/blob/core"
	"rollbook/internal/infra/blob/fs"
	"rollbook/internal/infra/blob/memory"
	"rollbook/internal/infra/blob/s3"
)

// Store re-exports the backend contract.
type Store = core.Store

// Driver re-exports the backend identifier type.
type Driver = core.Driver

// Sanctioned driver identifiers.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// Open selects an artifact store implementation using environment variables.
//
//	ROLLBOOK_BLOB_DRIVER: fs|s3|memory (default fs)
//	ROLLBOOK_BLOB_FS_ROOT: directory root when driver=fs (default ./exports)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ROLLBOOK_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fs.New(os.Getenv("ROLLBOOK_BLOB_FS_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
