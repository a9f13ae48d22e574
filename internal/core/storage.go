package core

import (
	"fmt"
	"os"

	"rollbook/internal/infra/storage/memory"
	"rollbook/internal/infra/storage/postgres"
	"rollbook/internal/infra/storage/sqlite"
	"rollbook/pkg/register"
)

// StorageDriver identifies a concrete storage adapter implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenStorageAdapter selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	ROLLBOOK_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ROLLBOOK_SQLITE_PATH: path to sqlite file (default ./rollbook.db)
//	ROLLBOOK_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStorageAdapter() (register.StorageAdapter, error) {
	driver := os.Getenv("ROLLBOOK_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.New(), nil
	case StorageSQLite:
		return sqlite.New(os.Getenv("ROLLBOOK_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.New(os.Getenv("ROLLBOOK_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
