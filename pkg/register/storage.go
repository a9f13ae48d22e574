package register

import "context"

// Storage bucket keys. The adapter persists exactly two opaque blobs.
const (
	// KeyStudents holds the serialized roster.
	KeyStudents = "students"
	// KeyRecords holds the serialized attendance-by-date map.
	KeyRecords = "records"
)

// StorageAdapter is a minimal abstraction over durable backends: a
// synchronous string-keyed blob store with no transactions and no partial
// writes. Get reports absence via ok rather than an error, since missing
// data is the normal first-run state.
type StorageAdapter interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte) error
	Remove(ctx context.Context, key string) error
}
