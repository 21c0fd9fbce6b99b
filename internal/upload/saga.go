package upload

import "time"

// SagaState is how far an upload attempt got. The object write and the
// metadata record are separate remote effects with no shared transaction;
// SagaRecordFailed marks an object stored without a record.
type SagaState string

const (
	SagaPending       SagaState = "pending"
	SagaStorageFailed SagaState = "storage_failed"
	SagaObjectStored  SagaState = "object_stored"
	SagaRecordFailed  SagaState = "record_failed"
	SagaRecorded      SagaState = "recorded"
)

// Result describes one upload attempt that passed its preconditions.
type Result struct {
	Key        string
	FileName   string
	UserID     string
	Size       int64
	ObjectURL  string
	UploadTime string // ISO-8601, empty until the record was built
	State      SagaState
	StartedAt  time.Time
}

// Orphaned reports whether the object was stored without a metadata record.
func (r *Result) Orphaned() bool {
	return r.State == SagaRecordFailed
}
