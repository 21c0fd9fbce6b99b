package upload

import (
	"errors"
	"fmt"
)

// ErrKind tags why an upload did not complete.
type ErrKind int

const (
	ErrKindUnknown      ErrKind = iota
	ErrKindPrecondition         // no file selected or nobody logged in
	ErrKindBusy                 // another upload is still in flight
	ErrKindStorage              // object write failed; nothing was recorded
	ErrKindRecord               // object stored but its metadata was not recorded
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindPrecondition:
		return "precondition"
	case ErrKindBusy:
		return "busy"
	case ErrKindStorage:
		return "storage"
	case ErrKindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Controller.Upload.
type Error struct {
	Kind    ErrKind
	Message string
	Key     string // object key, empty for precondition and busy errors
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

var (
	// ErrNotReady is returned when no file is selected or nobody is logged in.
	ErrNotReady = &Error{Kind: ErrKindPrecondition, Message: "no file selected or user not logged in"}

	// ErrUploadInProgress is returned while a previous Upload has not finished.
	ErrUploadInProgress = &Error{Kind: ErrKindBusy, Message: "upload already in progress"}
)

// IsPrecondition reports whether err was a local precondition failure.
func IsPrecondition(err error) bool {
	return kindOf(err) == ErrKindPrecondition
}

// IsBusy reports whether err was a rejected overlapping upload.
func IsBusy(err error) bool {
	return kindOf(err) == ErrKindBusy
}

// IsStorage reports whether err was an object storage failure.
func IsStorage(err error) bool {
	return kindOf(err) == ErrKindStorage
}

// IsRecord reports whether err was a metadata recording failure. The object
// exists in storage without a matching record.
func IsRecord(err error) bool {
	return kindOf(err) == ErrKindRecord
}

func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
