package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
)

// ErrKind categorises a storage failure without exposing provider codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no bucket
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // deadline, cancellation or throttling
	ErrKindInvalidInput             // bad key, bucket name or entity size
	ErrKindPermissionDenied         // access denied / bad credentials
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is returned by every Storage implementation.
type Error struct {
	Kind  ErrKind
	Op    string
	Key   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: [%s] %v", e.Op, e.Key, e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsTimeout reports whether err was caused by a deadline, cancellation or throttling.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

func contextKind(err error) (ErrKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrKindTimeout, true
	}
	return ErrKindUnknown, false
}

// mapMinioError translates a MinIO SDK error into a *Error.
func mapMinioError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	wrap := func(kind ErrKind) error {
		return &Error{Kind: kind, Op: op, Key: key, Cause: err}
	}

	if kind, ok := contextKind(err); ok {
		return wrap(kind)
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchBucket":
			return wrap(ErrKindNotFound)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return wrap(ErrKindPermissionDenied)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError", "EntityTooLarge":
			return wrap(ErrKindInvalidInput)
		case "RequestTimeout", "SlowDown":
			return wrap(ErrKindTimeout)
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return wrap(ErrKindNotFound)
		case http.StatusForbidden, http.StatusUnauthorized:
			return wrap(ErrKindPermissionDenied)
		case http.StatusBadRequest:
			return wrap(ErrKindInvalidInput)
		}
		return wrap(ErrKindUnknown)
	}

	return wrap(ErrKindConnectionFailed)
}

// mapS3Error translates an AWS SDK error into a *Error.
func mapS3Error(err error, op, key string) error {
	if err == nil {
		return nil
	}
	wrap := func(kind ErrKind) error {
		return &Error{Kind: kind, Op: op, Key: key, Cause: err}
	}

	if kind, ok := contextKind(err); ok {
		return wrap(kind)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NotFound":
			return wrap(ErrKindNotFound)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return wrap(ErrKindPermissionDenied)
		case "InvalidBucketName", "KeyTooLongError", "EntityTooLarge", "InvalidArgument":
			return wrap(ErrKindInvalidInput)
		case "RequestTimeout", "SlowDown", "Throttling":
			return wrap(ErrKindTimeout)
		}
		return wrap(ErrKindUnknown)
	}

	return wrap(ErrKindConnectionFailed)
}
