package uploads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxFileNameLen   = 1024
)

// ErrInvalidRecord is returned for records that fail validation.
var ErrInvalidRecord = errors.New("invalid upload record")

// Store is the persistence the Service needs; *Repository implements it.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
}

// Service contains the business logic for upload records.
type Service struct {
	repo Store
}

// NewService creates a new uploads Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Save validates and stores a record of userID uploading fileName at uploadTime.
func (s *Service) Save(ctx context.Context, userID, fileName string, uploadTime time.Time) (*Record, error) {
	if err := validateFileName(fileName); err != nil {
		return nil, err
	}
	if uploadTime.IsZero() {
		return nil, fmt.Errorf("%w: upload_time is required", ErrInvalidRecord)
	}

	rec := &Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		ObjectKey:  userID + "/" + fileName,
		UploadTime: uploadTime.UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save upload record: %w", err)
	}
	return rec, nil
}

// List returns userID's records, newest first. limit <= 0 means the default.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func validateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: file_name is required", ErrInvalidRecord)
	case len(name) > maxFileNameLen:
		return fmt.Errorf("%w: file_name is too long", ErrInvalidRecord)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: file_name must not contain '/' or NUL", ErrInvalidRecord)
	}
	return nil
}
