// Package uploads persists the metadata records clients submit after storing
// an object.
package uploads

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one recorded upload event. Re-uploading the same file name
// overwrites the object but adds a new Record.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FileName   string    `json:"file_name"`
	ObjectKey  string    `json:"object_key"`
	UploadTime time.Time `json:"upload_time"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository handles upload record persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts rec and fills in CreatedAt.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO upload_records (id, user_id, file_name, object_key, upload_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		rec.ID, rec.UserID, rec.FileName, rec.ObjectKey, rec.UploadTime,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload record: %w", err)
	}
	return nil
}

// ListByUser returns up to limit records for userID, newest upload first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, file_name, object_key, upload_time, created_at
		 FROM upload_records
		 WHERE user_id = $1
		 ORDER BY upload_time DESC, created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list upload records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.ObjectKey, &rec.UploadTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload records: %w", err)
	}
	return records, nil
}
