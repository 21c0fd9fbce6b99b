// Package record submits upload metadata to the metadata-recording endpoint.
package record

import "time"

// SaveUploadDetailsPath is the endpoint path records are posted to.
const SaveUploadDetailsPath = "/saveUploadDetails"

// TimeLayout is the ISO-8601 form used for upload_time: UTC with
// millisecond precision, e.g. "2026-10-18T09:30:00.000Z".
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// UploadRecord is the body of a save request. Its JSON form is exactly
// {user_id, file_name, upload_time}.
type UploadRecord struct {
	UserID     string `json:"user_id"`
	FileName   string `json:"file_name"`
	UploadTime string `json:"upload_time"`
}

// NewUploadRecord builds a record stamped with at.
func NewUploadRecord(userID, fileName string, at time.Time) UploadRecord {
	return UploadRecord{
		UserID:     userID,
		FileName:   fileName,
		UploadTime: at.UTC().Format(TimeLayout),
	}
}
