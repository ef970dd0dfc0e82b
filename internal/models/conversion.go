package models

import "time"

// Conversion is one row of the conversion audit log.
type Conversion struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	SourceFilename string    `json:"source_filename"`
	FromFormat     string    `json:"from_format"`
	ToFormat       string    `json:"to_format"`
	Status         string    `json:"status"`
	ErrorCode      string    `json:"error_code,omitempty"`
	ErrorText      string    `json:"error_text,omitempty"`
	InputBytes     int64     `json:"input_bytes"`
	OutputBytes    int64     `json:"output_bytes"`
	DurationMS     int64     `json:"duration_ms"`
	ArchiveKey     string    `json:"archive_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
