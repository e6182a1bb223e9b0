package database

import "time"

// JobRecord is the metadata row for one storage-service job.
type JobRecord struct {
	ID             string    `gorm:"primaryKey" json:"job_id"`
	Filename       string    `json:"filename"`
	Size           int64     `json:"size"`
	ContentType    string    `json:"content_type"`
	CompressedSize int64     `json:"compressed_size,omitempty"`
	UploadedAt     time.Time `json:"upload_time"`
}

// SessionRecord is a persisted batch session summary.
type SessionRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Root            string    `json:"root"`
	FilesFound      int       `json:"files_found"`
	Succeeded       int       `json:"succeeded"`
	Failed          int       `json:"failed"`
	Skipped         int       `json:"skipped"`
	OriginalBytes   int64     `json:"original_bytes"`
	CompressedBytes int64     `json:"compressed_bytes"`
	ElapsedMillis   int64     `json:"elapsed_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// Totals aggregates all persisted sessions.
type Totals struct {
	TotalFilesCompressed int64 `json:"total_files_compressed"`
	TotalDataSaved       int64 `json:"total_data_saved"`
}
