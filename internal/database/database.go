package database

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pdfpress/internal/batch"
)

// Database handles database operations
type Database struct {
	db *gorm.DB
}

// NewDatabase creates a new database instance
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	database := &Database{db: db}

	// Auto-migrate the schema
	err = db.AutoMigrate(&JobRecord{}, &SessionRecord{})
	if err != nil {
		return nil, err
	}

	return database, nil
}

// CreateJob records a newly uploaded job.
func (d *Database) CreateJob(record *JobRecord) error {
	return d.db.Create(record).Error
}

// GetJob looks a job up by ID.
func (d *Database) GetJob(jobID string) (*JobRecord, error) {
	var record JobRecord
	if err := d.db.First(&record, "id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// SetCompressedSize stores the compressed byte size for a job.
func (d *Database) SetCompressedSize(jobID string, size int64) error {
	return d.db.Model(&JobRecord{}).Where("id = ?", jobID).
		Update("compressed_size", size).Error
}

// DeleteJob removes a job record.
func (d *Database) DeleteJob(jobID string) error {
	return d.db.Delete(&JobRecord{}, "id = ?", jobID).Error
}

// ExpiredJobs returns jobs uploaded before the cutoff.
func (d *Database) ExpiredJobs(cutoff time.Time) ([]JobRecord, error) {
	var records []JobRecord
	if err := d.db.Where("uploaded_at < ?", cutoff).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SaveSession persists a batch session summary.
func (d *Database) SaveSession(summary *batch.Summary) error {
	record := SessionRecord{
		Root:            summary.Root,
		FilesFound:      summary.FilesFound,
		Succeeded:       summary.Succeeded,
		Failed:          summary.Failed,
		Skipped:         summary.Skipped,
		OriginalBytes:   summary.TotalOriginalBytes,
		CompressedBytes: summary.TotalCompressedBytes,
		ElapsedMillis:   summary.Elapsed.Milliseconds(),
	}
	return d.db.Create(&record).Error
}

// GetTotals aggregates all persisted sessions.
func (d *Database) GetTotals() (*Totals, error) {
	var sessions []SessionRecord
	if err := d.db.Find(&sessions).Error; err != nil {
		return nil, err
	}

	totals := &Totals{}
	for _, s := range sessions {
		totals.TotalFilesCompressed += int64(s.Succeeded)
		totals.TotalDataSaved += s.OriginalBytes - s.CompressedBytes
	}
	return totals, nil
}
