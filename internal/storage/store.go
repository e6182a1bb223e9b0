package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"pdfpress/internal/common"
	"pdfpress/internal/compression"
	"pdfpress/internal/database"
)

var (
	// ErrJobNotFound means no job directory or record exists for the ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrFileNotFound means the job exists but the requested file does not.
	ErrFileNotFound = errors.New("file not found")
)

const (
	originalPrefix   = "original_"
	compressedPrefix = "compressed_"
)

// Store keeps uploaded and compressed files in per-job directories under a
// storage root, with job metadata in the database.
type Store struct {
	dir    string
	db     *database.Database
	logger *slog.Logger
}

// NewStore creates the store, ensuring the storage root exists.
func NewStore(dir string, db *database.Database, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, common.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{dir: dir, db: db, logger: logger}, nil
}

// Dir returns the storage root.
func (s *Store) Dir() string { return s.dir }

func (s *Store) jobDir(jobID string) string {
	return filepath.Join(s.dir, jobID)
}

// SaveOriginal stores the uploaded file for a job and records its metadata.
func (s *Store) SaveOriginal(jobID, filename, contentType string, r io.Reader) (*database.JobRecord, error) {
	jobDir := s.jobDir(jobID)
	if err := os.MkdirAll(jobDir, common.DefaultFilePermissions); err != nil {
		return nil, err
	}

	path := filepath.Join(jobDir, originalPrefix+filepath.Base(filename))
	size, err := writeFile(path, r)
	if err != nil {
		return nil, err
	}

	record := &database.JobRecord{
		ID:          jobID,
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	if err := s.db.CreateJob(record); err != nil {
		return nil, err
	}

	s.logger.Info("File uploaded", "job_id", jobID, "filename", filename, "size", size)
	return record, nil
}

// OriginalPath returns the local path of a job's uploaded file.
func (s *Store) OriginalPath(jobID string) (string, error) {
	return s.findFile(jobID, originalPrefix)
}

// SaveCompressed stores a job's compressed result and updates its record.
func (s *Store) SaveCompressed(jobID, filename string, r io.Reader) (int64, error) {
	jobDir := s.jobDir(jobID)
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return 0, ErrJobNotFound
	}

	path := filepath.Join(jobDir, compressedPrefix+filepath.Base(filename))
	size, err := writeFile(path, r)
	if err != nil {
		return 0, err
	}

	if err := s.db.SetCompressedSize(jobID, size); err != nil {
		s.logger.Warn("Failed to record compressed size", "job_id", jobID, "error", err)
	}
	return size, nil
}

// CompressedPath returns the local path of a job's compressed file.
func (s *Store) CompressedPath(jobID string) (string, error) {
	return s.findFile(jobID, compressedPrefix)
}

// Info returns a job's metadata, including the compression ratio once a
// compressed file exists.
func (s *Store) Info(jobID string) (map[string]any, error) {
	record, err := s.db.GetJob(jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	info := map[string]any{
		"filename":     record.Filename,
		"size":         record.Size,
		"upload_time":  record.UploadedAt,
		"content_type": record.ContentType,
	}
	if record.CompressedSize > 0 {
		info["compressed_size"] = record.CompressedSize
		info["compression_ratio"] = compression.SavedRatio(record.Size, record.CompressedSize) * 100
	}
	return info, nil
}

// Cleanup removes a job's directory and record.
func (s *Store) Cleanup(jobID string) error {
	jobDir := s.jobDir(jobID)
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return ErrJobNotFound
	}
	if err := os.RemoveAll(jobDir); err != nil {
		return err
	}
	return s.db.DeleteJob(jobID)
}

func (s *Store) findFile(jobID, prefix string) (string, error) {
	jobDir := s.jobDir(jobID)
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return "", ErrJobNotFound
	}

	matches, err := filepath.Glob(filepath.Join(jobDir, prefix+"*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrFileNotFound
	}
	return matches[0], nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(file, r)
}
