// Package reliability provides database snapshots and cloud backup.
package reliability

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// BackupMetadata describes one backup archive
type BackupMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// BackupService creates consistent compressed snapshots of the database
type BackupService struct {
	db      *database.DB
	dataDir string
	log     zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, dataDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:      db,
		dataDir: dataDir,
		log:     log.With().Str("service", "backup").Logger(),
	}
}

// CreateSnapshot writes a consistent gzipped copy of the database into the
// staging directory and returns its metadata plus the archive path.
// VACUUM INTO snapshots atomically even with WAL pages outstanding.
func (s *BackupService) CreateSnapshot() (*BackupMetadata, string, error) {
	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	now := time.Now().UTC()
	rawPath := filepath.Join(stagingDir, "trades.db")
	_ = os.Remove(rawPath)

	if _, err := s.db.Exec(`VACUUM INTO ?`, rawPath); err != nil {
		return nil, "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	defer os.Remove(rawPath)

	archiveName := fmt.Sprintf("trades-%s.db.gz", now.Format("20060102-150405"))
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := gzipFile(rawPath, archivePath); err != nil {
		return nil, "", err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat archive: %w", err)
	}
	checksum, err := fileChecksum(archivePath)
	if err != nil {
		return nil, "", err
	}

	meta := &BackupMetadata{
		Timestamp: now,
		Filename:  archiveName,
		SizeBytes: info.Size(),
		Checksum:  checksum,
	}

	metaPath := archivePath + ".json"
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
		return nil, "", fmt.Errorf("failed to write metadata: %w", err)
	}

	s.log.Info().
		Str("archive", archiveName).
		Int64("size_bytes", meta.SizeBytes).
		Msg("Snapshot created")
	return meta, archivePath, nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return gz.Close()
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to checksum file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
