package reliability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob snapshots the database and ships the archive to the configured
// bucket. With no uploader the snapshot stays local.
type BackupJob struct {
	backups  *BackupService
	uploader *S3Client
	log      zerolog.Logger
}

// NewBackupJob creates the backup job. uploader may be nil.
func NewBackupJob(backups *BackupService, uploader *S3Client, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups:  backups,
		uploader: uploader,
		log:      log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run creates a snapshot and uploads it when a bucket is configured
func (j *BackupJob) Run() error {
	_, archivePath, err := j.backups.CreateSnapshot()
	if err != nil {
		return err
	}

	if j.uploader == nil {
		j.log.Debug().Msg("No upload bucket configured, snapshot kept local")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.uploader.UploadSnapshot(ctx, archivePath); err != nil {
		return err
	}

	// Uploaded snapshots need no local copy.
	_ = os.Remove(archivePath)
	_ = os.Remove(archivePath + ".json")
	return nil
}
