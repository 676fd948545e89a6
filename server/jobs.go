package server

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/skybiz/skybiz/server/gstorage"
	"github.com/skybiz/skybiz/server/models"
	"github.com/skybiz/skybiz/shared"
)

const SQLITE_BACKUP_FILE = "skybiz-backup.db"

type uploader interface {
	UploadFile(ctx context.Context, bucket, prefix, filePath string) (string, error)
}

// sqliteBackupJob snapshots the sqlite database and uploads the copy to Google Cloud Storage.
type sqliteBackupJob struct {
	storage    uploader
	bucket     string
	prefix     string
	backupPath string
}

func newSqliteBackupJob(config shared.GoogleConfig, configDir string) (*sqliteBackupJob, error) {
	storage, err := gstorage.NewGStorage(config.ApplicationCredentials)
	if err != nil {
		return nil, err
	}

	dbDir, err := models.DbDirectory(configDir)
	if err != nil {
		return nil, err
	}

	return &sqliteBackupJob{
		storage:    storage,
		bucket:     config.Storage.Bucket,
		prefix:     config.Storage.Prefix,
		backupPath: filepath.Join(dbDir, SQLITE_BACKUP_FILE),
	}, nil
}

func (job *sqliteBackupJob) run() {
	if err := job.backup(context.Background()); err != nil {
		logg.Errorf("backupSqliteDb: %v", err)
	}
}

func (job *sqliteBackupJob) backup(ctx context.Context) error {
	if err := models.SnapshotSqlite(job.backupPath); err != nil {
		return fmt.Errorf("snapshot: %v", err)
	}

	objectName, err := job.storage.UploadFile(ctx, job.bucket, job.prefix, job.backupPath)
	if err != nil {
		return fmt.Errorf("upload: %v", err)
	}

	logg.Infof("backupSqliteDb: uploaded gs://%v/%v", job.bucket, objectName)
	return nil
}
