package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SnapshotOrigin records why a snapshot was taken.
type SnapshotOrigin string

const (
	OriginManual    SnapshotOrigin = "manual"
	OriginScheduled SnapshotOrigin = "scheduled"
)

const timestampLayout = "20060102_150405"

// BackupService copies the live registry file into the backup directory.
// Snapshots are named by UTC timestamp and never mutated after creation.
type BackupService struct {
	dbPath    string
	backupDir string
}

func NewBackupService(dbPath, backupDir string) *BackupService {
	return &BackupService{dbPath: dbPath, backupDir: backupDir}
}

// BackupDir returns the directory snapshots are written to.
func (s *BackupService) BackupDir() string {
	return s.backupDir
}

// CreateSnapshot copies the live registry to
// <backup_dir>/users_<YYYYMMDD_HHMMSS>.db and returns the snapshot path.
// It fails if the live registry does not exist or the copy cannot be
// written; the backup directory is created if absent.
func (s *BackupService) CreateSnapshot(origin SnapshotOrigin) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	dest := filepath.Join(s.backupDir, fmt.Sprintf("users_%s.db", time.Now().UTC().Format(timestampLayout)))
	if err := copyFile(s.dbPath, dest); err != nil {
		return "", fmt.Errorf("snapshot (%s): %w", origin, err)
	}
	return dest, nil
}

// CreateSafetyCopy copies the live registry to
// <backup_dir>/pre_restore_<YYYYMMDD_HHMMSS>.bak before a destructive
// restore. A fresh install has nothing to protect: if the live registry
// does not exist yet the call is a no-op and returns an empty path.
func (s *BackupService) CreateSafetyCopy() (string, error) {
	if _, err := os.Stat(s.dbPath); os.IsNotExist(err) {
		return "", nil
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	dest := filepath.Join(s.backupDir, fmt.Sprintf("pre_restore_%s.bak", time.Now().UTC().Format(timestampLayout)))
	if err := copyFile(s.dbPath, dest); err != nil {
		return "", fmt.Errorf("safety copy: %w", err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}
