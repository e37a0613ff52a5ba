package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DownloadFunc fetches the restore candidate's bytes into dest. The bot
// supplies one that downloads a Telegram document; tests supply a local
// copy. Keeping the transport out of the pipeline keeps the stages pure
// file work.
type DownloadFunc func(ctx context.Context, dest string) error

// RestoreService replaces the live registry with an uploaded candidate.
//
// The pipeline is linear with early exit: validate the candidate name,
// stage it into the backup directory, take a safety copy of the current
// registry, then promote the staged file. Promotion writes to a temporary
// file next to the live registry and renames it into place, so a failed
// attempt never leaves a partially written registry.
type RestoreService struct {
	dbPath  string
	backups *BackupService
}

func NewRestoreService(dbPath string, backups *BackupService) *RestoreService {
	return &RestoreService{dbPath: dbPath, backups: backups}
}

// Restore runs the full pipeline for one candidate. fileName is the name
// the candidate was uploaded under; uniqueID keys the staging file so
// concurrent attempts cannot collide. Any returned error is a
// *RestoreError and terminal for this attempt.
func (s *RestoreService) Restore(ctx context.Context, fileName, uniqueID string, download DownloadFunc) error {
	if !strings.HasSuffix(fileName, ".db") {
		return &RestoreError{Stage: StageValidate, Err: ErrInvalidFormat}
	}

	if err := os.MkdirAll(s.backups.BackupDir(), 0o755); err != nil {
		return &RestoreError{Stage: StageDownload, Err: fmt.Errorf("create backup dir: %w", err)}
	}
	staged := filepath.Join(s.backups.BackupDir(), "restore_tmp_"+uniqueID+".db")
	if err := download(ctx, staged); err != nil {
		s.cleanup(staged)
		return &RestoreError{Stage: StageDownload, Err: err}
	}
	defer s.cleanup(staged)

	if _, err := s.backups.CreateSafetyCopy(); err != nil {
		return &RestoreError{Stage: StageSafetyCopy, Err: err}
	}

	if err := s.promote(staged); err != nil {
		return &RestoreError{Stage: StagePromote, Err: err}
	}
	return nil
}

// promote copies the staged candidate to a temp file in the live
// registry's directory, then renames it over the live path. The rename is
// atomic within one filesystem, so the registry is either the old bytes or
// the new bytes, never a partial write.
func (s *RestoreService) promote(staged string) error {
	dir := filepath.Dir(s.dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registry dir: %w", err)
		}
	}

	tmp := s.dbPath + fmt.Sprintf(".promote_%d.tmp", time.Now().UnixNano())
	if err := copyFile(staged, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.dbPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// cleanup removes the staged file on every exit path. Best effort only.
func (s *RestoreService) cleanup(staged string) {
	if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
		log.Printf("[warn] remove staged restore file %s: %v", staged, err)
	}
}
