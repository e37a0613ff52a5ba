package service

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeLiveDB(t *testing.T, dir string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, "users.db")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write live db: %v", err)
	}
	return path
}

func TestCreateSnapshotCopiesLiveFile(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDB(t, dir, []byte("registry-bytes"))
	svc := NewBackupService(live, filepath.Join(dir, "backups"))

	path, err := svc.CreateSnapshot(OriginManual)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	name := filepath.Base(path)
	if ok, _ := regexp.MatchString(`^users_\d{8}_\d{6}\.db$`, name); !ok {
		t.Fatalf("unexpected snapshot name %q", name)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(got) != "registry-bytes" {
		t.Fatalf("snapshot content differs: %q", got)
	}
}

func TestCreateSnapshotMissingSource(t *testing.T) {
	dir := t.TempDir()
	svc := NewBackupService(filepath.Join(dir, "missing.db"), filepath.Join(dir, "backups"))

	if _, err := svc.CreateSnapshot(OriginScheduled); err == nil {
		t.Fatal("expected error when live registry is missing")
	}
}

func TestCreateSafetyCopyNoLiveFileIsNoop(t *testing.T) {
	dir := t.TempDir()
	svc := NewBackupService(filepath.Join(dir, "missing.db"), filepath.Join(dir, "backups"))

	path, err := svc.CreateSafetyCopy()
	if err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
}

func TestCreateSafetyCopyNaming(t *testing.T) {
	dir := t.TempDir()
	live := writeLiveDB(t, dir, []byte("to-protect"))
	svc := NewBackupService(live, filepath.Join(dir, "backups"))

	path, err := svc.CreateSafetyCopy()
	if err != nil {
		t.Fatalf("create safety copy: %v", err)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "pre_restore_") || !strings.HasSuffix(name, ".bak") {
		t.Fatalf("unexpected safety copy name %q", name)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read safety copy: %v", err)
	}
	if string(got) != "to-protect" {
		t.Fatalf("safety copy content differs: %q", got)
	}
}
