package service

import (
	"strings"
	"testing"
	"time"

	"menu-bot/internal/model"
)

func strPtr(s string) *string { return &s }

func TestBuildUsersCSVHeaderOnly(t *testing.T) {
	got := string(BuildUsersCSV(nil))
	want := "user_id,username,first_name,last_name,first_seen,last_seen\n"
	if got != want {
		t.Fatalf("expected header only, got %q", got)
	}
}

func TestBuildUsersCSVSanitizesCommas(t *testing.T) {
	users := []model.User{{
		UserID:    42,
		Username:  strPtr("alice"),
		FirstName: strPtr("Alice, the first"),
		LastName:  nil,
		FirstSeen: "2026-08-01T10:00:00Z",
		LastSeen:  "2026-08-01T11:00:00Z",
	}}

	out := string(BuildUsersCSV(users))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	want := "42,alice,Alice  the first,,2026-08-01T10:00:00Z,2026-08-01T11:00:00Z"
	if lines[1] != want {
		t.Fatalf("expected row %q, got %q", want, lines[1])
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 8, 29, 3, 4, 5, 0, time.UTC)
	if got := ExportFileName(now); got != "users_20260829_030405.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}
