package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	repo, err := NewUserRepository(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func TestUpsertKeepsFirstSeen(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	if err := repo.Upsert(ctx, 42, "alice", "Alice", "", t1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, 42, "alice2", "Alice", "", t2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	users, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	u := users[0]
	if u.Username == nil || *u.Username != "alice2" {
		t.Fatalf("expected username alice2, got %v", u.Username)
	}
	if u.FirstSeen != t1.Format(time.RFC3339) {
		t.Fatalf("expected first_seen %s, got %s", t1.Format(time.RFC3339), u.FirstSeen)
	}
	if u.LastSeen != t2.Format(time.RFC3339) {
		t.Fatalf("expected last_seen %s, got %s", t2.Format(time.RFC3339), u.LastSeen)
	}
}

func TestCountDistinctUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := repo.Upsert(ctx, 1, "a", "", "", now); err != nil {
			t.Fatalf("upsert 1: %v", err)
		}
	}
	if err := repo.Upsert(ctx, 2, "b", "", "", now); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 distinct users, got %d", count)
	}
}

func TestListRecentOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	stamps := map[int64]time.Time{
		10: base.Add(2 * time.Hour),
		11: base,
		12: base.Add(3 * time.Hour),
		13: base.Add(1 * time.Hour),
	}
	for id, ts := range stamps {
		if err := repo.Upsert(ctx, id, "", "", "", ts); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}

	users, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	want := []int64{12, 10, 13}
	for i, id := range want {
		if users[i].UserID != id {
			t.Fatalf("position %d: expected user %d, got %d", i, id, users[i].UserID)
		}
	}
}

func TestUpsertStoresEmptyAsNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, 7, "", "Bob", "", time.Now()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	users, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Username != nil {
		t.Fatalf("expected NULL username, got %q", *users[0].Username)
	}
	if users[0].FirstName == nil || *users[0].FirstName != "Bob" {
		t.Fatalf("expected first name Bob, got %v", users[0].FirstName)
	}
}
