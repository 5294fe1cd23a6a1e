package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func newTestSession(id string, updated time.Time) *models.Session {
	return &models.Session{
		ID:        id,
		Seed:      42,
		Series:    synth.GenerateSeries(synth.NewSeeded(42)),
		Controls:  models.DefaultControls(),
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestSQLiteDB_AddAndGetSession(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	sess := newTestSession("sess_1", now)

	if err := db.Add(ctx, sess); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Seed != 42 {
		t.Errorf("expected seed 42, got %d", got.Seed)
	}
	if len(got.Series) != 36 {
		t.Fatalf("expected 36 rows, got %d", len(got.Series))
	}
	for i := range sess.Series {
		if got.Series[i] != sess.Series[i] {
			t.Errorf("row %d changed in storage: %+v vs %+v", i, sess.Series[i], got.Series[i])
		}
	}
	if got.Controls != sess.Controls {
		t.Errorf("expected controls %+v, got %+v", sess.Controls, got.Controls)
	}
	if !got.UpdatedAt.Equal(time.Unix(0, now.UnixNano())) {
		t.Errorf("expected updated_at %v, got %v", now, got.UpdatedAt)
	}
}

func TestSQLiteDB_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := db.GetByID(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for nonexistent ID, got %+v", got)
	}
}

func TestSQLiteDB_Update(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	sess := newTestSession("sess_upd", time.Now())
	if err := db.Add(ctx, sess); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	sess.Controls = models.Controls{From: 1995, To: 2000, Target: 2.0}
	sess.UpdatedAt = sess.UpdatedAt.Add(time.Minute)
	if err := db.Update(ctx, sess); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := db.GetByID(ctx, "sess_upd")
	if got.Controls.From != 1995 || got.Controls.To != 2000 || got.Controls.Target != 2.0 {
		t.Errorf("controls not updated: %+v", got.Controls)
	}

	missing := newTestSession("ghost", time.Now())
	if err := db.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_DuplicateAdd(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	sess := newTestSession("dup_test", time.Now())

	if err := db.Add(ctx, sess); err != nil {
		t.Fatalf("First Add failed: %v", err)
	}
	if err := db.Add(ctx, sess); err == nil {
		t.Error("expected error for duplicate ID, got nil")
	}
}

func TestSQLiteDB_DeleteIdleSince(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	db.Add(ctx, newTestSession("old1", now.Add(-2*time.Hour)))
	db.Add(ctx, newTestSession("old2", now.Add(-time.Hour)))
	db.Add(ctx, newTestSession("fresh", now))

	count, err := db.DeleteIdleSince(ctx, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("DeleteIdleSince failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 sessions removed, got %d", count)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session left, got %d", n)
	}

	if err := db.Delete(ctx, "fresh"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	n, _ = db.Count(ctx)
	if n != 0 {
		t.Errorf("expected 0 sessions, got %d", n)
	}
}
