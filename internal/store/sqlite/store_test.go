package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/k2wGG/Check-bot/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordCheckin(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec, err := store.RecordCheckin(ctx, model.CheckinRecord{
		Email:   "a@b.com",
		Subject: "123",
		Balance: 42,
		Award:   25,
		Status:  model.StatusCheckedIn,
	})
	if err != nil {
		t.Fatalf("RecordCheckin error: %v", err)
	}
	if rec.ID == "" {
		t.Error("ID not assigned")
	}
	if rec.At.IsZero() {
		t.Error("At not assigned")
	}
}

func TestRecordCheckin_RequiresStatus(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.RecordCheckin(context.Background(), model.CheckinRecord{}); err == nil {
		t.Fatal("expected error for missing status")
	}
}

func TestListCheckins_NewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		_, err := store.RecordCheckin(ctx, model.CheckinRecord{
			Subject: "123",
			Status:  model.StatusCooldown,
			At:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.ListCheckins(ctx, 2)
	if err != nil {
		t.Fatalf("ListCheckins error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if !records[0].At.After(records[1].At) {
		t.Errorf("records not newest-first: %v then %v", records[0].At, records[1].At)
	}
}

func TestLastCheckin(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.LastCheckin(ctx, "123"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	_, err := store.RecordCheckin(ctx, model.CheckinRecord{
		Subject: "123",
		Status:  model.StatusCooldown,
		At:      time.Now().Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Now().Add(-time.Hour)
	_, err = store.RecordCheckin(ctx, model.CheckinRecord{
		Subject: "123",
		Award:   10,
		Status:  model.StatusCheckedIn,
		At:      want,
	})
	if err != nil {
		t.Fatal(err)
	}

	rec, ok, err := store.LastCheckin(ctx, "123")
	if err != nil {
		t.Fatalf("LastCheckin error: %v", err)
	}
	if !ok {
		t.Fatal("expected a successful check-in row")
	}
	if rec.Status != model.StatusCheckedIn || rec.Award != 10 {
		t.Errorf("rec = %+v", rec)
	}
	if rec.At.UnixMilli() != want.UnixMilli() {
		t.Errorf("At = %v, want %v", rec.At, want)
	}
}
