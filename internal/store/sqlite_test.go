package store

import (
	"context"
	"path/filepath"
	"testing"

	"datalys2/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "t.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "none"}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("disabled storage should be (nil, nil), got (%v, %v)", st, err)
	}
}

func TestUpsertListDeleteRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	rec := TaskRecord{
		Name:         `\datalys2\nightly`,
		ScriptPath:   `C:\jobs\nightly.py`,
		ScheduleKind: "DAILY",
		StartTime:    "02:00",
		Description:  "nightly sync",
	}
	if err := st.UpsertTask(ctx, rec); err != nil {
		t.Fatalf("UpsertTask: %v", err)
	}

	// Upsert with the same name updates in place.
	rec.StartTime = "03:00"
	if err := st.UpsertTask(ctx, rec); err != nil {
		t.Fatalf("second UpsertTask: %v", err)
	}

	got, err := st.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].StartTime != "03:00" || got[0].ScheduleKind != "DAILY" {
		t.Fatalf("unexpected record: %+v", got[0])
	}
	if got[0].CreatedAt.IsZero() || got[0].UpdatedAt.IsZero() {
		t.Fatalf("timestamps not persisted: %+v", got[0])
	}

	if err := st.UpdateObserved(ctx, rec.Name, "Ready", "2026-08-28 03:00"); err != nil {
		t.Fatalf("UpdateObserved: %v", err)
	}
	got, _ = st.ListTasks(ctx)
	if got[0].LastStatus != "Ready" || got[0].NextRunTime != "2026-08-28 03:00" {
		t.Fatalf("observed state not stored: %+v", got[0])
	}

	if err := st.DeleteTask(ctx, rec.Name); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	got, _ = st.ListTasks(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty store after delete, got %v", got)
	}
}
