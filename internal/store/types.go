package store

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// TaskRecord is the declared shape of one registered task: what was asked
// for, plus the last status the reconciler observed.
type TaskRecord struct {
	Name            string
	ScriptPath      string
	ScheduleKind    string
	StartTime       string
	IntervalMinutes int
	Description     string
	LastStatus      string
	NextRunTime     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store is the persistence API used by the CLI and the server.
type Store interface {
	UpsertTask(ctx context.Context, rec TaskRecord) error
	UpdateObserved(ctx context.Context, name, status, nextRun string) error
	ListTasks(ctx context.Context) ([]TaskRecord, error)
	DeleteTask(ctx context.Context, name string) error
	Close() error
}
