package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"datalys2/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) UpsertTask(ctx context.Context, rec TaskRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_tasks(task_name, script_path, schedule_kind, start_time, interval_minutes, description, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?)
		 ON CONFLICT(task_name) DO UPDATE SET
		   script_path=excluded.script_path,
		   schedule_kind=excluded.schedule_kind,
		   start_time=excluded.start_time,
		   interval_minutes=excluded.interval_minutes,
		   description=excluded.description,
		   updated_at=excluded.updated_at`,
		rec.Name, rec.ScriptPath, rec.ScheduleKind, nullStr(rec.StartTime), nullInt(rec.IntervalMinutes),
		nullStr(rec.Description), rec.CreatedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) UpdateObserved(ctx context.Context, name, status, nextRun string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_tasks SET last_status=?, next_run_time=?, updated_at=? WHERE task_name=?`,
		nullStr(status), nullStr(nextRun), time.Now().Format(time.RFC3339Nano), name,
	)
	return err
}

func (s *sqliteStore) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_name, script_path, schedule_kind, start_time, interval_minutes, description, last_status, next_run_time, created_at, updated_at
		 FROM scheduled_tasks ORDER BY task_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskRecord
	for rows.Next() {
		var rec TaskRecord
		var startTime, description, lastStatus, nextRun sql.NullString
		var interval sql.NullInt64
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.Name, &rec.ScriptPath, &rec.ScheduleKind, &startTime, &interval,
			&description, &lastStatus, &nextRun, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		rec.StartTime = startTime.String
		rec.IntervalMinutes = int(interval.Int64)
		rec.Description = description.String
		rec.LastStatus = lastStatus.String
		rec.NextRunTime = nextRun.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteTask(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE task_name=?`, name)
	return err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
