package schtasks

import (
	"context"
	"os"
	"strings"
	"time"

	"datalys2/pkg/logx"
)

// Options configures a Scheduler. Zero fields fall back to defaults.
type Options struct {
	// Runner drives the external utility. Defaults to the real schtasks
	// binary; tests inject a scripted fake.
	Runner Runner

	// Executor is the interpreter/runtime that launches registered scripts.
	// Defaults to the currently running binary.
	Executor string

	// Author is recorded in generated documents. Defaults to the USERNAME
	// environment variable, then "datalys2".
	Author string

	Log logx.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Scheduler is the adapter over the external scheduling utility. It holds no
// in-process shared state; every operation is one blocking subprocess call.
type Scheduler struct {
	runner   Runner
	executor string
	author   string
	log      logx.Logger
	now      func() time.Time
}

func New(opts Options) *Scheduler {
	s := &Scheduler{
		runner:   opts.Runner,
		executor: opts.Executor,
		author:   opts.Author,
		log:      opts.Log,
		now:      opts.Now,
	}
	if s.runner == nil {
		s.runner = NewExecRunner()
	}
	if s.executor == "" {
		if exe, err := os.Executable(); err == nil {
			s.executor = exe
		} else {
			s.executor = os.Args[0]
		}
	}
	if s.author == "" {
		s.author = os.Getenv("USERNAME")
	}
	if s.author == "" {
		s.author = "datalys2"
	}
	if s.log.IsZero() {
		s.log = logx.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create registers spec with the OS scheduler. The generated document is
// written to a temp file that is removed on every exit path; the utility is
// the only reader it ever has.
func (s *Scheduler) Create(ctx context.Context, spec Spec) error {
	name := Qualify(spec.Name)
	now := s.now()

	boundary, err := ResolveStartBoundary(now, spec.StartTime, spec.Kind)
	if err != nil {
		return err
	}
	doc, err := buildDocument(spec, s.executor, s.author, boundary, now)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "datalys2-task-*.xml")
	if err != nil {
		return err
	}
	path := tmp.Name()
	defer os.Remove(path)
	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	args := []string{"/Create", "/TN", name, "/XML", path}
	if spec.Force {
		args = append(args, "/F")
	}
	res, err := s.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CommandError{Op: "create", TaskName: name, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	s.log.Info("task created",
		logx.String("task", name),
		logx.String("kind", string(spec.Kind)),
		logx.Time("start_boundary", boundary))
	return nil
}

// Delete removes a task. Deleting a name that was never registered fails
// with a CommandError carrying the utility's diagnostic.
func (s *Scheduler) Delete(ctx context.Context, name string) error {
	q := Qualify(name)
	res, err := s.runner.Run(ctx, "/Delete", "/TN", q, "/F")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CommandError{Op: "delete", TaskName: q, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	s.log.Info("task deleted", logx.String("task", q))
	return nil
}

// RunNow triggers an immediate execution of a registered task.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	q := Qualify(name)
	res, err := s.runner.Run(ctx, "/Run", "/TN", q)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CommandError{Op: "run", TaskName: q, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	s.log.Info("task triggered", logx.String("task", q))
	return nil
}

// Query fetches one task's details. A task the utility does not know about
// reports (nil, false, nil); only a failure to launch the utility is an
// error, so callers can tell "not registered" from "could not ask".
func (s *Scheduler) Query(ctx context.Context, name string) (Record, bool, error) {
	q := Qualify(name)
	res, err := s.runner.Run(ctx, "/Query", "/TN", q, "/V", "/FO", "CSV")
	if err != nil {
		return nil, false, err
	}
	if res.ExitCode != 0 {
		return nil, false, nil
	}
	recs := parseTable(res.Stdout, s.log)
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs[0], true, nil
}

// List returns all tasks whose TaskName contains pattern as a substring.
// The wildcard "*" short-circuits the filter and returns everything the
// utility reports.
func (s *Scheduler) List(ctx context.Context, pattern string) ([]Record, error) {
	res, err := s.runner.Run(ctx, "/Query", "/V", "/FO", "CSV")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &CommandError{Op: "query", TaskName: pattern, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	var out []Record
	for _, rec := range parseTable(res.Stdout, s.log) {
		if pattern == "*" || strings.Contains(rec.TaskName(), pattern) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListOwned lists only tasks under this system's folder.
func (s *Scheduler) ListOwned(ctx context.Context) ([]Record, error) {
	return s.List(ctx, TaskFolder+`\`)
}
