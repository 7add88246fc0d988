package server

import (
	"context"

	"datalys2/internal/store"
)

// fakeStore records write-through calls.
type fakeStore struct {
	observed []string
	deleted  []string
}

func (f *fakeStore) UpsertTask(context.Context, store.TaskRecord) error { return nil }

func (f *fakeStore) UpdateObserved(_ context.Context, name, status, nextRun string) error {
	f.observed = append(f.observed, name+" "+status+" "+nextRun)
	return nil
}

func (f *fakeStore) ListTasks(context.Context) ([]store.TaskRecord, error) { return nil, nil }

func (f *fakeStore) DeleteTask(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeStore) Close() error { return nil }
