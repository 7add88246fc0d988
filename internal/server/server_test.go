package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"datalys2/internal/config"
	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

// stubTasks scripts the scheduler adapter for handler tests.
type stubTasks struct {
	records []schtasks.Record
	listErr error

	ran     []string
	deleted []string
	opErr   error
}

func (s *stubTasks) List(_ context.Context, pattern string) ([]schtasks.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []schtasks.Record
	for _, r := range s.records {
		if pattern == "*" || strings.Contains(r.TaskName(), pattern) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubTasks) RunNow(_ context.Context, name string) error {
	s.ran = append(s.ran, name)
	return s.opErr
}

func (s *stubTasks) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return s.opErr
}

func newTestServer(t *testing.T, stub *stubTasks, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	s, err := New(Options{Config: cfg, Tasks: stub, Log: logx.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestListReturnsOwnedTasks(t *testing.T) {
	t.Parallel()
	stub := &stubTasks{records: []schtasks.Record{
		{"TaskName": `\datalys2\nightly`, "Status": "Ready", "Next Run Time": "28/08/2026 02:00:00"},
		{"TaskName": `\Microsoft\Windows\Defrag`, "Status": "Ready"},
	}}
	ts := newTestServer(t, stub, config.ServerConfig{})

	resp, err := http.Get(ts.URL + "/api/scheduled-tasks/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var items []taskItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only owned tasks, got %v", items)
	}
	if items[0].ShortName != "nightly" || items[0].Status != "Ready" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	// Columns the utility did not emit come back as "unknown", not empty.
	if items[0].Author != "unknown" {
		t.Fatalf("Author = %q, want unknown", items[0].Author)
	}
}

func TestRunDecodesEscapedName(t *testing.T) {
	t.Parallel()
	stub := &stubTasks{}
	ts := newTestServer(t, stub, config.ServerConfig{})

	resp, err := http.Post(ts.URL+"/api/scheduled-tasks/%5Cdatalys2%5Cnightly/run", "", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(stub.ran) != 1 || stub.ran[0] != `\datalys2\nightly` {
		t.Fatalf("ran = %v", stub.ran)
	}
}

func TestDeleteFailureSurfacesAs500(t *testing.T) {
	t.Parallel()
	stub := &stubTasks{opErr: &schtasks.CommandError{Op: "delete", TaskName: "ghost", ExitCode: 1, Stderr: "not found"}}
	ts := newTestServer(t, stub, config.ServerConfig{})

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/scheduled-tasks/ghost", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	t.Parallel()
	stub := &stubTasks{}
	ts := newTestServer(t, stub, config.ServerConfig{RatePerSec: 1, Burst: 1})

	limited := false
	for i := 0; i < 5; i++ {
		resp, err := http.Post(ts.URL+"/api/scheduled-tasks/j/run", "", nil)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Fatal("expected at least one 429 from the limiter")
	}
}

func TestBadReconcileExpressionRejected(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	_, err := New(Options{
		Config: config.ServerConfig{Reconcile: "not a cron"},
		Tasks:  &stubTasks{},
		Store:  st,
		Log:    logx.Nop(),
	})
	if err == nil {
		t.Fatal("expected error for invalid reconcile expression")
	}
}

func TestReconcileUpdatesStore(t *testing.T) {
	t.Parallel()
	stub := &stubTasks{records: []schtasks.Record{
		{"TaskName": `\datalys2\nightly`, "Status": "Running", "Next Run Time": "N/A"},
	}}
	st := &fakeStore{}
	s, err := New(Options{
		Config: config.ServerConfig{Reconcile: "*/5 * * * *"},
		Tasks:  stub,
		Store:  st,
		Log:    logx.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.reconcile()
	if len(st.observed) != 1 {
		t.Fatalf("expected 1 observed update, got %v", st.observed)
	}
	if st.observed[0] != `\datalys2\nightly Running N/A` {
		t.Fatalf("unexpected update: %q", st.observed[0])
	}
}
