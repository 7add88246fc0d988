package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"

	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

//go:embed static
var staticFS embed.FS

type taskItem struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Status      string `json:"status"`
	NextRunTime string `json:"next_run_time"`
	LastRunTime string `json:"last_run_time"`
	LastResult  string `json:"last_result"`
	Author      string `json:"author"`
	Schedule    string `json:"schedule"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scheduled-tasks/", s.handleList)
	mux.HandleFunc("POST /api/scheduled-tasks/{name}/run", s.limited(s.handleRun))
	mux.HandleFunc("DELETE /api/scheduled-tasks/{name}", s.limited(s.handleDelete))

	sub, err := fs.Sub(staticFS, "static")
	if err == nil {
		mux.Handle("GET /dashboard/", http.StripPrefix("/dashboard/", http.FileServerFS(sub)))
	}
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard/", http.StatusTemporaryRedirect)
	})

	return mux
}

// limited applies the mutation rate limiter: every run/delete spawns a
// subprocess, so abusive clients get 429 instead of a fork storm.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"detail": "too many requests"})
			return
		}
		next(w, r)
	}
}

// handleList returns all tasks under this system's folder as cleaned JSON.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.tasks.List(r.Context(), schtasks.TaskFolder+`\`)
	if err != nil {
		s.log.Error("list failed", logx.Err(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to list tasks"})
		return
	}

	items := make([]taskItem, 0, len(recs))
	for _, t := range recs {
		full := t.TaskName()
		short := full
		if i := strings.LastIndex(full, `\`); i >= 0 {
			short = full[i+1:]
		}
		items = append(items, taskItem{
			Name:        full,
			ShortName:   short,
			Status:      t.Get("Status"),
			NextRunTime: t.Get("Next Run Time"),
			LastRunTime: t.Get("Last Run Time"),
			LastResult:  t.Get("Last Result"),
			Author:      t.Get("Author"),
			Schedule:    t.Get("Schedule Type"),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.tasks.RunNow(r.Context(), name); err != nil {
		s.log.Error("run failed", logx.String("task", name), logx.Err(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to trigger task"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task '" + name + "' triggered successfully"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.tasks.Delete(r.Context(), name); err != nil {
		s.log.Error("delete failed", logx.String("task", name), logx.Err(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "failed to delete task"})
		return
	}
	// Write-through: drop the declared record as well. The store never gates
	// the scheduler call, so a store error only logs.
	if s.store != nil {
		if err := s.store.DeleteTask(r.Context(), schtasks.Qualify(name)); err != nil {
			s.log.Warn("record delete failed", logx.String("task", name), logx.Err(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task '" + name + "' deleted successfully"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
