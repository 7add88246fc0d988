package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"datalys2/internal/config"
	"datalys2/internal/store"
	"datalys2/pkg/logx"
	"datalys2/pkg/schtasks"
)

// TaskManager is the slice of the scheduler adapter the HTTP layer consumes.
// *schtasks.Scheduler implements it; tests substitute a stub.
type TaskManager interface {
	List(ctx context.Context, pattern string) ([]schtasks.Record, error)
	RunNow(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

type Options struct {
	Config config.ServerConfig
	Tasks  TaskManager
	Store  store.Store // optional; nil disables the record store and reconciler
	Log    logx.Logger
}

// Server owns the HTTP listener, the mutation rate limiter, and the optional
// store reconciler. Lifecycle: New, Start, Stop.
type Server struct {
	log     logx.Logger
	tasks   TaskManager
	store   store.Store
	limiter *rate.Limiter
	cronner *cron.Cron

	mu   sync.Mutex
	srv  *http.Server
	ln   net.Listener
	addr string

	listenAddr string
}

func New(opts Options) (*Server, error) {
	if opts.Tasks == nil {
		return nil, errors.New("server: TaskManager is required")
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}

	rps := opts.Config.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	burst := opts.Config.Burst
	if burst <= 0 {
		burst = rps
	}

	s := &Server{
		log:        log.With(logx.String("comp", "server")),
		tasks:      opts.Tasks,
		store:      opts.Store,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		listenAddr: opts.Config.Addr(),
	}

	if spec := opts.Config.Reconcile; spec != "" && opts.Store != nil {
		c := cron.New()
		if _, err := c.AddFunc(spec, s.reconcile); err != nil {
			return nil, errors.New("server: invalid reconcile expression: " + err.Error())
		}
		s.cronner = c
	}
	return s, nil
}

// Start binds the listener and begins serving. It returns once the listener
// is up; serving continues in the background until Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:     s.routes(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: time.Minute,
	}

	s.srv = srv
	s.ln = ln
	s.addr = ln.Addr().String()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("server error", logx.String("addr", s.addr), logx.Err(err))
		}
	}()
	if s.cronner != nil {
		s.cronner.Start()
	}
	s.log.Info("server listening", logx.String("addr", s.addr))
	return nil
}

// Stop gracefully shuts down the server and the reconciler.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cronner != nil {
		<-s.cronner.Stop().Done()
	}
	if s.srv == nil {
		return
	}
	srv := s.srv
	ln := s.ln
	addr := s.addr
	s.srv = nil
	s.ln = nil
	s.addr = ""

	shutdownCtx := ctx
	if shutdownCtx == nil {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Warn("server shutdown error", logx.String("addr", addr), logx.Err(err))
	}
	if ln != nil {
		_ = ln.Close()
	}
	s.log.Info("server stopped", logx.String("addr", addr))
}

// Addr reports the actual listen address if running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// reconcile refreshes the record store's observed columns from live
// scheduler state. Failures are logged and retried on the next tick.
func (s *Server) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recs, err := s.tasks.List(ctx, schtasks.TaskFolder+`\`)
	if err != nil {
		s.log.Warn("reconcile list failed", logx.Err(err))
		return
	}
	for _, r := range recs {
		name := r.TaskName()
		if name == "" {
			continue
		}
		if err := s.store.UpdateObserved(ctx, name, r.Get("Status"), r.Get("Next Run Time")); err != nil {
			s.log.Warn("reconcile update failed", logx.String("task", name), logx.Err(err))
		}
	}
	s.log.Debug("reconciled record store", logx.Int("tasks", len(recs)))
}
