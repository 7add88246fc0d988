package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"datalys2/pkg/logx"
)

// Manager owns the config file: strict parsing, the current committed value,
// and an optional fsnotify watch that republishes on change. Subscribers get
// the new *Config after it parsed and validated; a broken edit never replaces
// a good committed config.
type Manager struct {
	path string

	mu  sync.RWMutex
	cfg *Config

	// subsMu guards the subscriber list and ensures we never send on a
	// channel that is concurrently being closed in Unsubscribe().
	subsMu sync.Mutex
	subs   []chan *Config

	log logx.Logger

	// lastHash tracks the last committed content so editor-induced double
	// write events without content changes do not republish.
	lastHash uint64
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

func (m *Manager) Parse() (*Config, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(m.path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath()
	}
	if _, err := cfg.Storage.BusyTimeoutDuration(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load parses and commits. A missing file commits the defaults instead of
// failing, so the tool works with zero setup.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if os.IsNotExist(err) {
		cfg = Default()
		err = nil
	}
	if err != nil {
		return nil, err
	}
	m.Commit(cfg)
	return cfg, nil
}

func (m *Manager) Commit(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.lastHash = hashConfig(cfg)
	m.mu.Unlock()
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Subscribe(buffer int) chan *Config {
	ch := make(chan *Config, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) Unsubscribe(ch chan *Config) {
	if ch == nil {
		return
	}
	m.subsMu.Lock()
	for i, sub := range m.subs {
		if sub == ch {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			break
		}
	}
	m.subsMu.Unlock()
	close(ch)
}

func (m *Manager) publish(cfg *Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- cfg:
		default:
			// Slow subscriber: drop rather than block the watch loop.
		}
	}
}

// Watch re-reads the file on filesystem events until ctx is done. Events are
// debounced; a parse failure keeps the previous committed config.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files, which drops a watch on the
	// file itself.
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		reload := func() {
			cfg, err := m.Parse()
			if err != nil {
				m.log.Warn("config reload failed, keeping previous", logx.Err(err))
				return
			}
			h := hashConfig(cfg)
			m.mu.Lock()
			unchanged := h == m.lastHash
			m.mu.Unlock()
			if unchanged {
				return
			}
			m.Commit(cfg)
			m.log.Info("config reloaded", logx.String("path", m.path))
			m.publish(cfg)
		}
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(m.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.log.Warn("config watch error", logx.Err(err))
			}
		}
	}()
	return nil
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
