// Package history records the outcome of each notification so that
// operators can see what was delivered recently.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kart-io/feishu-notifier/pkg/config"
	"github.com/kart-io/feishu-notifier/pkg/logger"
)

// DefaultSize is the number of entries kept when none is configured.
const DefaultSize = 100

// Entry is one recorded send.
type Entry struct {
	Time       time.Time     `json:"time"`
	Title      string        `json:"title"`
	OK         bool          `json:"ok"`
	StatusCode int           `json:"status_code,omitempty"`
	Code       *int          `json:"code,omitempty"`
	Msg        string        `json:"msg,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Recorder stores entries, newest first.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	// Recent returns up to n entries, newest first. n <= 0 means all.
	Recent(ctx context.Context, n int) ([]Entry, error)
	Close() error
}

// NewRecorder builds the recorder selected by cfg. A disabled backend
// returns a nil Recorder and no error.
func NewRecorder(cfg config.HistoryConfig, log logger.Logger) (Recorder, error) {
	switch cfg.Backend {
	case config.HistoryDisabled:
		return nil, nil
	case config.HistoryMemory:
		return NewMemoryRecorder(cfg.Size), nil
	case config.HistoryRedis:
		r, err := NewRedisRecorder(&RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
			Size:     cfg.Size,
			TTL:      cfg.TTL,
		}, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}

// MemoryRecorder keeps the latest entries in a fixed-size ring.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryRecorder creates a recorder holding at most size entries.
func NewMemoryRecorder(size int) *MemoryRecorder {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryRecorder{entries: make([]Entry, size)}
}

// Record stores entry, evicting the oldest one when full.
func (m *MemoryRecorder) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = entry
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryRecorder) Recent(_ context.Context, n int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.next
	if m.full {
		count = len(m.entries)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}

func (m *MemoryRecorder) Close() error { return nil }
