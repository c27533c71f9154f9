// internal/activity/log.go
package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxEntries bounds the in-memory log; the oldest entries are evicted first.
const MaxEntries = 1000

// Level classifies an entry for display.
type Level string

// Type names the subsystem an entry came from.
type Type string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"

	TypeSignal Type = "signal"
	TypeTrade  Type = "trade"
	TypeSystem Type = "system"
	TypeWallet Type = "wallet"
)

// Entry is one activity log record.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Type      Type           `json:"type"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Listener receives every new entry. Listeners are invoked synchronously
// under the log's lock ordering, so they must be fast and must not call
// back into the log.
type Listener func(Entry)

// Subscription detaches a listener.
type Subscription interface {
	Unsubscribe()
}

// Log is an append-only, capacity-bounded activity feed with observer
// notification. Entries are held newest-first.
type Log struct {
	mu        sync.RWMutex
	entries   []Entry
	listeners map[string]Listener
	logger    *zap.Logger
}

// NewLog creates an empty activity log.
func NewLog(logger *zap.Logger) *Log {
	return &Log{
		listeners: make(map[string]Listener),
		logger:    logger.Named("activity"),
	}
}

// Add prepends an entry, truncates to capacity and notifies subscribers.
func (l *Log) Add(level Level, typ Type, message string, details map[string]any) Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Level:     level,
		Type:      typ,
		Message:   message,
		Details:   details,
	}

	l.mu.Lock()
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	listeners := make([]Listener, 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return entry
}

// Subscribe registers a listener for new entries.
func (l *Log) Subscribe(fn Listener) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := uuid.New().String()
	l.listeners[id] = fn

	l.logger.Debug("Listener subscribed", zap.String("subscription_id", id))
	return &subscription{id: id, log: l}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

type subscription struct {
	id  string
	log *Log
}

func (s *subscription) Unsubscribe() {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	delete(s.log.listeners, s.id)
}

// LogSignal records a signal evaluation, inferring the level from its
// confidence: >=70 success, >=50 info, below that warning.
func (l *Log) LogSignal(message string, confidence float64, details map[string]any) Entry {
	level := LevelWarning
	switch {
	case confidence >= 70:
		level = LevelSuccess
	case confidence >= 50:
		level = LevelInfo
	}
	return l.Add(level, TypeSignal, message, details)
}

// LogTrade records a trade outcome: success level for filled trades, error
// for failed ones.
func (l *Log) LogTrade(message string, success bool, details map[string]any) Entry {
	level := LevelSuccess
	if !success {
		level = LevelError
	}
	return l.Add(level, TypeTrade, message, details)
}

// LogSystem records scheduler/lifecycle messages.
func (l *Log) LogSystem(level Level, message string, details map[string]any) Entry {
	return l.Add(level, TypeSystem, message, details)
}

// LogWallet records balance/funding messages.
func (l *Log) LogWallet(level Level, message string, details map[string]any) Entry {
	return l.Add(level, TypeWallet, message, details)
}
