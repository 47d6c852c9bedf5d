// Package notify carries user-visible board notifications (the toasts of the board UI).
package notify

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	ID      int64
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives notifications emitted by the board.
type Notifier interface {
	Notify(level Level, message string)
}

const defaultCapacity = 50

// Feed keeps the most recent notifications in a ring buffer and logs each one.
type Feed struct {
	mu     sync.Mutex
	buf    []Notification
	next   int
	size   int
	lastID int64
	now    func() time.Time
}

// NewFeed returns a Feed holding up to capacity notifications (50 if capacity <= 0).
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Feed{buf: make([]Notification, capacity), now: time.Now}
}

func (f *Feed) Notify(level Level, message string) {
	f.mu.Lock()
	f.lastID++
	f.buf[f.next] = Notification{ID: f.lastID, Level: level, Message: message, At: f.now().UTC()}
	f.next = (f.next + 1) % len(f.buf)
	if f.size < len(f.buf) {
		f.size++
	}
	f.mu.Unlock()

	log.Printf("notify %s: %s", level, message)
}

// Recent returns up to limit notifications, newest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Notification, 0, n)
	for i := 1; i <= n; i++ {
		idx := (f.next - i + len(f.buf)) % len(f.buf)
		out = append(out, f.buf[idx])
	}
	return out
}

// Discard drops notifications. Useful for callers that have no one to show them to.
type Discard struct{}

func (Discard) Notify(Level, string) {}
