// Package undo holds the most recently deleted conversation for a short
// recovery window.
package undo

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dhamidi/askiq/history"
)

// DefaultWindow is how long a deleted conversation stays recoverable.
const DefaultWindow = 5 * time.Second

// Record is a deleted conversation and the index it was deleted from.
type Record struct {
	Conversation *history.Conversation
	Index        int
}

// Buffer keeps at most one Record. Remembering a new record replaces the
// pending one and restarts the window; when the window elapses the record is
// forgotten.
type Buffer struct {
	mu       sync.Mutex
	window   time.Duration
	pending  *Record
	timer    *time.Timer
	gen      uint64
	onExpire func(Record)
}

// New returns an empty Buffer. A non-positive window selects DefaultWindow.
func New(window time.Duration) *Buffer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Buffer{window: window}
}

// Window is the recovery window of the buffer.
func (b *Buffer) Window() time.Duration {
	return b.window
}

// OnExpire registers fn to be called, outside the buffer's lock, whenever a
// record is forgotten because its window elapsed.
func (b *Buffer) OnExpire(fn func(Record)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onExpire = fn
}

// Remember stores conv as the pending record, dropping any earlier one.
func (b *Buffer) Remember(conv *history.Conversation, index int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetLocked()
	b.pending = &Record{Conversation: conv, Index: index}
	gen := b.gen
	b.timer = time.AfterFunc(b.window, func() { b.expire(gen) })
}

// Recall returns the pending record without consuming it.
func (b *Buffer) Recall() (Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Record{}, false
	}
	return *b.pending, true
}

// Restore consumes the pending record. A restored record cannot be restored again.
func (b *Buffer) Restore() (Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Record{}, false
	}
	rec := *b.pending
	b.resetLocked()
	return rec, true
}

// Discard forgets the pending record, if any.
func (b *Buffer) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
}

// resetLocked stops the timer and invalidates any expiry already in flight.
func (b *Buffer) resetLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pending = nil
	b.gen++
}

func (b *Buffer) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.pending == nil {
		b.mu.Unlock()
		return
	}
	rec := *b.pending
	b.pending = nil
	b.timer = nil
	fn := b.onExpire
	b.mu.Unlock()

	log.Debug().Str("conversation", rec.Conversation.ID).Int("index", rec.Index).Msg("undo window elapsed")
	if fn != nil {
		fn(rec)
	}
}
