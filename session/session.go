// Package session owns the active chat transcript and keeps it consistent
// with the list of saved conversations.
package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/index"
	"github.com/dhamidi/askiq/remote"
	"github.com/dhamidi/askiq/undo"
)

var (
	ErrBlankQuestion   = errors.New("session: question is blank")
	ErrBusy            = errors.New("session: a question is already in flight")
	ErrIndexOutOfRange = errors.New("session: conversation index out of range")
	ErrSessionSwitched = errors.New("session: session changed while the question was in flight")
)

// Store is the durable home of the conversation list.
type Store interface {
	Load() ([]*history.Conversation, error)
	Save(list []*history.Conversation) error
	Clear() error
}

// Controller mediates every change to the active session and the
// conversation list. The session is bound to at most one saved conversation,
// tracked by ID so that deletions elsewhere in the list do not disturb it.
type Controller struct {
	mu            sync.Mutex
	store         Store
	asker         remote.Asker
	trash         *undo.Buffer
	now           func() time.Time
	conversations []*history.Conversation
	transcript    []history.Message
	boundID       string
	busy          bool
	epoch         uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithUndoBuffer replaces the default soft-delete buffer.
func WithUndoBuffer(b *undo.Buffer) Option {
	return func(c *Controller) { c.trash = b }
}

// New creates a Controller and loads the conversation list from store. A
// store that cannot be read yields an empty list.
func New(store Store, asker remote.Asker, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		asker: asker,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.trash == nil {
		c.trash = undo.New(undo.DefaultWindow)
	}

	list, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not load conversations, starting empty")
	}
	if list == nil {
		list = []*history.Conversation{}
	}
	c.conversations = list
	return c
}

// Ask sends question upstream and records the exchange. The user message is
// appended before the request is made; the reply, or a fallback text when the
// request fails, is appended when it returns. The first exchange of an
// unbound session saves a new conversation at the front of the list; later
// exchanges update the bound conversation in place.
//
// Blank questions and questions asked while another is in flight are
// rejected without touching any state.
func (c *Controller) Ask(ctx context.Context, question string) (history.Message, error) {
	if strings.TrimSpace(question) == "" {
		return history.Message{}, ErrBlankQuestion
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return history.Message{}, ErrBusy
	}
	c.busy = true
	c.transcript = append(c.transcript, history.UserMessage(question))
	epoch := c.epoch
	askedAt := c.now()
	c.mu.Unlock()

	answer, err := c.asker.Ask(ctx, remote.Query{Question: question, AskedAt: askedAt})
	var reply history.Message
	switch {
	case err != nil:
		log.Error().Err(err).Msg("remote query failed")
		reply = history.BotMessage(remote.FailureText)
	case strings.TrimSpace(answer) == "":
		reply = history.BotMessage(remote.NoAnswerText)
	default:
		reply = history.BotMessage(answer)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if epoch != c.epoch {
		log.Debug().Msg("dropping reply for a session that is no longer active")
		return reply, ErrSessionSwitched
	}
	c.transcript = append(c.transcript, reply)
	c.recordLocked()
	return reply, nil
}

// recordLocked writes the transcript into the bound conversation, creating
// and binding a new one if needed.
func (c *Controller) recordLocked() {
	if i := c.boundIndexLocked(); i >= 0 {
		c.conversations[i].Replace(c.transcript)
		c.persistLocked()
		return
	}

	conv, err := history.New(c.transcript, c.now())
	if err != nil {
		log.Error().Err(err).Msg("could not create conversation")
		return
	}
	c.conversations = slices.Insert(c.conversations, 0, conv)
	c.boundID = conv.ID
	c.persistLocked()
}

// Load makes the conversation at index the active session.
func (c *Controller) Load(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.conversations) {
		return errors.Wrapf(ErrIndexOutOfRange, "load %d of %d", index, len(c.conversations))
	}
	conv := c.conversations[index]
	c.transcript = slices.Clone(conv.Messages)
	c.boundID = conv.ID
	c.epoch++
	return nil
}

// StartNew clears the active session and unbinds it. The conversation list
// is left untouched.
func (c *Controller) StartNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetSessionLocked()
}

// DeleteAt removes the conversation at index and keeps it recoverable through
// UndoDelete for the undo window. Deleting the bound conversation clears and
// unbinds the active session.
func (c *Controller) DeleteAt(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.conversations) {
		return errors.Wrapf(ErrIndexOutOfRange, "delete %d of %d", index, len(c.conversations))
	}

	deleted := c.conversations[index]
	c.conversations = slices.Delete(c.conversations, index, index+1)
	c.persistLocked()
	c.trash.Remember(deleted, index)

	if deleted.ID == c.boundID {
		c.resetSessionLocked()
	}
	return nil
}

// UndoDelete puts the most recently deleted conversation back at the index it
// was deleted from, clamped to the current list. It reports whether anything
// was restored. The session binding is not changed.
func (c *Controller) UndoDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.trash.Restore()
	if !ok {
		return false
	}
	at := min(max(rec.Index, 0), len(c.conversations))
	c.conversations = slices.Insert(c.conversations, at, rec.Conversation)
	c.persistLocked()
	return true
}

// PendingUndo returns the deletion that UndoDelete would restore.
func (c *Controller) PendingUndo() (undo.Record, bool) {
	return c.trash.Recall()
}

// ClearAll forgets every conversation, the persisted state, the active
// session and any pending undo.
func (c *Controller) ClearAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conversations = []*history.Conversation{}
	c.trash.Discard()
	c.resetSessionLocked()
	return c.store.Clear()
}

// Import prepends conversations that are not in the list yet and returns how
// many were added.
func (c *Controller) Import(imported []*history.Conversation) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged, added := history.Merge(c.conversations, imported)
	if added == 0 {
		return 0
	}
	c.conversations = merged
	c.persistLocked()
	return added
}

// Transcript returns a copy of the active session's messages.
func (c *Controller) Transcript() []history.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.transcript)
}

// Conversations returns a copy of the conversation list.
func (c *Controller) Conversations() []*history.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return history.CloneList(c.conversations)
}

// BoundIndex returns the index of the conversation the session is bound to.
func (c *Controller) BoundIndex() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.boundIndexLocked()
	return i, i >= 0
}

// Busy reports whether a question is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// View returns the date-grouped listing of the conversations matching searchTerm.
func (c *Controller) View(searchTerm string) []index.DateGroup {
	return index.View(c.Conversations(), searchTerm, c.now())
}

func (c *Controller) boundIndexLocked() int {
	if c.boundID == "" {
		return -1
	}
	return slices.IndexFunc(c.conversations, func(conv *history.Conversation) bool {
		return conv.ID == c.boundID
	})
}

func (c *Controller) resetSessionLocked() {
	c.transcript = nil
	c.boundID = ""
	c.epoch++
}

// persistLocked saves the list. Failures are logged and otherwise ignored;
// the in-memory list stays authoritative.
func (c *Controller) persistLocked() {
	if err := c.store.Save(c.conversations); err != nil {
		log.Warn().Err(err).Int("conversations", len(c.conversations)).Msg("could not persist conversations")
	}
}
