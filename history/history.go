package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultDatabasePath is the default path where the conversation slot is stored.
var DefaultDatabasePath = ".askiq/history.db"

// DefaultSlotName is the name of the slot holding the conversation list.
const DefaultSlotName = "askiq_chats"

const (
	// DateKeyLayout formats the calendar day a conversation was saved on.
	DateKeyLayout = "2006-01-02"
	// TimestampLayout formats the human readable save time of a conversation.
	TimestampLayout = "1/2/2006, 3:04:05 PM"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single turn of a conversation. Messages are never modified after
// they have been appended to a transcript.
type Message struct {
	Role Role   `json:"type"`
	Text string `json:"text"`
}

// UserMessage returns a Message authored by the user.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// BotMessage returns a Message authored by the remote model.
func BotMessage(text string) Message {
	return Message{Role: RoleBot, Text: text}
}

// Conversation is a saved transcript together with the metadata captured when
// it was first saved. Title, Timestamp and DateKey never change after creation.
type Conversation struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp string    `json:"timestamp"`
	DateKey   string    `json:"dateKey"`
}

// New creates a Conversation with a unique ID from the given transcript.
// The title is the text of the first message.
func New(messages []Message, now time.Time) (*Conversation, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	var title string
	if len(messages) > 0 {
		title = messages[0].Text
	}
	return &Conversation{
		ID:        id.String(),
		Title:     title,
		Messages:  slices.Clone(messages),
		Timestamp: now.Format(TimestampLayout),
		DateKey:   DateKey(now),
	}, nil
}

// Replace swaps the messages of the conversation for a copy of transcript.
func (c *Conversation) Replace(transcript []Message) {
	c.Messages = slices.Clone(transcript)
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = slices.Clone(c.Messages)
	return &clone
}

// DisplayTitle is the title shown in listings. Untitled conversations are
// named after their position in the list.
func (c *Conversation) DisplayTitle(index int) string {
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("Conversation %d", index+1)
}

// DateKey returns the calendar day of t in the layout used by Conversation.DateKey.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// CloneList returns a deep copy of a conversation list.
func CloneList(list []*Conversation) []*Conversation {
	out := make([]*Conversation, len(list))
	for i, conv := range list {
		out[i] = conv.Clone()
	}
	return out
}
