package askiq

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/remote"
	"github.com/dhamidi/askiq/session"
	"github.com/dhamidi/askiq/undo"
)

func newTestChat(t *testing.T, input string, opts ...session.Option) (*Chat, *session.Controller, *bytes.Buffer) {
	t.Helper()
	store := history.NewStore(history.NewMemorySlot(history.DefaultSlotName))
	asker := remote.AskerFunc(func(ctx context.Context, q remote.Query) (string, error) {
		return "answer to " + q.Question, nil
	})
	controller := session.New(store, asker, opts...)
	out := &bytes.Buffer{}
	chat := NewChat(controller, LineReader(strings.NewReader(input)), out, NewRawTextDisplay(out))
	return chat, controller, out
}

func TestChat_AskAndList(t *testing.T) {
	chat, controller, out := newTestChat(t, "What is Go?\n\n/new\nSecond question\n/list\n/quit\nnever read\n")
	require.NoError(t, chat.ChooseModel("test-model").Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Chat with test-model")
	assert.Contains(t, output, "answer to What is Go?")
	assert.Contains(t, output, "Started a new conversation.")
	assert.Contains(t, output, "Today\n")
	assert.Contains(t, output, "*  1. Second question")
	assert.Contains(t, output, "   2. What is Go?")
	assert.NotContains(t, output, "never read")

	list := controller.Conversations()
	require.Len(t, list, 2)
	assert.Equal(t, "Second question", list[0].Title)
}

func TestChat_LoadContinuesConversation(t *testing.T) {
	chat, controller, out := newTestChat(t, "first\n/new\nsecond\n/load 2\nmore\n")
	require.NoError(t, chat.Run(context.Background()))

	assert.Contains(t, out.String(), `Continuing "first".`)
	list := controller.Conversations()
	require.Len(t, list, 2)
	assert.Len(t, list[1].Messages, 4)
	i, ok := controller.BoundIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestChat_DeleteAndUndo(t *testing.T) {
	chat, controller, out := newTestChat(t, "one\n/new\ntwo\n/delete 2\n/list\n/undo\n/undo\n",
		session.WithUndoBuffer(undo.New(time.Minute)))
	require.NoError(t, chat.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, `Deleted "one". Use /undo to restore it.`)
	assert.Contains(t, output, `Deleted "one" can be restored with /undo.`)
	assert.Contains(t, output, `Restored "one".`)
	assert.Contains(t, output, "Nothing to undo.")
	assert.Len(t, controller.Conversations(), 2)
}

func TestChat_Errors(t *testing.T) {
	chat, _, out := newTestChat(t, "/load 3\n/delete x\n/bogus\n")
	require.NoError(t, chat.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "no conversation 3")
	assert.Contains(t, output, `expected a conversation number, got "x"`)
	assert.Contains(t, output, "unknown command /bogus")
}

func TestChat_Clear(t *testing.T) {
	chat, controller, out := newTestChat(t, "one\n/clear\n/list\n")
	require.NoError(t, chat.Run(context.Background()))

	assert.Contains(t, out.String(), "All conversations deleted.")
	assert.Contains(t, out.String(), "No conversations found.")
	assert.Empty(t, controller.Conversations())
}

func TestChat_UndoExpiryNotice(t *testing.T) {
	buffer := undo.New(10 * time.Millisecond)
	lines := []string{"one", "/delete 1", ""}
	var chat *Chat
	next := 0
	getUserMessage := func() (string, bool) {
		if next == len(lines) {
			return "", false
		}
		if next == 2 {
			assert.Eventually(t, func() bool { return len(chat.notices) == 1 }, time.Second, 5*time.Millisecond)
		}
		line := lines[next]
		next++
		return line, true
	}

	store := history.NewStore(history.NewMemorySlot(history.DefaultSlotName))
	controller := session.New(store, remote.AskerFunc(func(context.Context, remote.Query) (string, error) {
		return "ok", nil
	}), session.WithUndoBuffer(buffer))
	out := &bytes.Buffer{}
	chat = NewChat(controller, getUserMessage, out, NewRawTextDisplay(out)).WatchUndo(buffer)

	require.NoError(t, chat.Run(context.Background()))
	assert.Contains(t, out.String(), `Undo for "one" expired.`)
}

func TestParsePosition(t *testing.T) {
	i, err := ParsePosition(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	for _, arg := range []string{"", "0", "-1", "two"} {
		_, err := ParsePosition(arg)
		assert.Error(t, err, arg)
	}
}
