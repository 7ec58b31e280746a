package askiq

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/index"
)

func TestRawTextDisplay(t *testing.T) {
	out := &bytes.Buffer{}
	d := NewRawTextDisplay(out)

	d.DisplayMessage("Bot", ColorBot, 3, "%s", "hello")
	d.DisplayMessage("Bot", ColorBot, -1, "%s", "again")
	d.DisplayError("bad %d", 42)
	require.NoError(t, d.Display("plain"))

	assert.Equal(t,
		"\u001b[93mBot [3]\u001b[0m: hello\n"+
			"\u001b[93mBot\u001b[0m: again\n"+
			"\u001b[91mError\u001b[0m: bad 42\n"+
			"plain\n",
		out.String())
}

func TestGlamourousTextDisplay(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "notty")
	out := &bytes.Buffer{}
	d := NewGlamourousTextDisplay(out)

	d.DisplayMessage("Bot", ColorBot, 1, "%s", "hello")
	assert.Contains(t, out.String(), "\u001b[93mBot [1]\u001b[0m: ")
	assert.Contains(t, out.String(), "hello")
}

func TestNewTextDisplay(t *testing.T) {
	assert.IsType(t, &RawTextDisplay{}, NewTextDisplay("raw", &bytes.Buffer{}))
	assert.IsType(t, &GlamourousTextDisplay{}, NewTextDisplay("glamour", &bytes.Buffer{}))
}

func TestDisplayTranscript(t *testing.T) {
	out := &bytes.Buffer{}
	DisplayTranscript(NewRawTextDisplay(out), []history.Message{
		history.UserMessage("q"),
		history.BotMessage("a"),
	})
	assert.Equal(t, "\u001b[94mYou [0]\u001b[0m: q\n\u001b[93mBot [1]\u001b[0m: a\n", out.String())
}

func TestWriteIndex(t *testing.T) {
	out := &bytes.Buffer{}
	WriteIndex(out, nil, -1)
	assert.Equal(t, "No conversations found.\n", out.String())

	out.Reset()
	WriteIndex(out, []index.DateGroup{
		{DateKey: "2025-06-01", Label: "Today", Entries: []index.Entry{
			{Conversation: &history.Conversation{Title: "ConvA", Timestamp: "6/1/2025, 9:00:00 AM"}, Index: 0},
			{Conversation: &history.Conversation{}, Index: 2},
		}},
		{DateKey: "2025-05-20", Label: "May 20, 2025", Entries: []index.Entry{
			{Conversation: &history.Conversation{Title: "ConvB"}, Index: 1},
		}},
	}, 2)
	assert.Equal(t,
		"Today\n"+
			"    1. ConvA  (6/1/2025, 9:00:00 AM)\n"+
			" *  3. Conversation 3\n"+
			"May 20, 2025\n"+
			"    2. ConvB\n",
		out.String())
}
