package askiq

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dhamidi/askiq/session"
	"github.com/dhamidi/askiq/undo"
)

const helpText = `Commands:
  /new            start a new conversation
  /list [term]    list saved conversations, optionally filtered by title
  /load <n>       continue conversation n
  /delete <n>     delete conversation n
  /undo           restore the most recently deleted conversation
  /clear          delete every conversation
  /help           show this help
  /quit           leave
Anything else is sent as a question.`

// Chat is the interactive front-end of a session.Controller.
type Chat struct {
	controller     *session.Controller
	getUserMessage func() (string, bool)
	out            io.Writer
	display        TextDisplayer
	modelName      string
	notices        chan string
}

// NewChat returns a Chat reading user input from getUserMessage. Listings are
// written to out, messages through display.
func NewChat(controller *session.Controller, getUserMessage func() (string, bool), out io.Writer, display TextDisplayer) *Chat {
	return &Chat{
		controller:     controller,
		getUserMessage: getUserMessage,
		out:            out,
		display:        display,
		notices:        make(chan string, 8),
	}
}

// LineReader returns a getUserMessage function reading lines from r.
func LineReader(r io.Reader) func() (string, bool) {
	scanner := bufio.NewScanner(r)
	return func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}
}

func (chat *Chat) ChooseModel(modelName string) *Chat {
	chat.modelName = modelName
	return chat
}

// WatchUndo reports expired deletions from b before the next prompt.
func (chat *Chat) WatchUndo(b *undo.Buffer) *Chat {
	b.OnExpire(func(rec undo.Record) {
		notice := fmt.Sprintf("Undo for %q expired.", rec.Conversation.DisplayTitle(rec.Index))
		select {
		case chat.notices <- notice:
		default:
		}
	})
	return chat
}

// Run reads input until it is exhausted or the user quits.
func (chat *Chat) Run(ctx context.Context) error {
	if chat.modelName != "" {
		fmt.Fprintf(chat.out, "Chat with %s (type /help for commands, /quit to leave)\n", chat.modelName)
	} else {
		fmt.Fprintln(chat.out, "Type /help for commands, /quit to leave")
	}

	for {
		chat.drainNotices()
		chat.display.DisplayPrompt("\u001b["+ColorYou+"mYou [%d]\u001b[0m: ", len(chat.controller.Transcript()))
		userInput, ok := chat.getUserMessage()
		if !ok {
			fmt.Fprintln(chat.out)
			return nil
		}

		line := strings.TrimSpace(userInput)
		if strings.HasPrefix(line, "/") {
			if quit := chat.command(line); quit {
				return nil
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		chat.ask(ctx, userInput)
	}
}

func (chat *Chat) ask(ctx context.Context, question string) {
	reply, err := chat.controller.Ask(ctx, question)
	switch {
	case errors.Is(err, session.ErrBlankQuestion):
	case errors.Is(err, session.ErrBusy):
		chat.display.DisplayError("still waiting for the previous answer")
	case errors.Is(err, session.ErrSessionSwitched):
		chat.display.DisplayInfo("The conversation changed before the answer arrived; it was discarded.")
	case err != nil:
		chat.display.DisplayError("%v", err)
	default:
		chat.display.DisplayMessage("Bot", ColorBot, len(chat.controller.Transcript())-1, "%s", reply.Text)
	}
}

// command runs a slash command and reports whether the user asked to quit.
func (chat *Chat) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	log.Debug().Str("command", name).Str("arg", arg).Msg("repl command")

	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(chat.out, helpText)
	case "/new":
		chat.controller.StartNew()
		chat.display.DisplayInfo("Started a new conversation.")
	case "/list":
		chat.list(arg)
	case "/load":
		chat.load(arg)
	case "/delete":
		chat.delete(arg)
	case "/undo":
		chat.undo()
	case "/clear":
		if err := chat.controller.ClearAll(); err != nil {
			chat.display.DisplayError("clearing saved conversations: %v", err)
			return false
		}
		chat.display.DisplayInfo("All conversations deleted.")
	default:
		chat.display.DisplayError("unknown command %s, type /help for a list", name)
	}
	return false
}

func (chat *Chat) list(term string) {
	bound, ok := chat.controller.BoundIndex()
	if !ok {
		bound = -1
	}
	WriteIndex(chat.out, chat.controller.View(term), bound)
	if rec, ok := chat.controller.PendingUndo(); ok {
		chat.display.DisplayInfo("Deleted %q can be restored with /undo.", rec.Conversation.DisplayTitle(rec.Index))
	}
}

func (chat *Chat) load(arg string) {
	i, err := ParsePosition(arg)
	if err != nil {
		chat.display.DisplayError("%v", err)
		return
	}
	if err := chat.controller.Load(i); err != nil {
		chat.display.DisplayError("no conversation %d", i+1)
		return
	}
	conv := chat.controller.Conversations()[i]
	chat.display.DisplayInfo("Continuing %q.", conv.DisplayTitle(i))
	DisplayTranscript(chat.display, chat.controller.Transcript())
}

func (chat *Chat) delete(arg string) {
	i, err := ParsePosition(arg)
	if err != nil {
		chat.display.DisplayError("%v", err)
		return
	}
	if err := chat.controller.DeleteAt(i); err != nil {
		chat.display.DisplayError("no conversation %d", i+1)
		return
	}
	if rec, ok := chat.controller.PendingUndo(); ok {
		chat.display.DisplayInfo("Deleted %q. Use /undo to restore it.", rec.Conversation.DisplayTitle(rec.Index))
	}
}

func (chat *Chat) undo() {
	rec, pending := chat.controller.PendingUndo()
	if !pending || !chat.controller.UndoDelete() {
		chat.display.DisplayInfo("Nothing to undo.")
		return
	}
	chat.display.DisplayInfo("Restored %q.", rec.Conversation.DisplayTitle(rec.Index))
}

func (chat *Chat) drainNotices() {
	for {
		select {
		case notice := <-chat.notices:
			chat.display.DisplayInfo("%s", notice)
		default:
			return
		}
	}
}

// ParsePosition converts a 1-based list position as shown in listings into
// an index.
func ParsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, errors.Errorf("expected a conversation number, got %q", arg)
	}
	return n - 1, nil
}
