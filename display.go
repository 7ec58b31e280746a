package askiq

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/dhamidi/askiq/history"
)

// ANSI color codes used for role prefixes.
const (
	ColorYou   = "94"
	ColorBot   = "93"
	ColorError = "91"
	ColorInfo  = "90"
)

// TextDisplayer defines an interface for displaying text content.
type TextDisplayer interface {
	Display(content string) error
	DisplayPrompt(format string, args ...interface{})
	DisplayError(format string, args ...interface{})
	DisplayInfo(format string, args ...interface{})
	DisplayMessage(role string, colorCode string, historyCount int, format string, args ...interface{})
}

// RawTextDisplay writes plain text to Out.
type RawTextDisplay struct {
	Out io.Writer
}

func NewRawTextDisplay(out io.Writer) *RawTextDisplay {
	return &RawTextDisplay{Out: out}
}

// DisplayPrompt prints a formatted prompt without a trailing newline.
func (r *RawTextDisplay) DisplayPrompt(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, format, args...)
}

func (r *RawTextDisplay) Display(content string) error {
	_, err := fmt.Fprintln(r.Out, content)
	return err
}

func (r *RawTextDisplay) DisplayError(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, "\u001b["+ColorError+"mError\u001b[0m: "+format+"\n", args...)
}

// DisplayInfo prints a dimmed status line.
func (r *RawTextDisplay) DisplayInfo(format string, args ...interface{}) {
	fmt.Fprintf(r.Out, "\u001b["+ColorInfo+"m"+format+"\u001b[0m\n", args...)
}

// DisplayMessage prints a message prefixed by its role. A negative
// historyCount omits the counter.
func (r *RawTextDisplay) DisplayMessage(role string, colorCode string, historyCount int, format string, args ...interface{}) {
	fmt.Fprint(r.Out, rolePrefix(role, colorCode, historyCount))
	fmt.Fprintf(r.Out, format+"\n", args...)
}

func rolePrefix(role, colorCode string, historyCount int) string {
	if historyCount >= 0 {
		return fmt.Sprintf("\u001b[%sm%s [%d]\u001b[0m: ", colorCode, role, historyCount)
	}
	return fmt.Sprintf("\u001b[%sm%s\u001b[0m: ", colorCode, role)
}

// GlamourousTextDisplay renders message bodies as markdown with glamour,
// falling back to RawTextDisplay when rendering fails.
type GlamourousTextDisplay struct {
	RawTextDisplay
}

func NewGlamourousTextDisplay(out io.Writer) *GlamourousTextDisplay {
	return &GlamourousTextDisplay{RawTextDisplay{Out: out}}
}

func (g *GlamourousTextDisplay) Display(content string) error {
	prettyOutput, err := glamour.RenderWithEnvironmentConfig(content)
	if err != nil {
		log.Warn().Err(err).Msg("glamour rendering failed, falling back to raw display")
		return g.RawTextDisplay.Display(content)
	}
	_, err = fmt.Fprintln(g.Out, prettyOutput)
	return err
}

// DisplayMessage prints the role prefix raw and the message body rendered.
func (g *GlamourousTextDisplay) DisplayMessage(role string, colorCode string, historyCount int, format string, args ...interface{}) {
	coreMessage := fmt.Sprintf(format, args...)
	prettyOutput, err := glamour.RenderWithEnvironmentConfig(coreMessage)
	if err != nil {
		log.Warn().Err(err).Msg("glamour rendering failed, falling back to raw display")
		g.RawTextDisplay.DisplayMessage(role, colorCode, historyCount, format, args...)
		return
	}
	fmt.Fprint(g.Out, rolePrefix(role, colorCode, historyCount))
	fmt.Fprintln(g.Out, strings.TrimRight(prettyOutput, "\n"))
}

// NewTextDisplay returns the displayer for a render mode, "raw" or "glamour".
func NewTextDisplay(render string, out io.Writer) TextDisplayer {
	if render == "raw" {
		return NewRawTextDisplay(out)
	}
	return NewGlamourousTextDisplay(out)
}

// DisplayTranscript prints every message of a transcript with its role.
func DisplayTranscript(d TextDisplayer, messages []history.Message) {
	for i, msg := range messages {
		switch msg.Role {
		case history.RoleUser:
			d.DisplayMessage("You", ColorYou, i, "%s", msg.Text)
		default:
			d.DisplayMessage("Bot", ColorBot, i, "%s", msg.Text)
		}
	}
}
