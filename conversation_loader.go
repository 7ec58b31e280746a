package askiq

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/session"
)

// ImportConversations reads a conversation list from path and prepends the
// conversations the controller does not know yet. It returns how many were
// added.
func ImportConversations(fs afero.Fs, path string, controller *session.Controller) (int, error) {
	imported, err := history.ReadFile(fs, path)
	if err != nil {
		return 0, err
	}
	added := controller.Import(imported)
	log.Info().Str("file", path).Int("read", len(imported)).Int("added", added).Msg("imported conversations")
	return added, nil
}

// ExportConversations writes the controller's conversation list to path.
func ExportConversations(fs afero.Fs, path string, controller *session.Controller) (int, error) {
	list := controller.Conversations()
	if err := history.WriteFile(fs, path, list); err != nil {
		return 0, err
	}
	return len(list), nil
}
