package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/remote"
	"github.com/dhamidi/askiq/session"
	"github.com/dhamidi/askiq/undo"
)

var errNoRemote = errors.New("no remote configured for this command")

// die prints a formatted error message to stderr and exits with status 1.
func die(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

// openStore opens the configured slot and wraps it in a history.Store.
func (a *app) openStore() (*history.Store, error) {
	slot, err := history.OpenSlot(a.cfg.Store.Backend, a.cfg.Store.Path, a.cfg.Store.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "opening conversation store")
	}
	return history.NewStore(slot), nil
}

// newAsker returns the raw HTTP client when an endpoint is configured and the
// genai client otherwise.
func (a *app) newAsker(ctx context.Context) (remote.Asker, error) {
	delays := a.cfg.RetryDelays()
	if a.cfg.Endpoint != "" {
		log.Debug().Str("endpoint", a.cfg.Endpoint).Msg("using raw HTTP endpoint")
		return remote.NewHTTPClient(a.cfg.Endpoint, a.cfg.APIKey).WithRetries(delays...), nil
	}
	if a.cfg.APIKey == "" {
		return nil, errors.New("no API key: set GEMINI_API_KEY or api-key in the config file")
	}
	client, err := remote.NewGenAIClient(ctx, a.cfg.APIKey, a.cfg.Model)
	if err != nil {
		return nil, err
	}
	return client.WithRetries(delays...), nil
}

// offlineAsker serves commands that never send a question.
var offlineAsker = remote.AskerFunc(func(context.Context, remote.Query) (string, error) {
	return "", errNoRemote
})

func (a *app) newController(store *history.Store, asker remote.Asker, trash *undo.Buffer) *session.Controller {
	return session.New(store, asker, session.WithUndoBuffer(trash))
}
