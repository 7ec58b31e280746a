package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/askiq"
	"github.com/dhamidi/askiq/undo"
)

// runChat starts the interactive REPL on the command's input and output.
func (a *app) runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	asker, err := a.newAsker(ctx)
	if err != nil {
		return err
	}

	trash := undo.New(a.cfg.UndoWindow)
	controller := a.newController(store, asker, trash)
	out := cmd.OutOrStdout()
	chat := askiq.NewChat(controller, askiq.LineReader(cmd.InOrStdin()), out, askiq.NewTextDisplay(a.cfg.Render, out)).
		ChooseModel(a.cfg.Model).
		WatchUndo(trash)
	return chat.Run(ctx)
}
