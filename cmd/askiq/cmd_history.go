package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dhamidi/askiq"
	"github.com/dhamidi/askiq/session"
	"github.com/dhamidi/askiq/undo"
)

// historyCommand groups the subcommands that work on saved conversations
// without starting a chat.
func (a *app) historyCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage saved conversations",
	}

	var search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved conversations grouped by day",
		Args:  cobra.NoArgs,
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			askiq.WriteIndex(cmd.OutOrStdout(), c.View(search), -1)
			return nil
		}),
	}
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Only list conversations whose title contains this text")

	showCmd := &cobra.Command{
		Use:   "show <n>",
		Short: "Print conversation n as numbered in the listing",
		Args:  cobra.ExactArgs(1),
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			i, err := askiq.ParsePosition(args[0])
			if err != nil {
				return err
			}
			if err := c.Load(i); err != nil {
				return errors.Wrapf(err, "conversation %d", i+1)
			}
			conv := c.Conversations()[i]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", conv.DisplayTitle(i))
			if conv.Timestamp != "" {
				fmt.Fprintf(out, "Saved: %s\n", conv.Timestamp)
			}
			fmt.Fprintf(out, "Messages (%d):\n", len(conv.Messages))
			askiq.DisplayTranscript(askiq.NewTextDisplay(a.cfg.Render, out), c.Transcript())
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <n>",
		Short: "Delete conversation n as numbered in the listing",
		Args:  cobra.ExactArgs(1),
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			i, err := askiq.ParsePosition(args[0])
			if err != nil {
				return err
			}
			title := ""
			if list := c.Conversations(); i < len(list) {
				title = list[i].DisplayTitle(i)
			}
			if err := c.DeleteAt(i); err != nil {
				return errors.Wrapf(err, "conversation %d", i+1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", title)
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved conversation",
		Args:  cobra.NoArgs,
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			n := len(c.Conversations())
			if err := c.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d conversations.\n", n)
			return nil
		}),
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write all saved conversations to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			n, err := askiq.ExportConversations(afero.NewOsFs(), args[0], c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d conversations to %s.\n", n, args[0])
			return nil
		}),
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add the conversations of a JSON file that are not saved yet",
		Args:  cobra.ExactArgs(1),
		RunE: a.withController(func(cmd *cobra.Command, args []string, c *session.Controller) error {
			n, err := askiq.ImportConversations(afero.NewOsFs(), args[0], c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d conversations from %s.\n", n, args[0])
			return nil
		}),
	}

	historyCmd.AddCommand(listCmd, showCmd, deleteCmd, clearCmd, exportCmd, importCmd)
	return historyCmd
}

// withController opens the store for the duration of fn.
func (a *app) withController(fn func(cmd *cobra.Command, args []string, c *session.Controller) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		trash := undo.New(a.cfg.UndoWindow)
		defer trash.Discard()
		return fn(cmd, args, a.newController(store, offlineAsker, trash))
	}
}
