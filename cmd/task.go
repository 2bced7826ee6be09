package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"focusdeck/internal/tasks"

	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the focused task shown beside the timer",
	}

	setCmd := &cobra.Command{
		Use:   "set <label>",
		Short: "Set the focused task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.TrimSpace(strings.Join(args, " "))
			if label == "" {
				return errors.New("task label must not be empty")
			}
			return withStore(func(store *tasks.Store) error {
				if err := store.SetFocusedTask(cmd.Context(), label, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Focused task: %s\n", label)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the focused task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *tasks.Store) error {
				label, err := store.FocusedTask(cmd.Context())
				if errors.Is(err, tasks.ErrNoTask) {
					fmt.Fprintln(cmd.OutOrStdout(), "No focused task")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), label)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the focused task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *tasks.Store) error {
				if err := store.ClearFocusedTask(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Focused task cleared")
				return nil
			})
		},
	}

	taskCmd.AddCommand(setCmd, showCmd, clearCmd)
	return taskCmd
}

func withStore(fn func(store *tasks.Store) error) error {
	path, err := taskDBPath()
	if err != nil {
		return err
	}
	store, err := tasks.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
