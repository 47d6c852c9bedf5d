package main

import (
	"fmt"

	"github.com/Weskio/ai-task-whisperer/internal/service"

	"github.com/spf13/cobra"
)

func (c *cli) subtaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's checklist",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().AddSubtask(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <task-id> <subtask-id>",
		Short: "Flip a subtask between done and not done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().ToggleSubtask(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("subtask %s/%s: %w", args[0], args[1], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <task-id> <subtask-id> <title>",
		Short: "Rename a subtask",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().EditSubtask(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("subtask %s/%s: %w", args[0], args[1], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().Task(args[0])
			if err == nil && t.FindSubtask(args[1]) < 0 {
				err = service.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("subtask %s/%s: %w", args[0], args[1], err)
			}
			if err := c.app.Board().DeleteSubtask(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Subtask deleted: %s\n", args[1])
			return nil
		},
	})
	return cmd
}
