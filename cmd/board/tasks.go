package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
	"github.com/Weskio/ai-task-whisperer/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// taskView is the json/yaml output shape of a task.
type taskView struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Priority    string        `json:"priority" yaml:"priority"`
	Column      string        `json:"column" yaml:"column"`
	Progress    int           `json:"progress" yaml:"progress"`
	Subtasks    []subtaskView `json:"subtasks" yaml:"subtasks"`
	Suggestions []string      `json:"suggestions" yaml:"suggestions"`
}

type subtaskView struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

func toView(t dom.Task) taskView {
	v := taskView{
		ID:          t.ID,
		Title:       t.Title,
		Priority:    string(t.Priority),
		Column:      string(t.Column),
		Progress:    t.Progress(),
		Subtasks:    make([]subtaskView, len(t.Subtasks)),
		Suggestions: append([]string{}, t.Suggestions...),
	}
	for i, s := range t.Subtasks {
		v.Subtasks[i] = subtaskView{ID: s.ID, Title: s.Title, Completed: s.Completed}
	}
	return v
}

func writeTasks(w io.Writer, list []dom.Task, format string) error {
	views := make([]taskView, len(list))
	for i, t := range list {
		views[i] = toView(t)
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(views)
	case "table", "":
		if len(list) == 0 {
			_, err := fmt.Fprintln(w, "No tasks found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOLUMN\tPRIORITY\tPROGRESS\tTITLE")
		for _, t := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\n", t.ID, t.Column, t.Priority, t.Progress(), t.Title)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// writeTask prints one task with its subtasks and suggestions.
func writeTask(w io.Writer, t dom.Task) {
	fmt.Fprintf(w, "%s  %s\n", t.ID, t.Title)
	fmt.Fprintf(w, "  column: %s  priority: %s  progress: %d%%\n", t.Column, t.Priority, t.Progress())
	if len(t.Subtasks) > 0 {
		fmt.Fprintln(w, "  subtasks:")
		for _, s := range t.Subtasks {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "    [%s] %s  %s\n", mark, s.ID, s.Title)
		}
	}
	if len(t.Suggestions) > 0 {
		fmt.Fprintln(w, "  suggestions:")
		for _, s := range t.Suggestions {
			fmt.Fprintf(w, "    - %s\n", s)
		}
	}
}

func (c *cli) listCmd() *cobra.Command {
	var output, column string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.app.Board().Tasks()
			if column != "" {
				col, ok := dom.ParseColumn(column)
				if !ok {
					return service.ErrInvalidColumn
				}
				filtered := list[:0]
				for _, t := range list {
					if t.Column == col {
						filtered = append(filtered, t)
					}
				}
				list = filtered
			}
			return writeTasks(cmd.OutOrStdout(), list, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&column, "column", "c", "", "Only tasks in this column (todo, in-progress, done)")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its subtasks and suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().Task(args[0])
			if err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var title, priority string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to the To Do column",
		Long:  `Add a task. Suggestions are fetched (or taken from the built-in lists) before the task is saved.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, ok := dom.ParsePriority(priority)
			if !ok {
				return service.ErrInvalidPriority
			}
			t, err := c.app.Board().Create(cmd.Context(), title, prio)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task created: %s\n", t.ID)
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(dom.PriorityMedium), "Priority: high, medium or low")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		panic(fmt.Sprintf("Failed to mark title flag as required: %v", err))
	}
	return cmd
}

func (c *cli) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <column>",
		Short: "Move a task to todo, in-progress or done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, ok := dom.ParseColumn(args[1])
			if !ok {
				return service.ErrInvalidColumn
			}
			t, err := c.app.Board().Move(cmd.Context(), args[0], col)
			if err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s -> %s\n", t.ID, t.Column)
			return nil
		},
	}
}

func (c *cli) editCmd() *cobra.Command {
	var title, priority string
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task's title or priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch service.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("priority") {
				p, ok := dom.ParsePriority(priority)
				if !ok {
					return service.ErrInvalidPriority
				}
				patch.Priority = &p
			}
			if patch.Title == nil && patch.Priority == nil {
				return fmt.Errorf("nothing to change: pass --title and/or --priority")
			}
			t, err := c.app.Board().UpdateFields(cmd.Context(), args[0], patch)
			if err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority: high, medium or low")
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Board().Task(args[0]); err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			if err := c.app.Board().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task deleted: %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <task-id>",
		Short: "Regenerate suggestions for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.app.Board().RegenerateSuggestions(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			writeTask(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
