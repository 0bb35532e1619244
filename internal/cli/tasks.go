package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/ports"
)

var (
	addDeadline   string
	addHours      float64
	addDifficulty string
	listAll       bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		tasks, err := application.Tasks().LoadTasks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		if !listAll {
			tasks = domain.Pending(tasks)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tNAME\tDEADLINE\tHOURS\tDIFFICULTY")
		for _, t := range tasks {
			status := "todo"
			if t.Done {
				status = "done"
			}
			hours := "-"
			if t.EstimatedHours != nil {
				hours = fmt.Sprintf("%.1f", *t.EstimatedHours)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID.String()[:8], status, truncate(t.Name, 40), formatDeadline(t), hours, domain.ClassifyDifficulty(t.Difficulty))
		}
		w.Flush()

		fmt.Fprintf(out, "\nTotal: %d tasks\n", len(tasks))
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return fmt.Errorf("task name is empty")
		}

		var deadline *time.Time
		if addDeadline != "" {
			d, err := parseDeadline(addDeadline, time.Local)
			if err != nil {
				return err
			}
			deadline = &d
		}

		var hours *float64
		if cmd.Flags().Changed("hours") {
			if addHours < 0 {
				return fmt.Errorf("--hours must not be negative")
			}
			h := addHours
			hours = &h
		}

		application, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		task := domain.NewTask(name, deadline, hours, addDifficulty)
		if err := application.Tasks().AddTask(cmd.Context(), task); err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", task.ID.String()[:8], task.Name)
		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTask(cmd, args[0], func(ctx context.Context, repo ports.TaskRepository, t domain.Task) error {
			if err := repo.SetDone(ctx, t.ID, true); err != nil {
				return fmt.Errorf("failed to complete task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s\n", t.Name)
			return nil
		})
	},
}

var tasksRemoveCmd = &cobra.Command{
	Use:     "remove <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTask(cmd, args[0], func(ctx context.Context, repo ports.TaskRepository, t domain.Task) error {
			if err := repo.RemoveTask(ctx, t.ID); err != nil {
				return fmt.Errorf("failed to remove task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", t.Name)
			return nil
		})
	},
}

func init() {
	tasksListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed tasks")

	tasksAddCmd.Flags().StringVarP(&addDeadline, "deadline", "d", "", "deadline (RFC3339, 2006-01-02 15:04 or 2006-01-02)")
	tasksAddCmd.Flags().Float64Var(&addHours, "hours", 0, "estimated effort in hours")
	tasksAddCmd.Flags().StringVar(&addDifficulty, "difficulty", "", "easy, medium or hard")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRemoveCmd)
}

func withTask(cmd *cobra.Command, ref string, fn func(context.Context, ports.TaskRepository, domain.Task) error) error {
	ctx := cmd.Context()
	application, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	tasks, err := application.Tasks().LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	task, err := resolveTask(tasks, ref)
	if err != nil {
		return err
	}
	return fn(ctx, application.Tasks(), task)
}

// resolveTask accepts a full id or a unique prefix of one.
func resolveTask(tasks []domain.Task, ref string) (domain.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		if t, ok := domain.FindTask(tasks, id); ok {
			return t, nil
		}
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if ref == "" {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	var matches []domain.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Task{}, domain.ErrTaskNotFound
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

var deadlineLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseDeadline reads RFC3339 or a local date/time; a bare date means end of that day.
func parseDeadline(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range deadlineLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(23*time.Hour + 59*time.Minute)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse deadline %q", raw)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
