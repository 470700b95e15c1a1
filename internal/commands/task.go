package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rafabd1/ceres/internal/task"
)

// TaskCmd lists and manages in-flight requests.
type TaskCmd struct {
	// Provider keeps the command decoupled from who owns the manager.
	ExecManagerProvider func() task.ExecutionManager
}

func (c *TaskCmd) Name() string      { return "tasks" }
func (c *TaskCmd) Aliases() []string { return nil }
func (c *TaskCmd) Description() string {
	return "Lists running requests. Usage: /tasks [status|cancel <task_id>]"
}

func (c *TaskCmd) Execute(ctx context.Context, args []string, output io.Writer) error {
	execManager := c.ExecManagerProvider()
	if execManager == nil {
		return fmt.Errorf("execution manager is not available")
	}

	if len(args) == 0 {
		summary := execManager.RunningSummary()
		if summary == "" {
			summary = "No running tasks."
		}
		fmt.Fprintln(output, summary)
		return nil
	}
	if len(args) < 2 {
		fmt.Fprintln(output, c.Description())
		return nil
	}

	subcommand := strings.ToLower(args[0])
	taskID := args[1]

	switch subcommand {
	case "status":
		info, err := execManager.Get(taskID)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "Task %s: %s\n", info.ID, info.Status)
		fmt.Fprintf(output, "Request (%s): %s\n", info.Source, info.Input)
		fmt.Fprintf(output, "Started: %s\n", info.StartTime.Format(time.RFC3339))
		if !info.EndTime.IsZero() {
			fmt.Fprintf(output, "Duration: %s\n", info.EndTime.Sub(info.StartTime).Round(time.Millisecond))
		}
		if info.Error != nil {
			fmt.Fprintf(output, "Error: %v\n", info.Error)
		}
	case "cancel":
		if err := execManager.CancelTask(taskID); err != nil {
			return err
		}
		fmt.Fprintf(output, "Cancelled task %s\n", taskID)
	default:
		fmt.Fprintf(output, "Unknown tasks subcommand: %s\n", subcommand)
		fmt.Fprintln(output, c.Description())
	}
	return nil
}
