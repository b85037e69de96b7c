package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/report"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/spf13/cobra"
)

func (a *app) flowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flows, err := a.flows.ListFlows(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tTITLE\tTASKS")
			for _, f := range flows {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", f.ID, f.Title, len(f.Tasks))
			}
			return tw.Flush()
		},
	}
}

func (a *app) createFlowCmd() *cobra.Command {
	var tasks []string

	cmd := &cobra.Command{
		Use:   "create-flow [title]",
		Short: "Create a flow, optionally with untimed tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := a.flows.CreateFlow(cmd.Context(), dto.CreateFlowRequest{Title: args[0], Tasks: tasks})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), flow.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tasks, "task", "t", nil, "task title (repeatable)")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [flow-id]",
		Short: "Show the status of every task in a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := a.schedule.FlowStatus(cmd.Context(), args[0], a.instant)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tTASK\tSTATUS")
			for _, ts := range fs.Tasks {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ts.TaskID, ts.Title, ts.Label)
			}
			fmt.Fprintf(tw, "\nCompleted today: %d/%d\n", fs.Completed, fs.Scheduled)
			return tw.Flush()
		},
	}
}

func (a *app) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's timed tasks across all flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.schedule.Today(cmd.Context(), a.instant)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing scheduled today")
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "TIME\tTASK\tFLOW\tSTATUS")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", timeRange(it), it.Title, it.FlowTitle, it.Label)
			}
			return tw.Flush()
		},
	}
}

func (a *app) calendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar [flow-id] [task-id]",
		Short: "Show a task's completion calendar for one month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := a.schedule.TaskCalendar(cmd.Context(), args[0], args[1], month, a.instant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d: %d completed, %d missed\n", cal.Month, cal.Year, cal.Completed, cal.Missed)
			tw := newTable(out)
			for _, d := range cal.Days {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Date, d.Date.Weekday().String()[:3], d.Status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [flow-id]",
		Short: "Print a text report of a flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.schedule.Report(cmd.Context(), args[0], a.instant)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func (a *app) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [flow-id] [task-id]",
		Short: "Toggle completion of a task's current occurrence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.flows.ToggleTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Task.Title, res.Status.Label)
			return nil
		},
	}
}

func (a *app) addTaskCmd() *cobra.Command {
	var in model.TaskInput
	var days []int

	cmd := &cobra.Command{
		Use:   "add-task [flow-id] [title]",
		Short: "Add a task to a flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[1]
			in.RecurringDays = days
			task, err := a.flows.AddTask(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Description, "description", "", "task description")
	cmd.Flags().StringVar(&in.StartDate, "start-date", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.EndDate, "end-date", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.StartTime, "start", "", "start time, HH:MM")
	cmd.Flags().StringVar(&in.EndTime, "end", "", "end time, HH:MM")
	cmd.Flags().IntSliceVar(&days, "days", nil, "recurring weekdays, 0=Sunday..6=Saturday")
	return cmd
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func timeRange(it report.AgendaItem) string {
	var b strings.Builder
	if it.Start != nil {
		b.WriteString(it.Start.Format("15:04"))
	}
	if it.End != nil {
		b.WriteString("-" + it.End.Format("15:04"))
	}
	return b.String()
}
