package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/internal/service"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/spf13/cobra"
)

const defaultFlowsFile = "data/flows.json"

// app holds what every subcommand needs once the flows file is open.
type app struct {
	file     string
	at       string
	logLevel string

	instant  time.Time
	flows    service.FlowService
	schedule service.ScheduleService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "taskflowctl",
		Short:         "Inspect and edit a TaskFlow flows file",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	file := os.Getenv("TASKFLOW_FILE")
	if file == "" {
		file = defaultFlowsFile
	}
	root.PersistentFlags().StringVarP(&a.file, "file", "f", file, "flows JSON file")
	root.PersistentFlags().StringVar(&a.at, "at", "", "evaluate at this RFC3339 instant instead of now")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(a.flowsCmd())
	root.AddCommand(a.createFlowCmd())
	root.AddCommand(a.statusCmd())
	root.AddCommand(a.todayCmd())
	root.AddCommand(a.calendarCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.toggleCmd())
	root.AddCommand(a.addTaskCmd())

	return root
}

func (a *app) open(cmd *cobra.Command) error {
	slog.SetDefault(logger.New(cmd.ErrOrStderr(), a.logLevel, "text"))

	if a.at != "" {
		at, err := time.Parse(time.RFC3339, a.at)
		if err != nil {
			return fmt.Errorf("invalid --at %q, want RFC3339", a.at)
		}
		a.instant = at
	}

	repo, err := repository.NewFileFlowRepository(a.file)
	if err != nil {
		return err
	}

	a.flows = service.NewFlowService(repo, nil, nil, a.now)
	a.schedule = service.NewScheduleService(repo, a.now)
	return nil
}

func (a *app) now() time.Time {
	if !a.instant.IsZero() {
		return a.instant
	}
	return time.Now()
}
