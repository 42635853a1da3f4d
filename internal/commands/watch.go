package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/evghenin/moldova-banking/internal/config"
	"github.com/evghenin/moldova-banking/internal/logger"
)

func newWatchCommand() *cobra.Command {
	var dir string
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically import statements from the import directory",
		Long: `Watch runs the import pipeline on a cron schedule, picking up any
statement files dropped into the import directory. The schedule comes
from the project config (import.schedule) unless overridden with
--schedule. Stop with SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving project dir: %w", err)
			}
			return runWatch(cmd, absDir, schedule)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule override (e.g. \"@every 5m\")")

	return cmd
}

func runWatch(cmd *cobra.Command, dir, scheduleOverride string) error {
	log := logger.New()

	// Every tick reloads config and rules, so edits take effect without
	// restarting the watcher.
	scan := func() {
		cfg, runner, err := buildRunner(dir, log)
		if err != nil {
			log.Error().Err(err).Msg("pipeline setup failed")
			return
		}
		if err := runImportAll(cmd, dir, cfg, runner, log); err != nil {
			log.Error().Err(err).Msg("scheduled import failed")
		}
	}

	schedule := scheduleOverride
	if schedule == "" {
		cfg, err := config.Load(filepath.Join(dir, "moldbank.yaml"))
		if err != nil {
			return err
		}
		schedule = cfg.Import.Schedule
	}
	if schedule == "" {
		schedule = "@every 5m"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, scan); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	log.Info().Str("schedule", schedule).Str("dir", dir).Msg("watching for statements")
	scan()
	c.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Info().Msg("shutting down")
	ctx := c.Stop()
	<-ctx.Done()
	return nil
}
