// Command canvas-notion-sync copies Canvas assignments into a Notion database
// and keeps a Notion digest page of every course's syllabus and start-here
// material.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/logger"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	cfg config.Config
	log logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "canvas-notion-sync",
		Short: "One-way Canvas to Notion sync",
		Long: `Upserts Canvas assignments into a Notion database keyed by Canvas ID and
rebuilds a Notion digest page listing each course's syllabus and orientation
material. Configuration comes from the environment (.env and .env.local are
loaded when present).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFiles(); err != nil {
				return err
			}
			opts.cfg = config.Load()

			log, err := logger.New(opts.cfg.EffectiveLogLevel())
			if err != nil {
				return err
			}
			opts.log = log.With(logger.String("service", "canvas-notion-sync"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newCoursesCommand(opts))

	return cmd
}
