package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/sync"
)

func newCoursesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the courses a sync run would visit",
		Long: `Resolve the current and future Canvas courses exactly as a sync run does
(enrolled courses first, active courses filtered by term dates as fallback)
and print them as a table. Nothing is written to Notion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := newCanvasClient(root.cfg)
			courses, err := sync.SelectCurrentOrFuture(cmd.Context(), src, time.Now(), root.log)
			if err != nil {
				return err
			}
			if len(courses) == 0 {
				root.log.Info("No current or future courses")
				return nil
			}
			root.log.Debug("Resolved courses", logger.Int("count", len(courses)))
			renderCourses(os.Stdout, courses)
			return nil
		},
	}
}
