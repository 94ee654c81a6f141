package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

type runOptions struct {
	*rootOptions
	skipDigest bool
	onlyDated  bool
	jsonReport bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one sync pass and exit",
		Long: `Run the assignment pass and then the digest pass once.

Example:
  canvas-notion-sync run
  canvas-notion-sync run --skip-digest --only-dated=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.skipDigest, "skip-digest", false, "only sync assignments")
	cmd.Flags().BoolVar(&opts.onlyDated, "only-dated", true, "skip assignments without a due date (overrides ONLY_DATED)")
	cmd.Flags().BoolVar(&opts.jsonReport, "json", false, "print the run report as JSON instead of a table")

	return cmd
}

func runOnce(cmd *cobra.Command, opts *runOptions) error {
	a, err := newApp(cmd.Context(), opts.cfg, opts.log)
	if err != nil {
		return err
	}
	defer a.close()

	a.syncer.SkipDigest = opts.skipDigest
	if cmd.Flags().Changed("only-dated") {
		a.syncer.OnlyDated = opts.onlyDated
	}

	ctx := cmd.Context()
	if opts.cfg.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.cfg.SyncTimeout)
		defer cancel()
	}

	rep, err := a.syncer.RunOnce(ctx)
	if err != nil {
		return err
	}
	if opts.jsonReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	renderReport(os.Stdout, rep)
	return nil
}
