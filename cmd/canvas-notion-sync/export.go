package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"canvas-notion-sync/internal/export"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/sftpclient"
)

type exportOptions struct {
	*rootOptions
	out        string
	uploadSFTP bool
	onlyDated  bool
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := &exportOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write active-course assignments to CSV",
		Long: `Fetch and normalize the assignments of every active Canvas course and
write them as CSV, optionally uploading the file over SFTP. Notion is not
touched.

Example:
  canvas-notion-sync export --out out/assignments.csv --sftp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "assignments.csv", "output csv path")
	cmd.Flags().BoolVar(&opts.uploadSFTP, "sftp", false, "upload the generated CSV via SFTP")
	cmd.Flags().BoolVar(&opts.onlyDated, "only-dated", false, "skip assignments without a due date")

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	ctx := cmd.Context()
	cfg, log := opts.cfg, opts.log

	records, err := export.CollectAssignments(ctx, newCanvasClient(cfg), opts.onlyDated, log)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteAssignmentsCSV(&buf, records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	if dir := filepath.Dir(opts.out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Info("Wrote assignments CSV", logger.String("path", opts.out), logger.Int("rows", len(records)))

	if !opts.uploadSFTP {
		return nil
	}
	err = sftpclient.Upload(ctx, sftpclient.Config{
		Host:      cfg.SFTPHost,
		Port:      cfg.SFTPPort,
		User:      cfg.SFTPUser,
		Pass:      cfg.SFTPPass,
		RemoteDir: cfg.SFTPDir,
		HostKey:   cfg.SFTPHostKey,
	}, bytes.NewReader(buf.Bytes()), filepath.Base(opts.out))
	if err != nil {
		return err
	}
	log.Info("Uploaded assignments CSV", logger.String("dir", cfg.SFTPDir), logger.String("file", filepath.Base(opts.out)))
	return nil
}
