package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"skillbridge/internal/config"
	"skillbridge/internal/extract"
	"skillbridge/internal/infrastructure/queue"
	"skillbridge/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <path>",
	Short: "Upload a résumé and queue it for the analysis worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

var submitJobID int64

func init() {
	submitCmd.Flags().Int64VarP(&submitJobID, "job", "j", 0, "Catalog job id to match against (required)")
	submitCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	path := args[0]
	filename := filepath.Base(path)
	kind, err := extract.KindFromName(filename)
	if err != nil {
		return err
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		return err
	}
	if err := cfg.RequireStorage(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read résumé: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.NewS3Store(ctx, cfg.Storage, int64(cfg.App.MaxUploadBytes))
	if err != nil {
		return err
	}
	qc, err := queue.Dial(cfg.Queue, log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
	if err != nil {
		return err
	}
	defer qc.Close()

	req := queue.AnalysisRequest{
		RequestID: uuid.NewString(),
		JobID:     submitJobID,
		ObjectKey: objectKey(filename),
		Filename:  filename,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := store.Upload(ctx, req.ObjectKey, contentType(kind), data); err != nil {
		return err
	}
	if err := qc.PublishRequest(ctx, req); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Queued request %s (updates on routing key %s)\n", req.RequestID, queue.RoutingKey(req.RequestID))
	return nil
}

func objectKey(filename string) string {
	return "resumes/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func contentType(k extract.Kind) string {
	switch k {
	case extract.KindPDF:
		return "application/pdf"
	case extract.KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}
