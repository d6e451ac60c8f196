package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/domain/job"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job catalog",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadCLI()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := app.NewContainer(ctx, cfg, app.Options{
		Logger:    log.New(io.Discard, "", 0),
		SkipCache: true,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	jobs, err := catalog(ctx, c)
	if err != nil {
		return err
	}
	printJobs(cmd.OutOrStdout(), jobs)
	return nil
}

func printJobs(w io.Writer, jobs []job.Job) {
	for _, j := range jobs {
		fmt.Fprintf(w, "%4d  %-28s %s\n", j.ID, j.Role, strings.Join(j.Skills, ", "))
	}
}
