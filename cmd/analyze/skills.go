package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/domain/recommendation"
	"skillbridge/internal/domain/skill"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [name...]",
	Short: "List taxonomy skills with their synonyms",
	Long:  "List every skill the extractor recognizes, or resolve the given names, with their synonyms and whether curated learning resources exist.",
	RunE:  runSkills,
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
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

	return printSkills(cmd.OutOrStdout(), c.Taxonomy, c.Recommender, args)
}

// printSkills writes one line per skill. Names that do not resolve are
// reported together after the known ones are printed.
func printSkills(w io.Writer, tax *skill.Taxonomy, rec *recommendation.Engine, names []string) error {
	if len(names) == 0 {
		names = tax.Names()
	}

	var unknown []string
	for _, n := range names {
		name, ok := tax.Canonical(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		resources := "generic"
		if rec.HasCurated(name) {
			resources = "curated"
		}
		fmt.Fprintf(w, "%-24s %-8s %s\n", name, resources, strings.Join(tax.Synonyms(name)[1:], ", "))
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown skills: %s", strings.Join(unknown, ", "))
	}
	return nil
}
