package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pobcards/internal/analytics"
	"github.com/at-ishikawa/pobcards/internal/cli"
	"github.com/at-ishikawa/pobcards/internal/study"
)

func newChaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters",
		Short: "List the chapters available for study",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backend, closeBackend, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeBackend() }()

			chapters, err := backend.FetchChapters(ctx)
			if err != nil {
				return fmt.Errorf("fetch chapters: %w", err)
			}
			if len(chapters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapters found.")
				return nil
			}
			for _, chapter := range chapters {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", chapter.Chapter, chapter.Name)
			}
			return nil
		},
	}
}

func newStudyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "study <chapter>",
		Short: "Run a timed study round over a chapter's terms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapter, err := parseChapter(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			user, err := currentUser(cfg)
			if err != nil {
				return err
			}
			backend, closeBackend, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeBackend() }()

			round := study.NewRound(backend, user, chapter)
			defer round.Close()
			studyCLI := cli.NewStudyCLI(round, os.Stdin, cmd.OutOrStdout())
			return studyCLI.Run(ctx, studyCLI)
		},
	}
}

func newAnalyticsCommand() *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "analytics <chapter>",
		Short: "Show score history and progress for a chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapter, err := parseChapter(args[0])
			if err != nil {
				return err
			}
			dateRange, err := analytics.ParseRange(rangeFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			user, err := currentUser(cfg)
			if err != nil {
				return err
			}
			backend, closeBackend, err := newGateway(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeBackend() }()

			report, err := analytics.NewService(backend, nil).ChapterReport(ctx, user, chapter, dateRange)
			if err != nil {
				return fmt.Errorf("load analytics: %w", err)
			}
			cli.WriteAnalyticsReport(cmd.OutOrStdout(), report, time.Local)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", "all", "date range: all, 7 or 30 days")
	return cmd
}

func parseChapter(arg string) (int, error) {
	chapter, err := strconv.Atoi(arg)
	if err != nil || chapter < 0 {
		return 0, fmt.Errorf("invalid chapter %q: must be a non-negative number", arg)
	}
	return chapter, nil
}
