package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pobcards/internal/database"
	"github.com/at-ishikawa/pobcards/internal/database/migrations"
	"github.com/at-ishikawa/pobcards/internal/datasync"
	"github.com/at-ishikawa/pobcards/internal/gateway/dbgateway"
)

func newContentCommand() *cobra.Command {
	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Seed and export the chapters and terms in the database",
	}

	contentCmd.AddCommand(newContentSeedCommand())
	contentCmd.AddCommand(newContentExportCommand())
	return contentCmd
}

func newContentSeedCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Import chapters and terms from a YAML file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			file, err := datasync.ReadContentFile(args[0])
			if err != nil {
				return fmt.Errorf("read content file: %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()
			repo := dbgateway.New(db)

			importer := datasync.NewImporter(repo, repo, os.Stdout)
			opts := datasync.ImportOptions{
				DryRun: dryRun,
			}
			result, err := importer.Import(ctx, file, opts)
			if err != nil {
				return fmt.Errorf("import content: %w", err)
			}

			fmt.Println("\nImport Summary:")
			if opts.DryRun {
				fmt.Println("  (dry-run mode, no changes made)")
			}
			fmt.Printf("  Chapters:  %d new, %d updated, %d skipped\n", result.ChaptersNew, result.ChaptersUpdated, result.ChaptersSkipped)
			fmt.Printf("  Terms:     %d new, %d updated, %d skipped\n", result.TermsNew, result.TermsUpdated, result.TermsSkipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be imported without writing")
	return cmd
}

func newContentExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export chapters and terms from the gateway to a YAML file",
		Args:  cobra.ExactArgs(1),
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

			file, err := datasync.NewExporter(backend).Export(ctx)
			if err != nil {
				return fmt.Errorf("export content: %w", err)
			}
			if err := datasync.WriteContentFile(args[0], file); err != nil {
				return fmt.Errorf("write content file: %w", err)
			}
			fmt.Printf("Exported %d chapters and %d terms to %s\n", len(file.Chapters), len(file.Terms), args[0])
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema commands",
	}

	migrateCmd.AddCommand(newMigrateUpCommand())
	migrateCmd.AddCommand(newMigrateStatusCommand())
	return migrateCmd
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := migrations.Up(db.DB); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			status, err := migrations.CheckStatus(db.DB)
			if err != nil {
				return fmt.Errorf("check migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\nLatest version:  %d\n", status.Current, status.Latest)
			switch {
			case status.Dirty:
				fmt.Fprintln(cmd.OutOrStdout(), "The last migration failed; fix the schema and force the version.")
			case status.UpToDate():
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) pending.\n", status.Latest-status.Current)
			}
			return nil
		},
	}
}
