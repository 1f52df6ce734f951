package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pobcards/internal/cli"
	"github.com/at-ishikawa/pobcards/internal/clock"
	"github.com/at-ishikawa/pobcards/internal/config"
	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/pdf"
	"github.com/at-ishikawa/pobcards/internal/review"
	"github.com/at-ishikawa/pobcards/internal/sharing"
	"github.com/at-ishikawa/pobcards/internal/sheet"
)

// cardSeparator splits a --card value into term and definition.
const cardSeparator = "::"

func newDeckCommand() *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage personal decks",
	}

	deckCmd.AddCommand(
		newDeckListCommand(),
		newDeckCreateCommand(),
		newDeckDeleteCommand(),
		newDeckReviewCommand(),
		newDeckShareCommand(),
		newDeckPublishCommand(),
		newDeckImportCommand(),
		newDeckImportSheetCommand(),
		newDeckExportPDFCommand(),
	)
	return deckCmd
}

// withLibrary loads the config and the personal decks before running fn.
func withLibrary(fn func(cfg *config.Config, library *deck.Library) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	library, closeLibrary, err := newLibrary(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLibrary() }()
	return fn(cfg, library)
}

func newDeckListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List personal decks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				writeDeckList(cmd.OutOrStdout(), library.Decks())
				return nil
			})
		},
	}
}

func writeDeckList(w io.Writer, decks []deck.Deck) {
	if len(decks) == 0 {
		fmt.Fprintln(w, "No decks yet.")
		return
	}
	for _, d := range decks {
		created := time.UnixMilli(d.CreatedAt).Local().Format("2006-01-02")
		line := fmt.Sprintf("%-36s  %-30s  %4d cards  %s", d.ID, d.Title, len(d.Cards), created)
		if d.Imported() {
			line += "  (imported)"
		}
		fmt.Fprintln(w, line)
	}
}

func newDeckCreateCommand() *cobra.Command {
	var description string
	var cards []string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a deck from term" + cardSeparator + "definition pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := deck.Draft{Title: args[0], Description: description}
			for i, value := range cards {
				term, definition, ok := strings.Cut(value, cardSeparator)
				if !ok {
					return fmt.Errorf("card %d: expected term%sdefinition, got %q", i+1, cardSeparator, value)
				}
				if err := draft.AddCard(term, definition); err != nil {
					return fmt.Errorf("card %d: %w", i+1, err)
				}
			}

			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := library.Create(draft)
				if err != nil && !warnStorage(cmd.OutOrStdout(), err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d cards): %s\n", d.Title, len(d.Cards), d.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "deck description")
	cmd.Flags().StringArrayVar(&cards, "card", nil, "card as term"+cardSeparator+"definition; repeat for each card")
	return cmd
}

func newDeckDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := findDeck(library, args[0])
				if err != nil {
					return err
				}
				if err := library.Delete(d.ID); err != nil && !warnStorage(cmd.OutOrStdout(), err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", d.Title)
				return nil
			})
		},
	}
}

func newDeckReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review <id>",
		Short: "Flip through a deck's cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := findDeck(library, args[0])
				if err != nil {
					return err
				}
				reviewCLI := cli.NewReviewCLI(review.New(), d, os.Stdin, cmd.OutOrStdout())
				return reviewCLI.Run(cmd.Context(), reviewCLI)
			})
		},
	}
}

func newDeckShareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "share <id>",
		Short: "Print a link that embeds the whole deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := findDeck(library, args[0])
				if err != nil {
					return err
				}
				link, err := sharing.NewPublisher(nil, cfg.Shares.Origin, clock.Real{}).InlineLink(d)
				if err != nil {
					return fmt.Errorf("build share link: %w", err)
				}
				writeShareLink(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}
}

func newDeckPublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Store a deck on the server and print its short share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := findDeck(library, args[0])
				if err != nil {
					return err
				}
				backend, closeBackend, err := newGateway(ctx, cfg)
				if err != nil {
					return err
				}
				defer func() { _ = closeBackend() }()

				code, link, err := sharing.NewPublisher(backend, cfg.Shares.Origin, clock.Real{}).Publish(ctx, d)
				if err != nil {
					return fmt.Errorf("publish deck: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Share code: %s\n", code)
				writeShareLink(cmd.OutOrStdout(), link)
				return nil
			})
		},
	}
}

func writeShareLink(w io.Writer, link string) {
	fmt.Fprintf(w, "Link: %s\n", link)
	fmt.Fprintf(w, "QR code: %s\n", sharing.QRCodeURL(link))
}

func newDeckImportCommand() *cobra.Command {
	var shareID string

	cmd := &cobra.Command{
		Use:   "import [link]",
		Short: "Import a deck from a share link or share code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (shareID == "") {
				return errors.New("pass either a share link or --share-id")
			}

			needsServer := shareID != ""
			if !needsServer {
				link, err := sharing.ParseLink(args[0])
				if err != nil {
					return fmt.Errorf("import deck: %w", err)
				}
				needsServer = link.Kind == sharing.LinkShared
			}

			ctx := cmd.Context()
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				var shares gateway.ShareStore
				if needsServer {
					backend, closeBackend, err := newGateway(ctx, cfg)
					if err != nil {
						return err
					}
					defer func() { _ = closeBackend() }()
					shares = backend
				}

				importer := sharing.NewImporter(library, shares, nil)
				var err error
				var d deck.Deck
				if shareID != "" {
					d, err = importer.ImportShared(ctx, shareID)
				} else {
					d, _, err = importer.ImportLink(ctx, args[0])
				}
				if err != nil && !warnStorage(cmd.OutOrStdout(), err) {
					return fmt.Errorf("import deck: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d cards): %s\n", d.Title, len(d.Cards), d.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&shareID, "share-id", "", "share code of a published deck")
	return cmd
}

func newDeckImportSheetCommand() *cobra.Command {
	var title string
	var description string
	opts := sheet.DefaultOptions()
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "import-sheet <file>",
		Short: "Create a deck from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SkipHeader = !noHeader
			result, err := sheet.ReadCards(args[0], opts)
			if err != nil {
				return fmt.Errorf("read sheet: %w", err)
			}
			for _, skipped := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped row %d: %s\n", skipped.Row, skipped.Reason)
			}

			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			draft := deck.Draft{Title: title, Description: description, Cards: result.Cards}

			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := library.Create(draft)
				if err != nil && !warnStorage(cmd.OutOrStdout(), err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d cards): %s\n", d.Title, len(d.Cards), d.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "deck title; defaults to the file name")
	cmd.Flags().StringVar(&description, "description", "", "deck description")
	cmd.Flags().StringVar(&opts.SheetName, "sheet", "", "sheet name; defaults to the first sheet")
	cmd.Flags().StringVar(&opts.TermColumn, "term-column", opts.TermColumn, "column holding terms")
	cmd.Flags().StringVar(&opts.DefinitionColumn, "definition-column", opts.DefinitionColumn, "column holding definitions")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "read the first row as a card")
	return cmd
}

func newDeckExportPDFCommand() *cobra.Command {
	var withLink bool

	cmd := &cobra.Command{
		Use:   "export-pdf <id> <output.pdf>",
		Short: "Export a deck as a printable PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(func(cfg *config.Config, library *deck.Library) error {
				d, err := findDeck(library, args[0])
				if err != nil {
					return err
				}

				var link string
				if withLink {
					link, err = sharing.NewPublisher(nil, cfg.Shares.Origin, clock.Real{}).InlineLink(d)
					if err != nil {
						return fmt.Errorf("build share link: %w", err)
					}
				}

				path, err := pdf.ExportDeck(d, args[1], link)
				if err != nil {
					return fmt.Errorf("export pdf: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported: %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withLink, "with-link", false, "include an import link in the PDF")
	return cmd
}
