// Package datasync moves chapter and term content between YAML files and the gateway backend.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/pobcards/internal/gateway"
)

//go:generate mockgen -destination=../mocks/datasync/mock_content_writer.go -package=mock_datasync github.com/at-ishikawa/pobcards/internal/datasync ContentWriter

// ContentFile is the YAML layout for seeding content.
//
//	chapters:
//	  - chapter: 1
//	    name: Cells
//	terms:
//	  - term: mitosis
//	    definition: cell division
//	    chapter: 1
type ContentFile struct {
	Chapters []gateway.Chapter `yaml:"chapters" validate:"dive"`
	Terms    []gateway.Term    `yaml:"terms" validate:"dive"`
}

// ContentWriter upserts content in one transaction.
type ContentWriter interface {
	ImportContent(ctx context.Context, chapters []gateway.Chapter, terms []gateway.Term) error
}

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	ChaptersNew     int
	ChaptersUpdated int
	ChaptersSkipped int
	TermsNew        int
	TermsUpdated    int
	TermsSkipped    int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ReadContentFile parses and validates a content file.
// Every term must belong to a chapter declared in the same file, and (chapter, term) pairs are unique.
func ReadContentFile(path string) (*ContentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	return ParseContent(data)
}

// ParseContent is ReadContentFile on bytes.
func ParseContent(data []byte) (*ContentFile, error) {
	var file ContentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("validate.Struct() > %w", err)
	}

	var errs []error
	chapters := make(map[int]bool, len(file.Chapters))
	for _, c := range file.Chapters {
		if chapters[c.Chapter] {
			errs = append(errs, fmt.Errorf("chapter %d is declared twice", c.Chapter))
		}
		chapters[c.Chapter] = true
	}
	seen := make(map[termKey]bool, len(file.Terms))
	for _, t := range file.Terms {
		if !chapters[t.Chapter] {
			errs = append(errs, fmt.Errorf("term %q refers to undeclared chapter %d", t.Term, t.Chapter))
		}
		key := termKey{chapter: t.Chapter, term: t.Term}
		if seen[key] {
			errs = append(errs, fmt.Errorf("term %q appears twice in chapter %d", t.Term, t.Chapter))
		}
		seen[key] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &file, nil
}

// WriteContentFile writes file as YAML to path.
func WriteContentFile(path string, file *ContentFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

type termKey struct {
	chapter int
	term    string
}

// Importer compares a content file with what the backend already has
// and writes only new or changed entries.
type Importer struct {
	reader gateway.ContentStore
	repo   ContentWriter
	writer io.Writer
}

// NewImporter creates a new Importer. Progress lines go to writer.
func NewImporter(reader gateway.ContentStore, repo ContentWriter, writer io.Writer) *Importer {
	return &Importer{
		reader: reader,
		repo:   repo,
		writer: writer,
	}
}

// Import seeds file into the backend.
func (imp *Importer) Import(ctx context.Context, file *ContentFile, opts ImportOptions) (*ImportResult, error) {
	existingChapters, err := imp.reader.FetchChapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchChapters() > %w", err)
	}
	chapterNames := make(map[int]string, len(existingChapters))
	for _, c := range existingChapters {
		chapterNames[c.Chapter] = c.Name
	}

	var result ImportResult
	var chapters []gateway.Chapter
	for _, c := range file.Chapters {
		name, ok := chapterNames[c.Chapter]
		switch {
		case !ok:
			fmt.Fprintf(imp.writer, "  [NEW]  chapter %d %q\n", c.Chapter, c.Name)
			result.ChaptersNew++
			chapters = append(chapters, c)
		case name != c.Name:
			fmt.Fprintf(imp.writer, "  [UPDATE]  chapter %d %q\n", c.Chapter, c.Name)
			result.ChaptersUpdated++
			chapters = append(chapters, c)
		default:
			result.ChaptersSkipped++
		}
	}

	definitions := map[termKey]string{}
	for chapter := range chapterSet(file.Terms) {
		if _, ok := chapterNames[chapter]; !ok {
			continue
		}
		terms, err := imp.reader.FetchTerms(ctx, chapter)
		if err != nil {
			return nil, fmt.Errorf("FetchTerms(%d) > %w", chapter, err)
		}
		for _, t := range terms {
			definitions[termKey{chapter: t.Chapter, term: t.Term}] = t.Definition
		}
	}

	var terms []gateway.Term
	for _, t := range file.Terms {
		definition, ok := definitions[termKey{chapter: t.Chapter, term: t.Term}]
		switch {
		case !ok:
			fmt.Fprintf(imp.writer, "  [NEW]  %q (chapter %d)\n", t.Term, t.Chapter)
			result.TermsNew++
			terms = append(terms, t)
		case definition != t.Definition:
			fmt.Fprintf(imp.writer, "  [UPDATE]  %q (chapter %d)\n", t.Term, t.Chapter)
			result.TermsUpdated++
			terms = append(terms, t)
		default:
			result.TermsSkipped++
		}
	}

	if opts.DryRun || (len(chapters) == 0 && len(terms) == 0) {
		return &result, nil
	}
	if err := imp.repo.ImportContent(ctx, chapters, terms); err != nil {
		return nil, fmt.Errorf("ImportContent() > %w", err)
	}
	return &result, nil
}

func chapterSet(terms []gateway.Term) map[int]struct{} {
	set := map[int]struct{}{}
	for _, t := range terms {
		set[t.Chapter] = struct{}{}
	}
	return set
}

// Exporter reads all content from the backend.
type Exporter struct {
	reader gateway.ContentStore
}

func NewExporter(reader gateway.ContentStore) *Exporter {
	return &Exporter{reader: reader}
}

// Export returns every chapter with its terms, in chapter order.
func (e *Exporter) Export(ctx context.Context) (*ContentFile, error) {
	chapters, err := e.reader.FetchChapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchChapters() > %w", err)
	}

	file := ContentFile{Chapters: chapters, Terms: []gateway.Term{}}
	for _, c := range chapters {
		terms, err := e.reader.FetchTerms(ctx, c.Chapter)
		if err != nil {
			return nil, fmt.Errorf("FetchTerms(%d) > %w", c.Chapter, err)
		}
		file.Terms = append(file.Terms, terms...)
	}
	return &file, nil
}
