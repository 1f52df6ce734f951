package datasync

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/pobcards/internal/gateway"
	mock_datasync "github.com/at-ishikawa/pobcards/internal/mocks/datasync"
	mock_gateway "github.com/at-ishikawa/pobcards/internal/mocks/gateway"
)

const validContent = `chapters:
  - chapter: 1
    name: Cells
  - chapter: 2
    name: Tissues
terms:
  - term: mitosis
    definition: cell division
    chapter: 1
  - term: epithelium
    definition: covering tissue
    chapter: 2
`

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *ContentFile
		wantErr string
	}{
		{
			name: "valid file",
			data: validContent,
			want: &ContentFile{
				Chapters: []gateway.Chapter{{Chapter: 1, Name: "Cells"}, {Chapter: 2, Name: "Tissues"}},
				Terms: []gateway.Term{
					{Term: "mitosis", Definition: "cell division", Chapter: 1},
					{Term: "epithelium", Definition: "covering tissue", Chapter: 2},
				},
			},
		},
		{
			name:    "missing chapter name",
			data:    "chapters:\n  - chapter: 1\n",
			wantErr: "name",
		},
		{
			name:    "missing definition",
			data:    "chapters:\n  - chapter: 1\n    name: Cells\nterms:\n  - term: mitosis\n    chapter: 1\n",
			wantErr: "definition",
		},
		{
			name:    "undeclared chapter",
			data:    "chapters:\n  - chapter: 1\n    name: Cells\nterms:\n  - term: mitosis\n    definition: cell division\n    chapter: 9\n",
			wantErr: "undeclared chapter 9",
		},
		{
			name:    "duplicate term",
			data:    "chapters:\n  - chapter: 1\n    name: Cells\nterms:\n  - term: a\n    definition: b\n    chapter: 1\n  - term: a\n    definition: c\n    chapter: 1\n",
			wantErr: `term "a" appears twice`,
		},
		{
			name:    "duplicate chapter",
			data:    "chapters:\n  - chapter: 1\n    name: Cells\n  - chapter: 1\n    name: Again\n",
			wantErr: "chapter 1 is declared twice",
		},
		{
			name:    "not yaml",
			data:    "chapters: [",
			wantErr: "yaml.Unmarshal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContent([]byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteAndReadContentFile(t *testing.T) {
	file, err := ParseContent([]byte(validContent))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "content.yml")
	require.NoError(t, WriteContentFile(path, file))

	got, err := ReadContentFile(path)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestImporter_Import(t *testing.T) {
	tests := []struct {
		name  string
		opts  ImportOptions
		setup func(reader *mock_gateway.MockGateway, repo *mock_datasync.MockContentWriter)
		want  *ImportResult
	}{
		{
			name: "empty backend gets everything",
			setup: func(reader *mock_gateway.MockGateway, repo *mock_datasync.MockContentWriter) {
				reader.EXPECT().FetchChapters(gomock.Any()).Return([]gateway.Chapter{}, nil)
				repo.EXPECT().ImportContent(gomock.Any(),
					[]gateway.Chapter{{Chapter: 1, Name: "Cells"}, {Chapter: 2, Name: "Tissues"}},
					[]gateway.Term{
						{Term: "mitosis", Definition: "cell division", Chapter: 1},
						{Term: "epithelium", Definition: "covering tissue", Chapter: 2},
					},
				).Return(nil)
			},
			want: &ImportResult{ChaptersNew: 2, TermsNew: 2},
		},
		{
			name: "only changes are written",
			setup: func(reader *mock_gateway.MockGateway, repo *mock_datasync.MockContentWriter) {
				reader.EXPECT().FetchChapters(gomock.Any()).Return([]gateway.Chapter{
					{Chapter: 1, Name: "Cells"},
					{Chapter: 2, Name: "Old name"},
				}, nil)
				reader.EXPECT().FetchTerms(gomock.Any(), 1).Return([]gateway.Term{
					{Term: "mitosis", Definition: "cell division", Chapter: 1},
				}, nil)
				reader.EXPECT().FetchTerms(gomock.Any(), 2).Return([]gateway.Term{
					{Term: "epithelium", Definition: "old definition", Chapter: 2},
				}, nil)
				repo.EXPECT().ImportContent(gomock.Any(),
					[]gateway.Chapter{{Chapter: 2, Name: "Tissues"}},
					[]gateway.Term{{Term: "epithelium", Definition: "covering tissue", Chapter: 2}},
				).Return(nil)
			},
			want: &ImportResult{ChaptersUpdated: 1, ChaptersSkipped: 1, TermsUpdated: 1, TermsSkipped: 1},
		},
		{
			name: "dry run writes nothing",
			opts: ImportOptions{DryRun: true},
			setup: func(reader *mock_gateway.MockGateway, repo *mock_datasync.MockContentWriter) {
				reader.EXPECT().FetchChapters(gomock.Any()).Return(nil, nil)
			},
			want: &ImportResult{ChaptersNew: 2, TermsNew: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := mock_gateway.NewMockGateway(ctrl)
			repo := mock_datasync.NewMockContentWriter(ctrl)
			tt.setup(reader, repo)

			file, err := ParseContent([]byte(validContent))
			require.NoError(t, err)

			var out bytes.Buffer
			got, err := NewImporter(reader, repo, &out).Import(context.Background(), file, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImporter_Import_Errors(t *testing.T) {
	file, err := ParseContent([]byte(validContent))
	require.NoError(t, err)

	t.Run("fetch fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mock_gateway.NewMockGateway(ctrl)
		reader.EXPECT().FetchChapters(gomock.Any()).Return(nil, gateway.Unavailable("FetchChapters", fmt.Errorf("down")))

		_, err := NewImporter(reader, mock_datasync.NewMockContentWriter(ctrl), &bytes.Buffer{}).Import(context.Background(), file, ImportOptions{})
		assert.ErrorIs(t, err, gateway.ErrUnavailable)
	})

	t.Run("write fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mock_gateway.NewMockGateway(ctrl)
		repo := mock_datasync.NewMockContentWriter(ctrl)
		reader.EXPECT().FetchChapters(gomock.Any()).Return(nil, nil)
		repo.EXPECT().ImportContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("rollback"))

		_, err := NewImporter(reader, repo, &bytes.Buffer{}).Import(context.Background(), file, ImportOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ImportContent() > rollback")
	})
}

func TestExporter_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mock_gateway.NewMockGateway(ctrl)
	reader.EXPECT().FetchChapters(gomock.Any()).Return([]gateway.Chapter{{Chapter: 1, Name: "Cells"}}, nil)
	reader.EXPECT().FetchTerms(gomock.Any(), 1).Return([]gateway.Term{{Term: "mitosis", Definition: "cell division", Chapter: 1}}, nil)

	got, err := NewExporter(reader).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ContentFile{
		Chapters: []gateway.Chapter{{Chapter: 1, Name: "Cells"}},
		Terms:    []gateway.Term{{Term: "mitosis", Definition: "cell division", Chapter: 1}},
	}, got)
}
