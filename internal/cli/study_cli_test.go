package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/pobcards/internal/gateway"
	mock_gateway "github.com/at-ishikawa/pobcards/internal/mocks/gateway"
	"github.com/at-ishikawa/pobcards/internal/shuffle"
	"github.com/at-ishikawa/pobcards/internal/study"
	"github.com/at-ishikawa/pobcards/internal/testutil"
)

var testStart = time.Date(2026, 4, 10, 8, 30, 0, 0, time.UTC)

var chapterTerms = []gateway.Term{
	{Term: "femur", Definition: "thigh bone", Chapter: 2},
	{Term: "tibia", Definition: "shin bone", Chapter: 2},
}

func newTestRound(backend study.Backend) *study.Round {
	return study.NewRound(backend, gateway.User{ID: "user-1"}, 2,
		study.WithClock(testutil.NewStubClock(testStart)),
		study.WithShuffler(shuffle.Identity[gateway.Term]),
		study.WithTicker(func() study.Ticker { return &testutil.ManualTicker{} }),
	)
}

func TestStudyCLI_Session(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		setup      func(m *mock_gateway.MockGateway)
		wantOutput []string
		wantState  study.State
	}{
		{
			name:  "complete round and save score",
			input: "\ny\nn\nq\n",
			setup: func(m *mock_gateway.MockGateway) {
				m.EXPECT().FetchTerms(gomock.Any(), 2).Return(chapterTerms, nil)
				m.EXPECT().WriteScore(gomock.Any(), "user-1", 2, fmt.Sprint(testStart.Unix()), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _ int, _ string, record gateway.ScoreRecord) error {
						assert.Equal(t, 1, record.Correct)
						assert.Equal(t, 1, record.Incorrect)
						assert.Equal(t, 2, record.Total)
						return nil
					})
			},
			wantOutput: []string{"[1/2] 00:00", "femur", "thigh bone", "[2/2]", "tibia", "Accuracy:  50%", "Score saved."},
			wantState:  study.StateComplete,
		},
		{
			name:  "save failure can be retried",
			input: "y\ny\nc\nq\n",
			setup: func(m *mock_gateway.MockGateway) {
				m.EXPECT().FetchTerms(gomock.Any(), 2).Return(chapterTerms, nil)
				gomock.InOrder(
					m.EXPECT().WriteScore(gomock.Any(), "user-1", 2, gomock.Any(), gomock.Any()).
						Return(gateway.Unavailable("WriteScore", fmt.Errorf("offline"))),
					m.EXPECT().WriteScore(gomock.Any(), "user-1", 2, gomock.Any(), gomock.Any()).Return(nil),
				)
			},
			wantOutput: []string{"Accuracy:  100%", "Could not save your score", "[c] save score again", "Score saved."},
			wantState:  study.StateComplete,
		},
		{
			name:  "load failure then retry",
			input: "r\nq\n",
			setup: func(m *mock_gateway.MockGateway) {
				gomock.InOrder(
					m.EXPECT().FetchTerms(gomock.Any(), 2).Return(nil, gateway.Unavailable("FetchTerms", fmt.Errorf("offline"))),
					m.EXPECT().FetchTerms(gomock.Any(), 2).Return(chapterTerms, nil),
				)
			},
			wantOutput: []string{"Could not load terms", "[1/2]", "femur"},
			wantState:  study.StateActive,
		},
		{
			name:  "empty chapter",
			input: "",
			setup: func(m *mock_gateway.MockGateway) {
				m.EXPECT().FetchTerms(gomock.Any(), 2).Return([]gateway.Term{{Term: "other", Definition: "x", Chapter: 3}}, nil)
			},
			wantOutput: []string{"No terms found for chapter 2."},
			wantState:  study.StateEmpty,
		},
		{
			name:  "restart mid round",
			input: "y\ns\nq\n",
			setup: func(m *mock_gateway.MockGateway) {
				m.EXPECT().FetchTerms(gomock.Any(), 2).Return(chapterTerms, nil)
			},
			wantOutput: []string{"[2/2]", "[1/2]"},
			wantState:  study.StateActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			backend := mock_gateway.NewMockGateway(ctrl)
			tt.setup(backend)

			round := newTestRound(backend)
			defer round.Close()

			var out bytes.Buffer
			cli := NewStudyCLI(round, strings.NewReader(tt.input), &out)
			require.NoError(t, cli.Run(context.Background(), cli))

			for _, want := range tt.wantOutput {
				assert.Contains(t, out.String(), want)
			}
			assert.Equal(t, tt.wantState, round.State())
		})
	}
}
