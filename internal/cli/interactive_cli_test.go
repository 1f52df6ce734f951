package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_cli "github.com/at-ishikawa/pobcards/internal/mocks/cli"
)

func TestInteractiveCLI_Run(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *mock_cli.MockSession)
		wantErr string
	}{
		{
			name: "runs until the session ends",
			setup: func(m *mock_cli.MockSession) {
				gomock.InOrder(
					m.EXPECT().Session(gomock.Any()).Return(nil).Times(2),
					m.EXPECT().Session(gomock.Any()).Return(errEnd),
				)
			},
		},
		{
			name: "returns session errors",
			setup: func(m *mock_cli.MockSession) {
				m.EXPECT().Session(gomock.Any()).Return(errors.New("broken terminal"))
			},
			wantErr: "error: broken terminal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			session := mock_cli.NewMockSession(ctrl)
			tt.setup(session)

			err := newInteractiveCLI(strings.NewReader(""), &bytes.Buffer{}).Run(context.Background(), session)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInteractiveCLI_readCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "trims and lowercases", input: "  Y \n", want: "y"},
		{name: "blank line", input: "\n", want: ""},
		{name: "last line without newline", input: "q", want: "q"},
		{name: "end of input", input: "", wantErr: errEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := newInteractiveCLI(strings.NewReader(tt.input), &out).readCommand("> ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "> ")
		})
	}
}
