package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExisting(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		wantErr  bool
		errMsgs  []string
	}{
		{
			name: "no existing files",
		},
		{
			name:     "existing canvass.yml only",
			existing: []string{"canvass.yml"},
			wantErr:  true,
			errMsgs:  []string{"Found existing: canvass.yml"},
		},
		{
			name:     "existing roster.csv only",
			existing: []string{"roster.csv"},
			wantErr:  true,
			errMsgs:  []string{"Found existing: roster.csv"},
		},
		{
			name:     "both files exist",
			existing: []string{"canvass.yml", "roster.csv"},
			wantErr:  true,
			errMsgs:  []string{"  - canvass.yml", "  - roster.csv", "canvass init --force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.existing {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
			}

			err := CheckExisting(dir)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			for _, msg := range tt.errMsgs {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}
