package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionResetCmd_ClearsState(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPair(t)
	_, err := runCmd(t, "dest", "create", "out.md")
	require.NoError(t, err)

	out, err := runCmd(t, "session", "reset", "--yes")

	require.NoError(t, err)
	assert.Contains(t, out, "Session reset.")
	assert.Empty(t, listGroups(t))
	assert.Empty(t, listUnique(t))
	out, err = runCmd(t, "dest", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No destination documents.")
}

func TestSessionResetCmd_Confirmation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		aborted bool
	}{
		{"confirmed", "y\n", false},
		{"declined", "n\n", true},
		{"empty answer", "\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			rootCmd.SetIn(strings.NewReader(tt.input))
			defer rootCmd.SetIn(nil)

			out, err := runCmd(t, "session", "reset")

			require.NoError(t, err)
			if tt.aborted {
				assert.Contains(t, out, "Aborted.")
			} else {
				assert.Contains(t, out, "Session reset.")
			}
		})
	}
}

func TestSessionResetCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	SetServices(Services{})
	defer cleanup()

	_, err := runCmd(t, "session", "reset", "--yes")

	assert.EqualError(t, err, "session service not configured")
}
