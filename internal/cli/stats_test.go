package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kartoza/lottery-analyst/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ssqHistory = `{"game": "ssq", "draws": [
  {"issue": "2", "primary": [2, 3, 4, 5, 6, 7], "secondary": [9]},
  {"issue": "1", "primary": [1, 2, 3, 4, 5, 6], "secondary": [9]}
]}`

func resetStatsFlags(t *testing.T) {
	t.Cleanup(func() {
		statsGame, statsFile, statsTop, statsJSON, dataDir = "ssq", "", 0, false, ""
	})
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func writeHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ssq.json")
	require.NoError(t, os.WriteFile(path, []byte(ssqHistory), 0o644))
	return path
}

func TestStatsFromFile(t *testing.T) {
	resetStatsFlags(t)

	out, err := runCommand(t, "stats", "--file", writeHistory(t))
	require.NoError(t, err)

	assert.Contains(t, out, "双色球 (ssq), 2 draws")
	assert.Contains(t, out, "SECONDARY")
	assert.Contains(t, out, "2-3")
	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[3]), "2"), "most frequent number first: %q", lines[3])
}

func TestStatsJSONTop(t *testing.T) {
	resetStatsFlags(t)

	out, err := runCommand(t, "stats", "--file", writeHistory(t), "--json", "--top", "3")
	require.NoError(t, err)

	var st stats.Statistics
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Len(t, st.PrimaryFrequency, 3)
	assert.Equal(t, stats.NumberCount{Number: 2, Count: 2}, st.PrimaryFrequency[0])
	assert.Equal(t, []stats.NumberCount{{Number: 9, Count: 2}}, st.SecondaryFrequency)
	assert.Len(t, st.TopPrimaryPairs, 12)
}

func TestStatsFromStore(t *testing.T) {
	resetStatsFlags(t)

	out, err := runCommand(t, "stats", "--data-dir", t.TempDir(), "--game", "kl8")
	require.NoError(t, err)
	assert.Contains(t, out, "快乐八 (kl8), 0 draws")
	assert.NotContains(t, out, "SECONDARY")
}

func TestStatsErrors(t *testing.T) {
	resetStatsFlags(t)

	_, err := runCommand(t, "stats", "--game", "powerball", "--data-dir", t.TempDir())
	assert.Error(t, err)

	_, err = runCommand(t, "stats", "--top", "-1")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	t.Cleanup(func() { showVersion = false })

	out, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "Lottery Analyst v")
}
