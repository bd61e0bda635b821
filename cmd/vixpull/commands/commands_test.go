package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_MockPull(t *testing.T) {
	t.Setenv("VIXPULL_SOURCE", "mock")
	dir := t.TempDir()
	output := filepath.Join(dir, "vix.csv")

	stdout, err := execute(t,
		"--config", filepath.Join(dir, "absent.yaml"),
		"--start", "2023-01-02",
		"--stop", "2023-01-09",
		"--output", output,
		"--progress", "2",
		"--sqlite", filepath.Join(dir, "days.db"),
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Pulling data for 2023-01-03, 6 pulls left")
	assert.Contains(t, stdout, "Writing output to: "+output)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "Finished."))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "2023-01-02,"))
	assert.True(t, strings.HasPrefix(lines[4], "2023-01-06,"))
}

func TestRootCommand_MalformedDate(t *testing.T) {
	t.Setenv("VIXPULL_SOURCE", "mock")
	dir := t.TempDir()

	_, err := execute(t,
		"--config", filepath.Join(dir, "absent.yaml"),
		"--start", "2023-13-45",
		"--stop", "2023-01-09",
		"--output", filepath.Join(dir, "vix.csv"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pull.start")

	_, statErr := os.Stat(filepath.Join(dir, "vix.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestScheduleCommand_BadCron(t *testing.T) {
	t.Setenv("VIXPULL_SOURCE", "mock")
	dir := t.TempDir()

	_, err := execute(t, "schedule",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--start", "2023-01-02",
		"--output", filepath.Join(dir, "vix.csv"),
		"--cron", "not a cron",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register pull task")
}
