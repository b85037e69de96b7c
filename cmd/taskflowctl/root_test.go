package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const at = "2024-07-29T09:00:00Z"

func run(t *testing.T, file string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--file", file}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, file string, args ...string) string {
	t.Helper()
	out, err := run(t, file, args...)
	require.NoError(t, err)
	return out
}

func TestCLI_Workflow(t *testing.T) {
	file := filepath.Join(t.TempDir(), "flows.json")

	flowID := strings.TrimSpace(mustRun(t, file, "--at", at, "create-flow", "Morning", "--task", "Stretch"))
	require.Len(t, flowID, 36)

	taskID := strings.TrimSpace(mustRun(t, file, "--at", at, "add-task", flowID, "Standup", "--start", "10:00", "--end", "10:15"))
	require.Len(t, taskID, 36)

	out := mustRun(t, file, "flows")
	assert.Contains(t, out, "Morning")

	out = mustRun(t, file, "--at", at, "status", flowID)
	assert.Contains(t, out, "Starts in: 01:00:00")
	assert.Contains(t, out, "Completed today: 0/2")

	out = mustRun(t, file, "--at", at, "today")
	assert.Contains(t, out, "10:00-10:15")
	assert.Contains(t, out, "Standup")

	out = mustRun(t, file, "--at", "2024-07-29T10:05:00Z", "toggle", flowID, taskID)
	assert.Equal(t, "Standup: Completed on time\n", out)

	out = mustRun(t, file, "--at", "2024-07-29T10:05:00Z", "calendar", flowID, taskID, "--month", "2024-07")
	assert.Contains(t, out, "July 2024: 1 completed")

	out = mustRun(t, file, "--at", "2024-07-29T10:05:00Z", "report", flowID)
	assert.Contains(t, out, "Flow: Morning")
	assert.Contains(t, out, "Completed today: 1/2")
}

func TestCLI_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "flows.json")

	_, err := run(t, file, "status", "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, "invalid flow id", errorMessage(err))

	_, err = run(t, file, "--at", "noon", "today")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")

	out, err := run(t, file, "today")
	require.NoError(t, err)
	assert.Equal(t, "Nothing scheduled today\n", out)
}
