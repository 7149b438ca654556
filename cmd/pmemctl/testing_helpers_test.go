package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag variable, since cobra leaves values from a
// previous Execute in place.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	createSize = 0
	allocZero, allocRoot = false, -1
	flushLevel, flushOffset = "persist", ""
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), fnErr
}

// run executes pmemctl with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)
	rootCmd.SetArgs(args)
	return captureOutput(t, rootCmd.Execute)
}

// newPoolFile creates a pool in a temp dir and returns its path.
func newPoolFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pmem")
	_, err := run(t, "create", path)
	require.NoError(t, err)
	return path
}

// decodeJSON unmarshals command output.
func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}
