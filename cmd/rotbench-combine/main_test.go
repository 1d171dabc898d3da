package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/rotbench/internal/schema"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	require.NoError(t, err)
	stderrR, stderrW, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = stdoutW
	os.Stderr = stderrW

	stdoutC := make(chan []byte)
	stderrC := make(chan []byte)
	go func() { b, _ := io.ReadAll(stdoutR); stdoutC <- b }()
	go func() { b, _ := io.ReadAll(stderrR); stderrC <- b }()

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes := <-stdoutC
	stderrBytes := <-stderrC
	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func fullRow(t *testing.T, id int, seed string) string {
	t.Helper()
	v, err := schema.Lookup(id)
	require.NoError(t, err)
	cells := make([]string, len(v.Fields))
	for i := range cells {
		cells[i] = "1.5"
	}
	cells[0] = strconv.Itoa(id)
	cells[2] = seed
	return strings.Join(cells, ",")
}

func TestRunCombinesFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	out := filepath.Join(dir, "all.csv")
	require.NoError(t, os.WriteFile(a, []byte(fullRow(t, 5, "11")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(fullRow(t, 6, "12")+"\n"), 0o644))

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return run([]string{"-log-level", "error", out, a, b})
	})
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "rotbench combine")

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(body), "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FILE-VERSION,K,SEED,"))
	assert.True(t, strings.HasPrefix(lines[1], "6,1.5,11,1.5,1.5,1.5,-3,-3,-3,-3,-3,-3,1.5"))
	assert.True(t, strings.HasPrefix(lines[2], "6,1.5,12,1.5,1.5,1.5,1.5"))
}

func TestRunAbortsOnUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "all.csv")
	require.NoError(t, os.WriteFile(in, []byte("8,1,2,3,4,5\n"), 0o644))

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return run([]string{"-q", out, in})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown format version: 8")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunRequiresOutput(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return run(nil)
	})
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")
}
