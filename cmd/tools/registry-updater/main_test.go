// cmd/tools/registry-updater/main_test.go
package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	out := captureStdout(t, help)

	assert.Contains(t, out, "Usage: registry-updater <command> [flags]")
	for _, cmd := range []string{"add", "update", "validate", "list", "help"} {
		assert.Contains(t, out, "\n  "+cmd+" ")
	}
	assert.Regexp(t, `command\.\n$`, out)
	assert.NotRegexp(t, `\n\n$`, out)
}
