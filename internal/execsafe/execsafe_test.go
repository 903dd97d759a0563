package execsafe

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	res, err := Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	_, err := Run(context.Background(), "this-binary-does-not-exist-anywhere")
	assert.Error(t, err)
}

func TestSanitizedEnvOmitsDeniedVars(t *testing.T) {
	for _, kv := range sanitizedEnv() {
		key, _, _ := strings.Cut(kv, "=")
		for _, d := range deniedEnv {
			assert.NotEqual(t, d, key)
		}
	}
}

func TestStripDeniedRemovesOnlyDenylistedKeys(t *testing.T) {
	env := []string{"PATH=/bin", "LD_PRELOAD=/evil.so", "HOME=/root"}
	out := StripDenied(env)
	assert.Contains(t, out, "PATH=/bin")
	assert.Contains(t, out, "HOME=/root")
	assert.NotContains(t, out, "LD_PRELOAD=/evil.so")
}

func TestRunWithStdinFeedsInput(t *testing.T) {
	res, err := RunWithStdin(context.Background(), "line1\nline2\n", "cat")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", res.Stdout)
}
