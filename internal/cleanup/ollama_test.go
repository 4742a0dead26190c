package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbud-go/internal/config"
	"docbud-go/internal/types"
)

// fakeRunner drops a shell script standing in for the model runner binary.
func fakeRunner(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakeollama")
	script := "#!/bin/sh\ncat >/dev/null\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func ollamaConfig(bin string) config.Config {
	cfg := config.Default()
	cfg.OllamaBin = bin
	cfg.OllamaTimeoutSec = 5
	return cfg
}

func TestOllamaCleanSuccess(t *testing.T) {
	bin := fakeRunner(t, `echo "Here is the cleaned transcript:"
echo "[00:00:01] SPEAKER_00: Hello there."
echo "[00:00:04] SPEAKER_01: Hi, doctor."
echo "Let me know if you need anything else."
`)
	c := NewOllama(ollamaConfig(bin))
	require.True(t, c.Available())

	res := c.Clean(context.Background(), "[00:00:01] SPEAKER_00: Helo there.")

	assert.Equal(t, types.CleanupSuccess, res.Outcome)
	assert.Equal(t, "[00:00:01] SPEAKER_00: Hello there.\n[00:00:04] SPEAKER_01: Hi, doctor.", res.Text)
}

func TestOllamaCleanUnstructuredOutput(t *testing.T) {
	bin := fakeRunner(t, `echo "I am sorry, I cannot reformat this transcript."`)
	c := NewOllama(ollamaConfig(bin))

	res := c.Clean(context.Background(), "raw")

	assert.Equal(t, types.CleanupUnstructured, res.Outcome)
	assert.Equal(t, types.KindUnstructured, res.Kind)
	assert.Contains(t, res.Detail, "cannot reformat")
}

func TestOllamaCleanEmptyOutput(t *testing.T) {
	bin := fakeRunner(t, "true\n")
	c := NewOllama(ollamaConfig(bin))

	res := c.Clean(context.Background(), "raw")

	assert.Equal(t, types.CleanupError, res.Outcome)
	assert.Equal(t, types.KindUnexpected, res.Kind)
}

func TestOllamaCleanRunnerFailure(t *testing.T) {
	bin := fakeRunner(t, `echo "model 'mistral' not found" >&2
exit 1
`)
	c := NewOllama(ollamaConfig(bin))

	res := c.Clean(context.Background(), "raw")

	assert.Equal(t, types.CleanupError, res.Outcome)
	assert.Equal(t, types.KindUnexpected, res.Kind)
	assert.Contains(t, res.Detail, "not found")
}

func TestOllamaCleanTimeout(t *testing.T) {
	bin := fakeRunner(t, "sleep 5\n")
	cfg := ollamaConfig(bin)
	cfg.OllamaTimeoutSec = 1
	c := NewOllama(cfg)

	res := c.Clean(context.Background(), "raw")

	assert.Equal(t, types.CleanupError, res.Outcome)
	assert.Equal(t, types.KindTimeout, res.Kind)
}

func TestOllamaAvailability(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-runner")
	cfg := ollamaConfig(missing)
	assert.False(t, NewOllama(cfg).Available())

	bin := fakeRunner(t, "true\n")
	assert.True(t, NewOllama(ollamaConfig(bin)).Available())
}

func TestOllamaPromptReachesRunner(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "prompt.txt")
	path := filepath.Join(dir, "fakeollama")
	script := "#!/bin/sh\ncat > " + capture + "\necho \"[00:00:01] SPEAKER_00: Fine.\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	c := NewOllama(ollamaConfig(path))
	res := c.Clean(context.Background(), "[00:00:01] SPEAKER_00: Fin.")
	require.Equal(t, types.CleanupSuccess, res.Outcome)

	prompt, err := os.ReadFile(capture)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "Return only the cleaned transcript")
	assert.Contains(t, string(prompt), "[00:00:01] SPEAKER_00: Fin.")
}
