package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/novella"
)

func writeStory(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "v1", "en-US")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		"_manifest.yaml": "story_files:\n  - story.yaml\n",
		"story.yaml": `
- id: start
  character: Guide
  text: Welcome, Hero!
  choices:
    - text: Go on
      next_node: end
- id: end
  text: The end, Hero.
`,
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}
	return root
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "novella version "+novella.Version+"\n", out)
}

func TestValidate(t *testing.T) {
	t.Run("Valid Story", func(t *testing.T) {
		out, err := execute(t, "", "validate", writeStory(t))
		require.NoError(t, err)
		assert.Contains(t, out, "Story is valid!")
		assert.Contains(t, out, "en-US")
	})

	t.Run("Missing Content", func(t *testing.T) {
		_, err := execute(t, "", "validate", filepath.Join(t.TempDir(), "nowhere"))
		assert.Error(t, err)
	})
}

func TestConfigOverrides(t *testing.T) {
	t.Setenv("NOVELLA_LOG_LEVEL", "loud")
	_, err := execute(t, "", "validate", writeStory(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestPlayAndSessions(t *testing.T) {
	t.Setenv("NOVELLA_SESSION_DIR", t.TempDir())
	root := writeStory(t)
	id := uuid.NewString()

	out, err := execute(t, "1\n", "play", root, "--session", id, "--name", "Ann", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Guide: Welcome, Ann!")
	assert.Contains(t, out, "The end, Ann.")
	assert.Contains(t, out, "-- The End --")
	assert.Contains(t, out, id)

	out, err = execute(t, "", "session", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, "", "session", "inspect", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"end"`)

	out, err = execute(t, "", "graph", root, "--session", id, "--locale", "")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "current")

	_, err = execute(t, "", "session", "rm", id)
	require.NoError(t, err)
	out, err = execute(t, "", "session", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestPlay_Resume(t *testing.T) {
	t.Setenv("NOVELLA_SESSION_DIR", t.TempDir())
	root := writeStory(t)
	id := uuid.NewString()

	_, err := execute(t, "quit\n", "play", root, "--session", id, "--name", "Bo", "--plain")
	require.NoError(t, err)

	out, err := execute(t, "1\n", "play", root, "--session", id, "--name", "Ignored", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Bo!", "resumed session keeps its player name")
	assert.Contains(t, out, "The end, Bo.")
}

func TestGraph_Locale(t *testing.T) {
	root := writeStory(t)

	out, err := execute(t, "", "graph", root, "--session", "", "--locale", "en-US")
	require.NoError(t, err)
	assert.Contains(t, out, "start")

	_, err = execute(t, "", "graph", root, "--session", "", "--locale", "xx-XX")
	assert.Error(t, err)
}
