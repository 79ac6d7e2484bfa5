package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CLEAN_CACHE_ENABLED", "false")
	t.Setenv("ENV", "test")
	t.Setenv("STORAGE_BASE_PATH", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCleanCmd(t *testing.T) {
	t.Run("Should clean arguments", func(t *testing.T) {
		out, err := runCLI(t, "", "clean", "The cat is not here", "Café résumé")
		require.NoError(t, err)
		assert.Equal(t, "cat not\ncafe resume\n", out)
	})

	t.Run("Should clean stdin line by line", func(t *testing.T) {
		out, err := runCLI(t, "No way\nThe\n", "clean")
		require.NoError(t, err)
		assert.Equal(t, "no way\n\n", out)
	})

	t.Run("Should run a single stage", func(t *testing.T) {
		out, err := runCLI(t, "", "clean", "--stage", "normalize", "won't")
		require.NoError(t, err)
		assert.Equal(t, "will not\n", out)
	})

	t.Run("Should reject an unknown stage", func(t *testing.T) {
		_, err := runCLI(t, "", "clean", "--stage", "tokenize", "x")
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown refinery", func(t *testing.T) {
		_, err := runCLI(t, "", "clean", "--refinery", "spanish", "x")
		assert.Error(t, err)
	})
}

func TestRefineriesCmd(t *testing.T) {
	out, err := runCLI(t, "", "refineries")
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "v1")
	assert.Contains(t, out, "english,inshorts,summarization,v1-english")
}

func TestPrepareCmd(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "news.csv")
	require.NoError(t, os.WriteFile(source, []byte("short,long\nThe cat is not here,No way\nNo way,Café résumé\n"), 0644))

	out, err := runCLI(t, "", "prepare", "--file", source, "--splits", "train:0:2", "--no-shards")
	require.NoError(t, err)
	assert.Contains(t, out, `"rows": 2`)
	assert.Contains(t, out, `"artifact": "train.csv"`)
}

func TestPrepareCmd_CrossRunNeedsPersist(t *testing.T) {
	_, err := runCLI(t, "", "prepare", "--file", "x.csv", "--cross-run")
	assert.Error(t, err)
}
