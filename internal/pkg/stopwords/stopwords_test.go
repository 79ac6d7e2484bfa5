package stopwords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded_English(t *testing.T) {
	words, err := Embedded().Words("english")
	require.NoError(t, err)

	assert.Len(t, words, 179)
	assert.Contains(t, words, "the")
	assert.Contains(t, words, "no")
	assert.Contains(t, words, "not")
	assert.Contains(t, words, "won't")
}

func TestEmbedded_LanguageIsCaseInsensitive(t *testing.T) {
	words, err := Embedded().Words(" English ")
	require.NoError(t, err)
	assert.NotEmpty(t, words)
}

func TestEmbedded_UnknownLanguage(t *testing.T) {
	_, err := Embedded().Words("klingon")
	assert.Error(t, err)
}

func TestEmbedded_Languages(t *testing.T) {
	assert.Equal(t, []string{"english"}, Embedded().Languages())
}

func TestFileCorpus_Words(t *testing.T) {
	dir := t.TempDir()
	content := "The\n\n  and \nno\nnot\nthe\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "english"), []byte(content), 0644))

	words, err := NewFileCorpus(dir).Words("english")
	require.NoError(t, err)

	assert.Equal(t, []string{"the", "and", "no", "not"}, words)
}

func TestFileCorpus_MissingFile(t *testing.T) {
	_, err := NewFileCorpus(t.TempDir()).Words("english")
	assert.Error(t, err)
}
