package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopySourcesFiltersByExtension(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	files := map[string]bool{
		"intro.tex":  true,
		"refs.bib":   true,
		"thesis.sty": true,
		"notes.txt":  false,
		"figure.eps": false,
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(name), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(src, "chapters.tex"), 0755), "directory with a tex suffix must be ignored")

	require.NoError(t, copySources(src, dst))

	for name, wantCopied := range files {
		_, err := os.Stat(filepath.Join(dst, name))
		if wantCopied {
			assert.NoError(t, err, name)
		} else {
			assert.True(t, os.IsNotExist(err), name)
		}
	}
	_, err := os.Stat(filepath.Join(dst, "chapters.tex"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopySourcesPreservesContent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	content := []byte("\\chapter{Introduction}\n\\label{ch:intro}\n")
	require.NoError(t, os.WriteFile(filepath.Join(src, "intro.tex"), content, 0644))

	require.NoError(t, copySources(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "intro.tex"))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCopySourcesMissingSourceDir(t *testing.T) {
	err := copySources(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read source dir")
}
