// Package integration exercises the document pipeline end to end: real
// configuration files from testdata, the real stage pipeline, and real
// subprocess invocations against stub TeX tools installed on PATH.
package integration

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuilder/internal/config"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files instead of comparing against them")

// loadTestConfig loads and validates a configuration fixture from
// test/testdata/configs. Environment references in the fixture are
// expanded at load time, so callers set any TEXBUILDER_TEST_* variables
// before calling.
func loadTestConfig(t *testing.T, name string) *config.Config {
	t.Helper()

	cfg, err := config.Load(filepath.Join("..", "testdata", "configs", name))
	require.NoError(t, err, "loading config fixture %s", name)
	require.NoError(t, config.ValidateConfig(cfg))
	return cfg
}

// installStubLatex writes an executable shell script named name into a
// fresh directory prepended to PATH. The stub mimics one latex pass over
// base: it answers --version without side effects, appends its arguments
// to an invocation log, warns about the missing aux file while base.aux
// is absent, then drops the aux file and the artifact into the working
// directory. The returned func counts pass invocations so far.
func installStubLatex(t *testing.T, name, base string) func() int {
	t.Helper()

	binDir := t.TempDir()
	logPath := filepath.Join(binDir, "invocations.log")
	t.Setenv("TEXBUILDER_STUB_LOG", logPath)

	script := `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "stub latex 1.0"
  exit 0
fi
echo "$@" >> "$TEXBUILDER_STUB_LOG"
if [ ! -f ` + base + `.aux ]; then
  echo "No file ` + base + `.aux."
  : > ` + base + `.aux
fi
: > ` + base + `.dvi
`
	require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o700))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return func() int {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return 0
		}
		trimmed := strings.TrimSpace(string(data))
		if trimmed == "" {
			return 0
		}
		return len(strings.Split(trimmed, "\n"))
	}
}

// writeSource drops a content fragment into dir.
func writeSource(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

// initGitRepo turns dir into a git working copy with a single commit
// covering everything already in it, and returns the commit hash.
func initGitRepo(t *testing.T, dir string) string {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddGlob("."))
	hash, err := wt.Commit("initial sources", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash.String()
}

// requireGolden compares got against the named file under
// test/testdata/golden, rewriting it when -update-golden is set.
func requireGolden(t *testing.T, name, got string) {
	t.Helper()

	path := filepath.Join("..", "testdata", "golden", name)
	if *updateGolden {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
		return
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "golden file %s missing; run with -update-golden to create it", name)
	require.Equal(t, string(want), got, "output differs from golden file %s", name)
}
