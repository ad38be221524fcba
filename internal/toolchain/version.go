package toolchain

import (
	"context"
	"os/exec"
	"strings"
)

// DetectVersion returns the first line of `executable --version` output, or
// "" when the tool is unavailable or refuses the flag. Best-effort: build
// reports record it, nothing depends on it.
func DetectVersion(ctx context.Context, executable string) string {
	path, err := exec.LookPath(executable)
	if err != nil {
		return ""
	}

	// #nosec G204 -- path comes from exec.LookPath, not user input
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return firstLine(string(output))
}

func firstLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(line)
}
