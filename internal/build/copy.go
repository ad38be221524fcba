package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copySources copies the flat set of document inputs from src into dst.
// Only top-level .tex, .bib and .sty files participate; builds never
// recurse into subdirectories.
func copySources(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read source dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".tex", ".bib", ".sty":
		default:
			continue
		}
		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// copyFile copies a single file, content only.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src) // #nosec G304 -- paths derive from the configured source dir
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.Create(dst) // #nosec G304 -- paths derive from the configured build dir
	if err != nil {
		return err
	}
	defer func() { _ = dstFile.Close() }()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
