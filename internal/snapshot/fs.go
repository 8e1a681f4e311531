package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FromDir walks root and loads every regular file into an in-memory
// Snapshot keyed by forward-slash relative path. Hidden entries (dotfiles
// and dot-directories such as .git) are skipped; everything else, including
// blob payloads, is loaded as-is.
func FromDir(root string) (Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("snapshot: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("snapshot: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot: root is not a directory: %s", abs)
	}

	snap := make(Snapshot)
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		// The root itself may be a dot-directory; only entries below it
		// are subject to the hidden-file skip.
		if name := d.Name(); p != abs && name[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		snap[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: walk %s: %w", root, err)
	}
	return snap, nil
}
