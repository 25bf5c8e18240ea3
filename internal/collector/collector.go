// Package collector enumerates input files under a directory tree.
package collector

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"sparkify/internal/etlerr"
)

// DefaultPattern matches the line-delimited JSON dumps.
const DefaultPattern = "*.json"

// Files walks root recursively and returns the absolute path of every regular
// file whose base name matches pattern (filepath.Match syntax) at any depth.
// Hidden files (base name starting with '.') never match, so macOS "._x.json"
// resource forks left by archive tools are ignored.
//
// Callers must not rely on ordering; paths are returned sorted only so that a
// run over the same tree reads records in the same order.
//
// Errors:
//   - An invalid pattern returns a config error.
//   - Any unreadable directory aborts the walk with an I/O error.
func Files(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, etlerr.Config("file pattern", fmt.Errorf("%q: %w", pattern, err))
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, etlerr.IO("resolve root", root, err)
	}

	var out []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return etlerr.IO("walk", path, walkErr)
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if ok {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}
