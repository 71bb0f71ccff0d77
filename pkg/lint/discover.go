package lint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// Sentinel errors for file discovery.
var (
	ErrNoPaths = errors.New("no paths to check")
)

// languagePython is the enry language name for Python sources.
const languagePython = "Python"

// sniffLen is how much of an extensionless file is read to detect its language.
const sniffLen = 512

var pythonExtensions = []string{".py", ".pyi"} //nolint:gochecknoglobals // constant set

// Discover expands paths into the Python files to check, sorted and deduplicated.
// Explicitly named files are always kept unless excluded; directories are walked
// recursively, skipping excluded and vendored directories.
func (l *Linter) Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	var files []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if !l.excluded(root) {
				files = append(files, filepath.Clean(root))
			}

			continue
		}

		found, err := l.walk(root)
		if err != nil {
			return nil, err
		}

		files = append(files, found...)
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

func (l *Linter) walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			if path != root && (l.excluded(path) || isVendored(root, path)) {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() || l.excluded(path) {
			return nil
		}

		if isPython(path) {
			files = append(files, filepath.Clean(path))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

// excluded reports whether path or its base name matches an exclude pattern.
func (l *Linter) excluded(path string) bool {
	base := filepath.Base(path)
	slashed := filepath.ToSlash(filepath.Clean(path))

	for _, pattern := range l.opts.Exclude {
		if matchGlob(pattern, base) || matchGlob(pattern, slashed) {
			return true
		}
	}

	return false
}

func matchGlob(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)

	return err == nil && ok
}

func isVendored(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}

	return enry.IsVendor(filepath.ToSlash(rel) + "/")
}

// isPython detects Python sources by extension, falling back to enry on the
// file name and leading bytes (shebang) for extensionless scripts.
func isPython(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(pythonExtensions, ext) {
		return true
	}

	if ext != "" {
		return enry.GetLanguage(filepath.Base(path), nil) == languagePython
	}

	head, err := readHead(path)
	if err != nil || len(head) == 0 {
		return false
	}

	return enry.GetLanguage(filepath.Base(path), head) == languagePython
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffLen)

	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return buf[:n], nil
}
