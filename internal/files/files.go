// Package files discovers the text files whose lines are sent as messages.
package files

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoFiles is returned when a directory holds no supported file with content.
var ErrNoFiles = errors.New("no text files with content found")

// TextFile is a discovered file and its non-empty, trimmed lines.
type TextFile struct {
	Name  string
	Path  string
	Lines []string
}

// LineCount returns the number of sendable lines.
func (f TextFile) LineCount() int {
	return len(f.Lines)
}

// ReadLines returns the trimmed, non-empty lines of the file at path.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// Load reads one file. ok is false when it has no sendable lines.
func Load(path string) (TextFile, bool, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return TextFile{}, false, err
	}
	if len(lines) == 0 {
		return TextFile{}, false, nil
	}
	return TextFile{Name: filepath.Base(path), Path: path, Lines: lines}, true, nil
}

// Supported reports whether name has one of exts (lower case, no dot).
func Supported(name string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(exts, ext)
}

// Discover loads every supported file in dir, sorted case-insensitively by
// name. Unreadable and empty files are skipped with a warning.
func Discover(dir string, exts []string, log zerolog.Logger) ([]TextFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var found []TextFile
	for _, e := range entries {
		if !e.Type().IsRegular() || !Supported(e.Name(), exts) {
			continue
		}
		f, ok, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("Files: could not read file")
			continue
		}
		if !ok {
			log.Debug().Str("file", e.Name()).Msg("Files: skipping file without content")
			continue
		}
		found = append(found, f)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s (extensions: %s)", ErrNoFiles, dir, strings.Join(exts, ", "))
	}

	slices.SortFunc(found, func(a, b TextFile) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return found, nil
}

// DefaultDir returns the directory of the running executable.
func DefaultDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolveDir returns dir, or the executable's directory when dir is empty.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return DefaultDir()
}
