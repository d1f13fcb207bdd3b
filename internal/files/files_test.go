package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exts = []string{"txt", "md"}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"test.txt", true},
		{"test.md", true},
		{"test.TXT", true},
		{"test.MD", true},
		{"test.rs", false},
		{"test", false},
		{".txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.name, exts))
		})
	}
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "\xef\xbb\xbf  first  \r\n\r\n\tsecond\n   \nthird")

	lines, err := ReadLines(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.txt", "z\n")
	writeFile(t, dir, "Alpha.MD", "# title\nbody\n")
	writeFile(t, dir, "beta.txt", "b")
	writeFile(t, dir, "empty.txt", "\n  \n")
	writeFile(t, dir, "notes.rs", "fn main() {}")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.txt"), 0755))

	found, err := Discover(dir, exts, zerolog.Nop())
	require.NoError(t, err)

	var names []string
	for _, f := range found {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Alpha.MD", "beta.txt", "zeta.txt"}, names)
	assert.Equal(t, 2, found[0].LineCount())
	assert.Equal(t, filepath.Join(dir, "Alpha.MD"), found[0].Path)
}

func TestDiscoverNothingFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.md", "")

	_, err := Discover(dir, exts, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoFiles)
	assert.Contains(t, err.Error(), dir)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), exts, zerolog.Nop())
	assert.Error(t, err)
}

func TestResolveDir(t *testing.T) {
	got, err := ResolveDir("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got)

	got, err = ResolveDir("")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestWatcherRefreshesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one")

	changes := make(chan []TextFile, 8)
	w := NewWatcher(dir, exts, zerolog.Nop(), func(found []TextFile, err error) {
		if err == nil {
			changes <- found
		}
	})
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// fsnotify needs the watch registered before the write lands
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "b.txt", "two")
	writeFile(t, dir, "ignored.log", "three")

	select {
	case found := <-changes:
		assert.Len(t, found, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh after file change")
	}

	cancel()
	assert.NoError(t, <-done)
}
