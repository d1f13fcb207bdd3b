// Package browser holds the file list, search filter and selection state.
package browser

import (
	"strings"

	"chattyper/internal/files"
)

// App is the browser state. The zero value is an empty list.
type App struct {
	files    []files.TextFile
	filtered []int // indices into files matching query
	selected int   // index into filtered
	query    string
	err      string
}

// New creates the state over found files.
func New(found []files.TextFile) *App {
	a := &App{}
	a.SetFiles(found)
	return a
}

// SetFiles replaces the file list, clearing the search and selection.
// It returns how many files were added plus removed, by name.
func (a *App) SetFiles(found []files.TextFile) int {
	before := make(map[string]bool, len(a.files))
	for _, f := range a.files {
		before[f.Name] = true
	}
	changed := 0
	for _, f := range found {
		if !before[f.Name] {
			changed++
		}
		delete(before, f.Name)
	}
	changed += len(before)

	a.files = found
	a.query = ""
	a.selected = 0
	a.updateFilter()
	return changed
}

func (a *App) updateFilter() {
	q := strings.ToLower(a.query)
	a.filtered = a.filtered[:0]
	for i, f := range a.files {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			a.filtered = append(a.filtered, i)
		}
	}
	if a.selected >= len(a.filtered) {
		a.selected = 0
	}
}

// MoveUp selects the previous file, wrapping to the bottom.
func (a *App) MoveUp() {
	if len(a.filtered) == 0 {
		return
	}
	if a.selected > 0 {
		a.selected--
	} else {
		a.selected = len(a.filtered) - 1
	}
}

// MoveDown selects the next file, wrapping to the top.
func (a *App) MoveDown() {
	if len(a.filtered) == 0 {
		return
	}
	if a.selected < len(a.filtered)-1 {
		a.selected++
	} else {
		a.selected = 0
	}
}

// Selected returns the selected file.
func (a *App) Selected() (files.TextFile, bool) {
	if a.selected < len(a.filtered) {
		return a.files[a.filtered[a.selected]], true
	}
	return files.TextFile{}, false
}

// SelectedIndex is the position of the selection within Filtered.
func (a *App) SelectedIndex() int { return a.selected }

// Filtered returns the files matching the search query.
func (a *App) Filtered() []files.TextFile {
	out := make([]files.TextFile, len(a.filtered))
	for i, idx := range a.filtered {
		out[i] = a.files[idx]
	}
	return out
}

func (a *App) FilteredCount() int { return len(a.filtered) }
func (a *App) TotalCount() int    { return len(a.files) }

// Query returns the search query.
func (a *App) Query() string { return a.query }

// SetQuery replaces the search query.
func (a *App) SetQuery(q string) {
	a.query = q
	a.updateFilter()
}

// AddSearchChar appends r to the query.
func (a *App) AddSearchChar(r rune) {
	a.SetQuery(a.query + string(r))
}

// RemoveSearchChar drops the last rune of the query.
func (a *App) RemoveSearchChar() {
	if a.query == "" {
		return
	}
	r := []rune(a.query)
	a.SetQuery(string(r[:len(r)-1]))
}

// SetError shows msg until cleared.
func (a *App) SetError(msg string) { a.err = msg }
func (a *App) ClearError()         { a.err = "" }
func (a *App) Error() string       { return a.err }
