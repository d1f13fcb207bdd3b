package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"chattyper/internal/config"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func (m Model) View() string {
	switch m.mode {
	case modeView:
		return m.viewPager()
	case modeSending, modeResult:
		return m.viewProgress()
	default:
		return m.viewBrowse()
	}
}

func (m Model) rule() string {
	return strings.Repeat("═", max(10, min(m.width, 63)))
}

func (m Model) viewBrowse() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.rule()) + "\n")
	b.WriteString(headerStyle.Render(lipgloss.PlaceHorizontal(min(m.width, 63), lipgloss.Center, config.DefaultHeaderName)) + "\n")
	b.WriteString(headerStyle.Render(m.rule()) + "\n")
	b.WriteString(mutedStyle.Render("Target: "+m.cfg.Target.WindowTitle) + "\n\n")

	b.WriteString(m.search.View())
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d files)", m.app.FilteredCount())) + "\n\n")

	filtered := m.app.Filtered()
	rows := m.listRows()
	start := 0
	if sel := m.app.SelectedIndex(); sel >= rows {
		start = sel - rows + 1
	}
	end := min(len(filtered), start+rows)

	if len(filtered) == 0 {
		b.WriteString(mutedStyle.Render("   No files match the search.") + "\n")
	}
	for i := start; i < end; i++ {
		f := filtered[i]
		count := mutedStyle.Render(fmt.Sprintf("  (%d lines)", f.LineCount()))
		if i == m.app.SelectedIndex() {
			b.WriteString(selectedStyle.Render(" ► "+f.Name+" ") + count + "\n")
		} else {
			b.WriteString("   " + f.Name + " " + count + "\n")
		}
	}

	b.WriteString("\n")
	if e := m.app.Error(); e != "" {
		b.WriteString(errStyle.Render(" ⚠ "+e) + "\n")
	} else if m.notice != "" {
		b.WriteString(noticeStyle.Render(" "+m.notice) + "\n")
	}

	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width, 63))) + "\n")
	b.WriteString(okStyle.Render(" [↑↓] Navigate │ [Enter] Send │ [Tab] View │ [F5] Refresh │ [Esc] Quit"))
	return b.String()
}

// listRows is the number of file rows that fit between header and footer.
func (m Model) listRows() int {
	return max(3, m.height-12)
}

func (m Model) viewPager() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.rule()) + "\n")
	b.WriteString(headerStyle.Render("  Viewing: "+m.viewing.Name) + "\n")
	b.WriteString(headerStyle.Render(m.rule()) + "\n")
	b.WriteString(m.pager.View() + "\n")

	total := m.viewing.LineCount()
	first := min(total, m.pager.YOffset+1)
	last := min(total, m.pager.YOffset+m.pager.Height)
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width, 63))) + "\n")
	b.WriteString(okStyle.Render(fmt.Sprintf(" [↑↓] Scroll │ [Esc/Tab] Back │ Lines %d-%d of %d", first, last, total)))
	return b.String()
}

func (m Model) viewProgress() string {
	var b strings.Builder
	fmt.Fprintf(&b, ">>> Selected: %s\n", m.viewing.Name)
	fmt.Fprintf(&b, ">>> Sending %d lines...\n\n", m.viewing.LineCount())
	b.WriteString(mutedStyle.Render("Press [Esc] to cancel at any time.") + "\n\n")

	lines := m.progress
	if keep := max(1, m.height-10); len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	for _, l := range lines {
		b.WriteString(l + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}
	if m.mode == modeResult {
		style := errStyle
		if m.resultOK {
			style = okStyle
		}
		b.WriteString("\n" + style.Render(m.result) + "\n\n")
		b.WriteString(mutedStyle.Render("Returning to file selection..."))
	}
	return b.String()
}

func numberLines(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%4d │ ", i+1)))
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// truncateLine shortens s to limit display cells and appends an ellipsis.
func truncateLine(s string, limit int) string {
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	return runewidth.Truncate(s, limit, "") + "..."
}
