package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/frederic-klein/mrm/internal/modlist"
	"github.com/frederic-klein/mrm/internal/selection"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Italic(true)
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func printList(w io.Writer, l modlist.ModList) {
	fmt.Fprintf(w, "%s %s\n", nameStyle.Render(l.Name), dimStyle.Render(fmt.Sprintf("(%s, %d mods)", l.ID, l.ModCount())))
}

func printMod(w io.Writer, m modlist.RemoteMod) {
	title := m.Title
	if title == "" {
		title = m.ID
	}
	fmt.Fprintf(w, "  %s %s %s\n", title, dimStyle.Render("["+m.ID+"]"), dimStyle.Render(formatDownloads(m.Downloads)))
	if m.Description != "" {
		fmt.Fprintf(w, "    %s\n", truncate(m.Description, 72))
	}
}

func printCandidate(w io.Writer, c selection.Candidate) {
	marker := "[ ]"
	switch {
	case c.Selected:
		marker = "[x]"
	case !c.Selectable:
		marker = "[-]"
	}
	line := fmt.Sprintf("%s %s [%s]", marker, c.Title, c.ID)
	if !c.Selectable && !c.Selected {
		line = disabledStyle.Render(line)
	}
	fmt.Fprintf(w, "  %s\n", line)
}

func formatDownloads(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM downloads", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk downloads", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d downloads", n)
	}
}

func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
