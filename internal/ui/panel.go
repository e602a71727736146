package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Makepad-fr/checklist/internal/model"
)

const maxText = 80

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func visibleWidth(s string) int { return utf8.RuneCountInString(ansiRegexp.ReplaceAllString(s, "")) }

// ProgressBar renders a bar with a percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// Panel draws lines inside a frame using the current theme.
func Panel(w io.Writer, lines []string) {
	t := current
	maxw := 0
	for _, ln := range lines {
		if n := visibleWidth(ln); n > maxw {
			maxw = n
		}
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+ln+strings.Repeat(" ", maxw-visibleWidth(ln))+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// Header is the title line with done/pending/total counts.
func Header(todos []model.Todo) string {
	d, p := model.Stats(todos)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(current.Title, "Todos"),
		C(current.Success, current.SymDone), d,
		C(current.Pending, current.SymPending), p,
		C(current.Accent, "Total"), len(todos),
	)
}

// TodoLines renders todos with their 1-based index, flat or grouped by
// pending/done. Indexes always refer to the service's order.
func TodoLines(todos []model.Todo, group bool) []string {
	if !group {
		return indexed(todos, func(model.Todo) bool { return true })
	}
	pending := func(t model.Todo) bool { return !t.Done }
	done := func(t model.Todo) bool { return t.Done }

	var lines []string
	lines = append(lines, C(current.Accent, "Pending"))
	lines = append(lines, indexed(todos, pending)...)
	lines = append(lines, "")
	lines = append(lines, C(current.Accent, "Done"))
	lines = append(lines, indexed(todos, done)...)
	return lines
}

func indexed(todos []model.Todo, keep func(model.Todo) bool) []string {
	var out []string
	for i, t := range todos {
		if !keep(t) {
			continue
		}
		box, color := current.BoxUnchecked, current.Muted
		if t.Done {
			box, color = current.BoxChecked, current.Success
		}
		text := t.Text
		if utf8.RuneCountInString(text) > maxText {
			text = string([]rune(text)[:maxText-3]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", C(current.Muted, fmt.Sprintf("%2d.", i+1)), C(color, box), text))
	}
	if len(out) == 0 {
		return []string{C(current.Muted, "(none)")}
	}
	return out
}
