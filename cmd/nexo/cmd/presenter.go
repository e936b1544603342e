package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nexocrm/nexo-go/notify"
)

// severityIcons prefix the toast title.
var severityIcons = map[notify.Severity]string{
	notify.SeverityInfo:    "ℹ",
	notify.SeveritySuccess: "✔",
	notify.SeverityWarning: "!",
	notify.SeverityError:   "✖",
}

// termPresenter renders a boxed toast on the terminal. Width accounting
// uses rune display width so Spanish text and icons line up.
type termPresenter struct {
	out io.Writer
}

var _ notify.Presenter = (*termPresenter)(nil)

func (p *termPresenter) Present(title, message string, severity notify.Severity, duration time.Duration) error {
	icon, ok := severityIcons[severity]
	if !ok {
		icon = severityIcons[notify.SeverityInfo]
	}
	header := icon + " " + title

	width := runewidth.StringWidth(header)
	if w := runewidth.StringWidth(message); w > width {
		width = w
	}

	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", width+2) + "┐\n")
	b.WriteString("│ " + pad(header, width) + " │\n")
	if message != "" {
		b.WriteString("│ " + pad(message, width) + " │\n")
	}
	b.WriteString("└" + strings.Repeat("─", width+2) + "┘\n")

	_, err := io.WriteString(p.out, b.String())
	return err
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printEventRow(out io.Writer, id, title, when, state string) {
	fmt.Fprintf(out, "%-24s %-40s %-17s %s\n", id, runewidth.Truncate(title, 40, "…"), when, state)
}
