// Package tui renders CLI output: tables, fetch progress, diagnostics and
// export summaries.
// Simple, streaming, no full-screen TUI.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"

	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/export"
	"github.com/openearth/openclimate/pkg/table"
)

// Colors
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warn    = lipgloss.Color("#E5A50A")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warn)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(white).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// PrintHeader prints the program banner.
func PrintHeader(w io.Writer, version, server string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("  OPENCLIMATE")+mutedStyle.Render(" "+version))
	fmt.Fprintln(w, mutedStyle.Render("  "+server))
	fmt.Fprintln(w)
}

// RenderTable draws t with a rounded border. At most maxRows rows are
// drawn; maxRows <= 0 draws everything.
func RenderTable(t *table.Table, maxRows int) string {
	cols := t.Columns()
	rows := t.Rows()
	truncated := 0
	if maxRows > 0 && len(rows) > maxRows {
		truncated = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	body := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = table.FormatValue(r[c])
		}
		body[i] = cells
	}

	lt := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(cols...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	out := lt.Render()
	if truncated > 0 {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("  … %s more rows", formatNumber(int64(truncated))))
	}
	return out
}

// PrintTable writes RenderTable(t, maxRows) followed by a row count.
func PrintTable(w io.Writer, t *table.Table, maxRows int) {
	fmt.Fprintln(w, RenderTable(t, maxRows))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Rows:"), titleStyle.Render(formatNumber(int64(t.Len()))))
}

// PrintDiagnostics lists non-fatal diagnostics collected during a call.
func PrintDiagnostics(w io.Writer, ds []diag.Diagnostic) {
	if len(ds) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  ! %d WARNING(S)", len(ds))))
	for _, d := range ds {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(string(d.Kind.Code())), d.Message)
	}
}

// PrintError prints a fatal error.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, accentStyle.Render("  ✗ "+err.Error()))
}

// PrintExportResult summarizes an export run.
func PrintExportResult(w io.Writer, res *export.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, successStyle.Render("  ✓ EXPORT COMPLETE"))
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Rows:"), titleStyle.Render(formatNumber(int64(res.Rows))))
	if res.Bytes > 0 {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Size:"), formatBytes(int64(res.Bytes)))
	}
	for _, loc := range res.Locations {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("→"), loc)
	}
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(res.Duration)))
}

// Progress drives a progress bar from the fetcher's completion callback.
// The bar is created on the first callback, once the total is known.
type Progress struct {
	mu          sync.Mutex
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer, description string) *Progress {
	return &Progress{w: w, description: description}
}

// Update matches the fetcher's OnProgress signature.
func (p *Progress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil || p.bar.GetMax() != total {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "",
				BarEnd:        "",
			}),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

// Done returns how many requests the bar has recorded.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return 0
	}
	return int(p.bar.State().CurrentNum)
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// PlainList renders values one per line, for piping.
func PlainList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, "\n") + "\n"
}
