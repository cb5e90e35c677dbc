package executors

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/achu/pkg/nacha"
)

var (
	creditStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	debitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Plan prints a human readable preview of the file: one line per entry,
// grouped by batch, followed by the file totals. Nothing is written.
func (e *Executor) Plan(f *nacha.File, w io.Writer) *Report {
	report := BuildReport(f)
	e.logger.Debug("planning file", "batches", len(report.Batches), "entries", report.Entries, "lines", report.Lines)

	items := report.Items
	for _, b := range report.Batches {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Batch %07d %s %s (%d entries)", b.Number, b.Company, b.Description, b.Entries)))
		for _, it := range items[:b.Entries] {
			fmt.Fprintln(w, styleFor(it.Class()).Render(
				fmt.Sprintf("%s %s | %-22s | %-12s | %12s", prefix(it.Class()), it.Trace(), it.Name(), it.Kind(), formatCents(it.Cents()))))
		}
		items = items[b.Entries:]
		fmt.Fprintf(w, "  debits %s  credits %s  hash %d\n", formatCents(b.Debits), formatCents(b.Credits), b.Hash)
	}

	fmt.Fprintf(w, "\nFile: %d batch(es), %d entries, %d lines in %d block(s)\n", len(report.Batches), report.Entries, report.Lines, report.Blocks)
	fmt.Fprintf(w, "Total debits %s, total credits %s\n", formatCents(report.Debits), formatCents(report.Credits))
	return report
}

func styleFor(class nacha.EntryClass) lipgloss.Style {
	switch class {
	case nacha.CreditEntry:
		return creditStyle
	case nacha.DebitEntry:
		return debitStyle
	}
	return neutralStyle
}

func prefix(class nacha.EntryClass) string {
	switch class {
	case nacha.CreditEntry:
		return "+"
	case nacha.DebitEntry:
		return "-"
	}
	return "="
}

func formatCents(c int64) string {
	return fmt.Sprintf("$ %d.%02d", c/100, c%100)
}
