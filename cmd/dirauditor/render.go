package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	dirauditor "github.com/mattkeenan/dirauditor/pkg"
)

// printer renders results as coloured text or JSON
type printer struct {
	w      io.Writer
	json   bool
	styles styles
}

type styles struct {
	modified lipgloss.Style
	deleted  lipgloss.Style
	renamed  lipgloss.Style
	added    lipgloss.Style
	clean    lipgloss.Style
	baseline lipgloss.Style
	header   lipgloss.Style
	dim      lipgloss.Style
}

func newPrinter(w io.Writer, format, colorMode string) *printer {
	renderer := lipgloss.NewRenderer(w)
	switch strings.ToLower(colorMode) {
	case "never":
		renderer.SetColorProfile(termenv.Ascii)
	case "always":
		renderer.SetColorProfile(termenv.ANSI)
	}

	return &printer{
		w:    w,
		json: strings.EqualFold(format, "json"),
		styles: styles{
			modified: renderer.NewStyle().Foreground(lipgloss.Color("3")),
			deleted:  renderer.NewStyle().Foreground(lipgloss.Color("1")),
			renamed:  renderer.NewStyle().Foreground(lipgloss.Color("5")),
			added:    renderer.NewStyle().Foreground(lipgloss.Color("4")),
			clean:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
			baseline: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
			header:   renderer.NewStyle().Bold(true),
			dim:      renderer.NewStyle().Faint(true),
		},
	}
}

func (p *printer) line(style lipgloss.Style, format string, args ...interface{}) {
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) encode(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Audit prints the outcome of one audit run
func (p *printer) Audit(result *dirauditor.AuditResult) error {
	if p.json {
		return p.encode(result)
	}

	if result.Outcome == dirauditor.OutcomeBaseline {
		if result.Rebaselined {
			p.line(p.styles.baseline, "Corrupt snapshot replaced, new baseline of %d files created for %s", result.FileCount, result.Root)
		} else {
			p.line(p.styles.baseline, "Baseline created: %d files recorded for %s", result.FileCount, result.Root)
		}
		return nil
	}

	report := result.Report
	if !report.HasChanges() {
		p.line(p.styles.clean, "No changes since the last run (%d files)", result.FileCount)
		return nil
	}

	for _, path := range report.Modified {
		p.line(p.styles.modified, "Modified: '%s'", path)
	}
	for _, path := range report.Deleted {
		p.line(p.styles.deleted, "Deleted: '%s'", path)
	}
	for _, rename := range report.Renamed {
		p.line(p.styles.renamed, "Renamed: '%s' -> '%s'", rename.OldPath, rename.NewPath)
	}
	for _, path := range report.Added {
		p.line(p.styles.added, "Added: '%s'", path)
	}
	p.line(p.styles.dim, "%d changes, %d files now recorded", report.TotalChanges(), result.FileCount)
	return nil
}

// Snapshot prints the stored fingerprints, in path order for humans
func (p *printer) Snapshot(snapshot *dirauditor.Snapshot) error {
	if p.json {
		return p.encode(snapshot)
	}

	p.line(p.styles.header, "%d files recorded", snapshot.Len())
	for _, entry := range snapshot.SortedEntries() {
		fmt.Fprintf(p.w, "%08x  %-12x  %s\n", entry.Checksum, entry.Signature, entry.RelativePath)
	}
	return nil
}

// Duplicates prints groups of files sharing a content fingerprint
func (p *printer) Duplicates(groups []dirauditor.DuplicateGroup) error {
	if p.json {
		return p.encode(groups)
	}

	if len(groups) == 0 {
		p.line(p.styles.clean, "No duplicate content found")
		return nil
	}

	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.line(p.styles.header, "%08x:%x (%d files)", group.Checksum, group.Signature, group.Count)
		for _, file := range group.Files {
			fmt.Fprintf(p.w, "  %s\n", file)
		}
	}
	return nil
}
