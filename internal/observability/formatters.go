// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/index"
	"github.com/jonathan/employee-cv/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintMergeSummary outputs counts of unified records and their data-quality flags.
func (p *Printer) PrintMergeSummary(records []types.UnifiedRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Unified records: %d\n", len(records)))

	flagged := 0
	counts := map[string]int{}
	var order []string
	for _, rec := range records {
		if len(rec.Issues) > 0 {
			flagged++
		}
		for _, issue := range rec.Issues {
			if counts[issue] == 0 {
				order = append(order, issue)
			}
			counts[issue]++
		}
	}
	sb.WriteString(fmt.Sprintf("Flagged:         %d\n", flagged))

	if len(order) > 0 {
		sb.WriteString("\nIssues:\n")
		for _, issue := range order {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", issue, counts[issue]))
		}
	}

	p.printBox("MERGED RECORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecord outputs a human-readable summary of one unified record.
func (p *Printer) PrintRecord(rec *types.UnifiedRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", rec.EmployeeID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", rec.FullName))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", rec.CurrentRole))
	if rec.Contact.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", rec.Contact.Email))
	}
	sb.WriteString("\n")

	if len(rec.WorkExperience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(rec.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			w := rec.WorkExperience[i]
			label := w.Role()
			switch {
			case w.Employment != nil:
				label += " @ " + w.Employment.Organization
			case w.Project != nil:
				label += " on " + w.Project.ProjectName
			}
			if start := w.StartDate(); start != "" {
				label += " (" + start + ")"
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", label))
		}
		if len(rec.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(rec.WorkExperience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(rec.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", strings.Join(rec.Skills, ", ")))
	}
	for _, issue := range rec.Issues {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", issue))
	}

	p.printBox("EMPLOYEE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs search hits with their similarity.
func (p *Printer) PrintMatches(query string, matches []index.Match) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query: %s\n\n", query))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s  %s\n", i+1, m.Record.EmployeeID, m.Record.FullName))
		sb.WriteString(fmt.Sprintf("    Similarity: %.1f%%\n", m.Similarity))
		if m.Record.CurrentRole != "" {
			sb.WriteString(fmt.Sprintf("    Role: %s\n", m.Record.CurrentRole))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches", len(matches)-maxItemsToShow))
	}

	p.printBox("TOP MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs the state of a CV pipeline.
func (p *Printer) PrintDraft(draft *cv.Draft) {
	if draft == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Employee: %s\n", draft.EmployeeID))
	sb.WriteString(fmt.Sprintf("State:    %s\n", draft.State))

	if c := draft.CV; c != nil {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", c.PersonalInfo.FullName))
		if c.Brief != "" {
			sb.WriteString(fmt.Sprintf("Brief:    %s\n", c.Brief))
		}
		sb.WriteString(fmt.Sprintf("Projects: %d\n", len(c.Projects)))
	}

	if len(draft.Feedback) > 0 {
		sb.WriteString(fmt.Sprintf("\nFeedback (%d):\n", len(draft.Feedback)))
		for _, item := range draft.Feedback {
			sb.WriteString(fmt.Sprintf("  • %s\n", item))
		}
	}

	p.printBox("CV DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIssues outputs the findings of the review step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []types.ReviewIssue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO REVIEW ISSUES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(issues)))

	for i, issue := range issues {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", issue.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(issue.Issue, 45)))
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("REVIEW ISSUES", sb.String())
}
