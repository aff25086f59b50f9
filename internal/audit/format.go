package audit

import (
	"encoding/json"
	"fmt"
	"strings"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatText renders a Report as a human-readable table.
func FormatText(r *Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Audit: %s | service %s\n", r.Root, r.Service))
	b.WriteString(separator + "\n")

	if len(r.Children) == 0 {
		b.WriteString("No active projects found.\n")
	}
	for _, c := range r.Children {
		status := ""
		switch {
		case c.Failure != nil:
			status = string(c.Failure.Kind)
		case c.Record != nil:
			status = c.Record.Status
		}
		b.WriteString(fmt.Sprintf("%-40s %-15s %s\n", truncate(c.Scope, 40), c.State, status))
	}

	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(r))
	return b.String()
}

// FormatJSON renders a Report as indented JSON.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal audit report: %w", err)
	}
	return string(data), nil
}

func formatSummary(r *Report) string {
	parts := []string{fmt.Sprintf("%d checked", r.Summary.Total)}
	if r.Summary.Flagged > 0 {
		parts = append(parts, fmt.Sprintf("%d disabled", r.Summary.Flagged))
	}
	if r.Summary.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Summary.Failed))
	}

	var flags []string
	if r.Truncated {
		flags = append(flags, "truncated")
	}
	if r.DeadlineExceeded {
		flags = append(flags, "deadline exceeded")
	}
	if len(r.Unreachable) > 0 {
		flags = append(flags, fmt.Sprintf("%d unreachable folders", len(r.Unreachable)))
	}

	line := "Summary: " + strings.Join(parts, ", ")
	if len(flags) > 0 {
		line += " | " + strings.Join(flags, ", ")
	}
	return line + "\n"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
