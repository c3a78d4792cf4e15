package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// SummarySubject is the subject line used by channels that support one.
	SummarySubject = "Exposed AWS Access Key Suspended"

	summaryHeader = "Exposed AWS Access Key Detected and Suspended"
	placeholder   = "N/A"
)

// FormatSummary renders the plain-text incident summary sent to responders.
// Missing optional values render as N/A; it never fails.
func FormatSummary(accessKeyID string, suspension SuspensionResult, analysis AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(summaryHeader + "\n\n")
	sb.WriteString(fmt.Sprintf("Access Key ID: %s\n", orPlaceholder(accessKeyID)))
	sb.WriteString(fmt.Sprintf("Suspension Status: %s\n", orPlaceholder(string(suspension.Status))))
	sb.WriteString(fmt.Sprintf("User Associated: %s\n", orPlaceholder(suspension.Username)))
	sb.WriteString(fmt.Sprintf("Timestamp of Suspension: %s\n\n", formatTime(suspension.Timestamp)))

	sb.WriteString("Log Summary:\n")
	sb.WriteString(fmt.Sprintf("Time Range: %s - %s\n", formatTime(analysis.TimeRange.Start), formatTime(analysis.TimeRange.End)))

	eventsFound := placeholder
	if analysis.Status == StatusSuccess {
		eventsFound = fmt.Sprintf("%d", analysis.EventsFound)
	}
	sb.WriteString(fmt.Sprintf("Events Found: %s\n", eventsFound))
	if analysis.Truncated {
		sb.WriteString("Note: record limit reached, older activity in the window may be missing\n")
	}

	sb.WriteString(fmt.Sprintf("Suspicious Activities: %s", formatFindings(analysis.Findings)))

	return sb.String()
}

func formatFindings(findings []Finding) string {
	if len(findings) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.UTC().Format(time.RFC3339)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
