package exporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
)

// CEFExporter renders archived incidents in Common Event Format for SIEM ingestion
type CEFExporter struct {
	repo ports.IncidentReader
}

func NewCEFExporter(repo ports.IncidentReader) *CEFExporter {
	return &CEFExporter{repo: repo}
}

// ExportIncident returns one CEF line for the suspension plus one per finding.
func (e *CEFExporter) ExportIncident(ctx context.Context, id string) (string, error) {
	outcome, err := e.repo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to fetch incident: %w", err)
	}
	return FormatIncident(*outcome), nil
}

// ExportRecent renders up to limit of the newest incidents.
func (e *CEFExporter) ExportRecent(ctx context.Context, limit int) (string, error) {
	outcomes, err := e.repo.FindRecent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("failed to fetch incidents: %w", err)
	}

	var output strings.Builder
	for _, outcome := range outcomes {
		output.WriteString(FormatIncident(outcome))
	}
	return output.String(), nil
}

// FormatIncident renders an outcome as newline-terminated CEF lines.
// Format: CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
func FormatIncident(outcome domain.OutcomeRecord) string {
	var output strings.Builder

	output.WriteString(formatCEF(suspensionEntry(outcome)))
	output.WriteString("\n")

	for _, f := range outcome.Analysis.Findings {
		output.WriteString(formatCEF(findingEntry(outcome, f)))
		output.WriteString("\n")
	}

	return output.String()
}

// CEFEntry is one event line of an incident
type CEFEntry struct {
	SignatureID string
	Name        string
	Severity    int
	IncidentID  string
	AccessKeyID string
	User        string
	Outcome     string
	Message     string
	EventID     string
	Time        time.Time
}

func suspensionEntry(outcome domain.OutcomeRecord) CEFEntry {
	severity := 8
	if outcome.Suspension.Status != domain.StatusSuccess {
		severity = 10
	}
	return CEFEntry{
		SignatureID: "key_suspension",
		Name:        "Exposed Access Key Suspended",
		Severity:    severity,
		IncidentID:  outcome.IncidentID,
		AccessKeyID: outcome.AccessKeyID,
		User:        outcome.Suspension.Username,
		Outcome:     string(outcome.Suspension.Status),
		Message:     outcome.Suspension.Message,
		Time:        outcome.Suspension.Timestamp,
	}
}

func findingEntry(outcome domain.OutcomeRecord, f domain.Finding) CEFEntry {
	ts, err := time.Parse(time.RFC3339, f.Timestamp)
	if err != nil {
		ts = outcome.Analysis.Timestamp
	}
	return CEFEntry{
		SignatureID: string(f.Kind),
		Name:        findingName(f.Kind),
		Severity:    calculateSeverity(f.Severity),
		IncidentID:  outcome.IncidentID,
		AccessKeyID: outcome.AccessKeyID,
		User:        outcome.Suspension.Username,
		Message:     f.Description,
		EventID:     f.EventID,
		Time:        ts,
	}
}

func formatCEF(entry CEFEntry) string {
	vendor := "Hive"
	product := "Keyguard"
	version := "1.0"

	// CEF Extensions (key=value pairs)
	extensions := []string{
		fmt.Sprintf("externalId=%s", escapeExtension(entry.IncidentID)),
		fmt.Sprintf("cs1Label=AccessKeyId cs1=%s", escapeExtension(entry.AccessKeyID)),
	}
	if entry.User != "" {
		extensions = append(extensions, fmt.Sprintf("suser=%s", escapeExtension(entry.User)))
	}
	if entry.Outcome != "" {
		extensions = append(extensions, fmt.Sprintf("outcome=%s", escapeExtension(entry.Outcome)))
	}
	if entry.EventID != "" {
		extensions = append(extensions, fmt.Sprintf("cs2Label=CloudTrailEventId cs2=%s", escapeExtension(entry.EventID)))
	}
	if !entry.Time.IsZero() {
		extensions = append(extensions, fmt.Sprintf("rt=%d", entry.Time.UnixMilli()))
	}
	if entry.Message != "" {
		extensions = append(extensions, fmt.Sprintf("msg=%s", escapeExtension(entry.Message)))
	}

	return fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
		vendor, product, version,
		escapeHeader(entry.SignatureID), escapeHeader(entry.Name), entry.Severity,
		strings.Join(extensions, " "))
}

func findingName(kind domain.FindingKind) string {
	switch kind {
	case domain.FindingHighVolume:
		return "High Request Volume"
	case domain.FindingSensitiveServiceAccess:
		return "Sensitive Service Access"
	case domain.FindingUnusualRegion:
		return "Activity In Unusual Region"
	default:
		return strings.ReplaceAll(string(kind), "_", " ")
	}
}

// calculateSeverity maps finding severity to the CEF 0-10 scale
func calculateSeverity(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 8
	case domain.SeverityMedium:
		return 5
	case domain.SeverityLow:
		return 3
	default:
		return 1
	}
}

func escapeHeader(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func escapeExtension(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
