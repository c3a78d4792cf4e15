package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ClassifierPolicy holds the detection thresholds.
type ClassifierPolicy struct {
	HighVolumeThreshold int           // More than this many events in the window is suspicious
	SensitiveServices   []string      // eventSource service prefixes (iam, kms, ...)
	UnusualRegions      []string      // awsRegion values rarely used by the account
	Window              time.Duration // Only used to describe the volume finding
}

// DefaultClassifierPolicy returns the default detection thresholds.
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{
		HighVolumeThreshold: 100,
		SensitiveServices:   []string{"iam", "kms", "secretsmanager"},
		UnusualRegions:      []string{"ap-east-1", "me-south-1"},
		Window:              24 * time.Hour,
	}
}

// Classifier turns the audit records of a single access key into findings.
// It holds no state between calls and is safe for concurrent use.
type Classifier struct {
	highVolume int
	sensitive  map[string]struct{}
	unusual    map[string]struct{}
	window     time.Duration
	logger     *slog.Logger
}

func NewClassifier(policy ClassifierPolicy, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		highVolume: policy.HighVolumeThreshold,
		sensitive:  toSet(policy.SensitiveServices),
		unusual:    toSet(policy.UnusualRegions),
		window:     policy.Window,
		logger:     logger,
	}
}

// Classify returns the findings for records in detection order: the volume
// finding (if any) first, then per-record findings in input order. The result
// is never nil.
func (c *Classifier) Classify(records []LogRecord) []Finding {
	findings, _ := c.ClassifyWithSkipped(records)
	return findings
}

// ClassifyWithSkipped is Classify plus the number of records that could not
// be parsed and were skipped.
func (c *Classifier) ClassifyWithSkipped(records []LogRecord) ([]Finding, int) {
	findings := []Finding{}
	skipped := 0

	// Volume uses the raw count, unparseable records included
	if len(records) > c.highVolume {
		findings = append(findings, Finding{
			Kind:        FindingHighVolume,
			Description: fmt.Sprintf("High volume of requests: %d events in %s", len(records), describeWindow(c.window)),
			Severity:    SeverityHigh,
		})
	}

	for _, record := range records {
		entry, err := parseAuditEntry(record.Message)
		if err != nil {
			c.logger.Warn("could not parse log event", "message", record.Message, "error", err)
			skipped++
			continue
		}

		service := servicePrefix(entry.EventSource)
		if _, ok := c.sensitive[service]; ok {
			findings = append(findings, Finding{
				Kind:        FindingSensitiveServiceAccess,
				Description: fmt.Sprintf("Access to sensitive service: %s", service),
				EventID:     entry.EventID,
				Timestamp:   entry.EventTime,
				Severity:    SeverityMedium,
			})
		}

		if _, ok := c.unusual[entry.AWSRegion]; ok {
			findings = append(findings, Finding{
				Kind:        FindingUnusualRegion,
				Description: fmt.Sprintf("Activity in unusual region: %s", entry.AWSRegion),
				EventID:     entry.EventID,
				Timestamp:   entry.EventTime,
				Severity:    SeverityLow,
			})
		}
	}

	return findings, skipped
}

// auditEntry holds the CloudTrail fields the classifier looks at.
type auditEntry struct {
	EventSource string
	AWSRegion   string
	EventID     string
	EventTime   string
}

var errNotAnObject = errors.New("log event is not a JSON object")

// parseAuditEntry decodes a CloudTrail record leniently: the message must be
// a JSON object, but fields with unexpected types are treated as absent
// rather than failing the whole record.
func parseAuditEntry(message string) (auditEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(message), &fields); err != nil {
		return auditEntry{}, err
	}
	if fields == nil {
		return auditEntry{}, errNotAnObject
	}

	return auditEntry{
		EventSource: stringField(fields, "eventSource"),
		AWSRegion:   stringField(fields, "awsRegion"),
		EventID:     stringField(fields, "eventID"),
		EventTime:   stringField(fields, "eventTime"),
	}, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// servicePrefix returns "iam" for "iam.amazonaws.com". Sources without a dot
// have no service prefix.
func servicePrefix(eventSource string) string {
	service, _, found := strings.Cut(eventSource, ".")
	if !found {
		return ""
	}
	return service
}

func describeWindow(d time.Duration) string {
	if d <= 0 {
		return "the lookback window"
	}
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
