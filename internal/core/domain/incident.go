package domain

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// LogRecord is one raw audit-log event as returned by the log source.
// Message holds the JSON-encoded CloudTrail entry.
type LogRecord struct {
	Message    string    `json:"message"`
	LogEventID string    `json:"logEventId,omitempty"`
	IngestedAt time.Time `json:"ingestedAt,omitempty"`
}

// SuspensionResult describes the attempt to deactivate the exposed key.
type SuspensionResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username,omitempty"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalysisResult describes the retrospective audit of the key's activity.
// Truncated is set when the log source returned exactly the record limit,
// meaning older activity in the window may be missing.
type AnalysisResult struct {
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	TimeRange   TimeRange `json:"timeRange"`
	EventsFound int       `json:"eventsFound"`
	Truncated   bool      `json:"truncated"`
	Findings    []Finding `json:"findings"`
}

// OutcomeRecord ties together everything one invocation did.
type OutcomeRecord struct {
	IncidentID  string           `json:"incidentId"`
	AccessKeyID string           `json:"accessKeyId"`
	Suspension  SuspensionResult `json:"accessKeySuspension"`
	Analysis    AnalysisResult   `json:"logAnalysis"`
	Duration    time.Duration    `json:"durationNs"`
}

// HighestSeverity returns the most severe finding level, or "" if there are none.
func (a AnalysisResult) HighestSeverity() Severity {
	highest := Severity("")
	for _, f := range a.Findings {
		if f.Severity.rank() > highest.rank() {
			highest = f.Severity
		}
	}
	return highest
}
