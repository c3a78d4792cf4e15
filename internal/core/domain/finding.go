package domain

type FindingKind string

const (
	FindingHighVolume             FindingKind = "high_volume"
	FindingSensitiveServiceAccess FindingKind = "sensitive_service_access"
	FindingUnusualRegion          FindingKind = "unusual_region"
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding is one suspicious activity detected in the key's audit trail.
// EventID and Timestamp come from the CloudTrail record and are empty for
// aggregate findings.
type Finding struct {
	Kind        FindingKind `json:"type"`
	Description string      `json:"description"`
	EventID     string      `json:"eventId,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Severity    Severity    `json:"severity"`
}
