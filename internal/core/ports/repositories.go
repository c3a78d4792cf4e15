package ports

import (
	"context"
	"errors"
	"time"

	"github.com/hive-corporation/keyguard/internal/core/domain"
)

var ErrIncidentNotFound = errors.New("incident not found")

// LogQuery selects the audit records of one access key.
type LogQuery struct {
	LogGroup string
	Start    time.Time
	End      time.Time
	Filter   string
	Limit    int
}

// AuditLogSource retrieves raw audit records. It returns at most Limit
// records and does not paginate past it.
type AuditLogSource interface {
	FetchRecords(ctx context.Context, query LogQuery) ([]domain.LogRecord, error)
}

// IncidentArchive stores finished incidents. The responder only writes to it.
type IncidentArchive interface {
	Save(ctx context.Context, outcome domain.OutcomeRecord) error
}

// IncidentReader serves archived incidents to the API and exporters.
type IncidentReader interface {
	FindByID(ctx context.Context, id string) (*domain.OutcomeRecord, error)
	FindRecent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error)
}

type IncidentRepository interface {
	IncidentArchive
	IncidentReader
}
