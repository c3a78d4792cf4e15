package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
	CREATE TABLE IF NOT EXISTS incidents (
		id                TEXT PRIMARY KEY,
		access_key_id     TEXT NOT NULL,
		username          TEXT NOT NULL DEFAULT '',
		suspension_status TEXT NOT NULL,
		analysis_status   TEXT NOT NULL,
		events_found      INTEGER NOT NULL DEFAULT 0,
		findings_count    INTEGER NOT NULL DEFAULT 0,
		highest_severity  TEXT NOT NULL DEFAULT '',
		outcome           JSONB NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS incidents_access_key_id_idx ON incidents (access_key_id);
	CREATE INDEX IF NOT EXISTS incidents_created_at_idx ON incidents (created_at DESC);
`

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the incidents table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate incidents table: %w", err)
	}
	return nil
}

// Save inserts the outcome. Saving the same incident twice keeps the first row.
func (r *PostgresRepository) Save(ctx context.Context, outcome domain.OutcomeRecord) error {
	doc, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal incident: %w", err)
	}

	query := `
		INSERT INTO incidents (id, access_key_id, username, suspension_status, analysis_status,
			events_found, findings_count, highest_severity, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, now()))
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.Exec(ctx, query,
		outcome.IncidentID,
		outcome.AccessKeyID,
		outcome.Suspension.Username,
		string(outcome.Suspension.Status),
		string(outcome.Analysis.Status),
		outcome.Analysis.EventsFound,
		len(outcome.Analysis.Findings),
		string(outcome.Analysis.HighestSeverity()),
		doc,
		createdAt(outcome),
	)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.OutcomeRecord, error) {
	query := `
		SELECT outcome
		FROM incidents
		WHERE id = $1
	`

	var doc []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to query incident: %w", err)
	}

	var outcome domain.OutcomeRecord
	if err := json.Unmarshal(doc, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode incident %s: %w", id, err)
	}

	return &outcome, nil
}

// FindRecent returns up to limit incidents, newest first.
func (r *PostgresRepository) FindRecent(ctx context.Context, limit int) ([]domain.OutcomeRecord, error) {
	query := `
		SELECT outcome
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	outcomes := []domain.OutcomeRecord{}

	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		var outcome domain.OutcomeRecord
		if err := json.Unmarshal(doc, &outcome); err != nil {
			return nil, fmt.Errorf("failed to decode incident: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return outcomes, nil
}

func createdAt(outcome domain.OutcomeRecord) any {
	switch {
	case !outcome.Suspension.Timestamp.IsZero():
		return outcome.Suspension.Timestamp
	case !outcome.Analysis.TimeRange.End.IsZero():
		return outcome.Analysis.TimeRange.End
	default:
		return nil
	}
}
