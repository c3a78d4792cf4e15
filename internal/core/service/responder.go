package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
	"github.com/hive-corporation/keyguard/internal/platform/clock"
	"github.com/hive-corporation/keyguard/internal/platform/metrics"
)

// ExtractionFailureBody is returned when the trigger carries no usable access key.
const ExtractionFailureBody = "Failed to extract access key from event"

// Response is what the invoking runtime receives. Body is a
// domain.OutcomeRecord on 200 and a message string on 400.
type Response struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// Settings are the retrieval and classification knobs of the responder.
type Settings struct {
	LogGroup    string
	Lookback    time.Duration
	RecordLimit int
	Policy      domain.ClassifierPolicy
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		LogGroup:    "/aws/cloudtrail",
		Lookback:    24 * time.Hour,
		RecordLimit: 1000,
		Policy:      domain.DefaultClassifierPolicy(),
	}
}

// Responder runs the exposed key playbook: suspend the key, audit its recent
// activity, notify responders. Each Respond call is independent.
type Responder struct {
	identity   ports.IdentityManager
	logs       ports.AuditLogSource
	notifier   ports.Notifier
	archive    ports.IncidentArchive
	classifier *domain.Classifier
	settings   Settings
	clock      clock.Clock
	newID      func() string
	logger     *slog.Logger
}

type Option func(r *Responder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) {
		r.logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(r *Responder) {
		r.clock = c
	}
}

// WithArchive stores every completed incident. Archive errors are logged only.
func WithArchive(archive ports.IncidentArchive) Option {
	return func(r *Responder) {
		r.archive = archive
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Responder) {
		r.newID = newID
	}
}

func New(identity ports.IdentityManager, logs ports.AuditLogSource, notifier ports.Notifier, settings Settings, opts ...Option) *Responder {
	r := &Responder{
		identity: identity,
		logs:     logs,
		notifier: notifier,
		settings: settings,
		clock:    clock.RealClock{},
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.classifier = domain.NewClassifier(settings.Policy, r.logger)
	return r
}

// Respond handles one trigger event. Extraction failures yield a 400
// response without touching any collaborator. Once a key is extracted every
// step runs and the response is 200, with collaborator failures embedded in
// the outcome. An error is returned only when ctx ends mid-pipeline.
func (r *Responder) Respond(ctx context.Context, event domain.TriggerEvent) (Response, error) {
	timer := metrics.StartTimer()

	if err := ctx.Err(); err != nil {
		metrics.RecordInvocation("failed", timer.Elapsed())
		return Response{}, err
	}

	r.logger.Info("processing event", "event_id", event.ID, "source", event.Source, "detail_type", event.DetailType)

	accessKeyID, err := domain.ExtractAccessKeyID(event)
	if err != nil {
		r.logger.Error("failed to extract access key from event", "event_id", event.ID, "error", err)
		metrics.RecordInvocation("rejected", timer.Elapsed())
		return Response{StatusCode: http.StatusBadRequest, Body: ExtractionFailureBody}, nil
	}

	log := r.logger.With("access_key_id", accessKeyID)
	log.Info("extracted access key id")

	// Step 1: suspend the exposed key
	suspension := r.suspend(ctx, log, accessKeyID)
	if err := r.checkDeadline(ctx, "suspension", timer); err != nil {
		return Response{}, err
	}

	// Step 2: audit its recent activity
	analysis := r.analyze(ctx, log, accessKeyID)
	if err := r.checkDeadline(ctx, "log analysis", timer); err != nil {
		return Response{}, err
	}

	outcome := domain.OutcomeRecord{
		IncidentID:  r.newID(),
		AccessKeyID: accessKeyID,
		Suspension:  suspension,
		Analysis:    analysis,
		Duration:    timer.Elapsed(),
	}

	// Step 3: notify responders (best effort)
	r.notify(ctx, log, outcome)
	r.store(ctx, log, outcome)

	metrics.RecordInvocation("completed", timer.Elapsed())
	log.Info("processed exposed key event",
		"incident_id", outcome.IncidentID,
		"suspension_status", suspension.Status,
		"analysis_status", analysis.Status,
		"events", analysis.EventsFound,
		"findings", len(analysis.Findings),
	)

	return Response{StatusCode: http.StatusOK, Body: outcome}, nil
}

func (r *Responder) suspend(ctx context.Context, log *slog.Logger, accessKeyID string) domain.SuspensionResult {
	userName, err := r.identity.FindKeyOwner(ctx, accessKeyID)
	if err != nil {
		return r.suspensionFailed(log, "", err)
	}

	if err := r.identity.SetKeyStatus(ctx, userName, accessKeyID, ports.KeyStatusInactive); err != nil {
		return r.suspensionFailed(log, userName, err)
	}

	log.Info("successfully suspended access key", "user", userName)
	metrics.RecordSuspension(string(domain.StatusSuccess))
	return domain.SuspensionResult{
		Status:    domain.StatusSuccess,
		Message:   fmt.Sprintf("Successfully suspended access key %s", accessKeyID),
		Timestamp: r.clock.Now(),
		Username:  userName,
	}
}

func (r *Responder) suspensionFailed(log *slog.Logger, userName string, err error) domain.SuspensionResult {
	log.Error("failed to suspend access key", "user", userName, "error", err)
	metrics.RecordSuspension(string(domain.StatusError))
	return domain.SuspensionResult{
		Status:    domain.StatusError,
		Message:   fmt.Sprintf("Failed to suspend access key: %v", err),
		Timestamp: r.clock.Now(),
		Username:  userName,
	}
}

func (r *Responder) analyze(ctx context.Context, log *slog.Logger, accessKeyID string) domain.AnalysisResult {
	end := r.clock.Now()
	window := domain.TimeRange{Start: end.Add(-r.settings.Lookback), End: end}

	records, err := r.logs.FetchRecords(ctx, ports.LogQuery{
		LogGroup: r.settings.LogGroup,
		Start:    window.Start,
		End:      window.End,
		Filter:   accessKeyID,
		Limit:    r.settings.RecordLimit,
	})
	if err != nil {
		log.Error("failed to gather logs", "log_group", r.settings.LogGroup, "error", err)
		metrics.RecordLogRetrieval(string(domain.StatusError))
		records = nil
	}

	findings, skipped := r.classifier.ClassifyWithSkipped(records)
	metrics.RecordSkippedRecords(skipped)
	for _, f := range findings {
		metrics.RecordFinding(string(f.Kind), string(f.Severity))
	}

	if err != nil {
		return domain.AnalysisResult{
			Status:    domain.StatusError,
			Message:   fmt.Sprintf("Failed to gather logs: %v", err),
			Timestamp: r.clock.Now(),
			TimeRange: window,
			Findings:  findings,
		}
	}

	truncated := r.settings.RecordLimit > 0 && len(records) >= r.settings.RecordLimit
	if truncated {
		log.Warn("log retrieval hit the record limit, older events may be missing", "limit", r.settings.RecordLimit)
	}

	metrics.RecordLogRetrieval(string(domain.StatusSuccess))
	log.Info("successfully gathered logs", "events", len(records), "skipped", skipped, "findings", len(findings))

	return domain.AnalysisResult{
		Status:      domain.StatusSuccess,
		Message:     "Successfully gathered logs",
		Timestamp:   r.clock.Now(),
		TimeRange:   window,
		EventsFound: len(records),
		Truncated:   truncated,
		Findings:    findings,
	}
}

func (r *Responder) notify(ctx context.Context, log *slog.Logger, outcome domain.OutcomeRecord) {
	if r.notifier == nil {
		log.Warn("no notifier configured, skipping notification")
		return
	}

	notification := ports.Notification{
		Subject: domain.SummarySubject,
		Body:    domain.FormatSummary(outcome.AccessKeyID, outcome.Suspension, outcome.Analysis),
		Outcome: outcome,
	}

	if err := r.notifier.Notify(ctx, notification); err != nil {
		log.Error("failed to send notification", "channel", r.notifier.Name(), "error", err)
		return
	}
	log.Info("sent notification", "channel", r.notifier.Name())
}

func (r *Responder) store(ctx context.Context, log *slog.Logger, outcome domain.OutcomeRecord) {
	if r.archive == nil {
		return
	}
	if err := r.archive.Save(ctx, outcome); err != nil {
		log.Error("failed to archive incident", "incident_id", outcome.IncidentID, "error", err)
	}
}

// checkDeadline turns an expired invocation context into a fatal error.
func (r *Responder) checkDeadline(ctx context.Context, step string, timer *metrics.Timer) error {
	if err := ctx.Err(); err != nil {
		r.logger.Error("invocation context ended", "step", step, "error", err)
		metrics.RecordInvocation("failed", timer.Elapsed())
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}
