package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
	"github.com/hive-corporation/keyguard/internal/core/ports/mocks"
	"github.com/hive-corporation/keyguard/internal/platform/clock"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type responderFixture struct {
	identity *mocks.MockIdentityManager
	logs     *mocks.MockAuditLogSource
	notifier *mocks.MockNotifier
	archive  *mocks.MockIncidentArchive
	service  *Responder
}

func newFixture(t *testing.T) *responderFixture {
	ctrl := gomock.NewController(t)
	f := &responderFixture{
		identity: mocks.NewMockIdentityManager(ctrl),
		logs:     mocks.NewMockAuditLogSource(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		archive:  mocks.NewMockIncidentArchive(ctrl),
	}
	f.notifier.EXPECT().Name().Return("sns").AnyTimes()
	f.service = New(f.identity, f.logs, f.notifier, DefaultSettings(),
		WithClock(clock.Fixed(fixedNow)),
		WithIDGenerator(func() string { return "incident-1" }),
	)
	return f
}

func healthEvent(t *testing.T, entities ...domain.AffectedEntity) domain.TriggerEvent {
	t.Helper()
	detail, err := json.Marshal(map[string]any{
		"eventTypeCode":    "AWS_RISK_CREDENTIALS_EXPOSED",
		"service":          "RISK",
		"affectedEntities": entities,
	})
	require.NoError(t, err)
	return domain.TriggerEvent{ID: "evt-1", Source: "aws.health", DetailType: "AWS Health Event", Detail: detail}
}

func accessKey(value string) domain.AffectedEntity {
	return domain.AffectedEntity{EntityType: domain.AccessKeyEntityType, EntityValue: value}
}

func record(eventSource, region string) domain.LogRecord {
	return domain.LogRecord{Message: fmt.Sprintf(`{"eventSource":%q,"awsRegion":%q,"eventID":"e-1","eventTime":"2026-03-14T11:00:00Z"}`, eventSource, region)}
}

func outcomeOf(t *testing.T, resp Response) domain.OutcomeRecord {
	t.Helper()
	outcome, ok := resp.Body.(domain.OutcomeRecord)
	require.True(t, ok, "body should be an OutcomeRecord, got %T", resp.Body)
	return outcome
}

func countKind(findings []domain.Finding, kind domain.FindingKind) int {
	n := 0
	for _, f := range findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

func TestRespond_SensitiveServiceActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gomock.InOrder(
		f.identity.EXPECT().FindKeyOwner(gomock.Any(), "AKIA123").Return("alice", nil),
		f.identity.EXPECT().SetKeyStatus(gomock.Any(), "alice", "AKIA123", ports.KeyStatusInactive).Return(nil),
		f.logs.EXPECT().FetchRecords(gomock.Any(), ports.LogQuery{
			LogGroup: "/aws/cloudtrail",
			Start:    fixedNow.Add(-24 * time.Hour),
			End:      fixedNow,
			Filter:   "AKIA123",
			Limit:    1000,
		}).Return([]domain.LogRecord{record("iam.amazonaws.com", "us-east-1")}, nil),
		f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n ports.Notification) error {
			assert.Equal(t, domain.SummarySubject, n.Subject)
			assert.Contains(t, n.Body, "Access Key ID: AKIA123")
			assert.Contains(t, n.Body, "User Associated: alice")
			assert.Equal(t, "incident-1", n.Outcome.IncidentID)
			return nil
		}),
	)

	resp, err := f.service.Respond(ctx, healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	outcome := outcomeOf(t, resp)
	assert.Equal(t, "AKIA123", outcome.AccessKeyID)
	assert.Equal(t, domain.StatusSuccess, outcome.Suspension.Status)
	assert.Equal(t, "alice", outcome.Suspension.Username)
	assert.Equal(t, "Successfully suspended access key AKIA123", outcome.Suspension.Message)
	assert.Equal(t, fixedNow, outcome.Suspension.Timestamp)

	assert.Equal(t, domain.StatusSuccess, outcome.Analysis.Status)
	assert.Equal(t, 1, outcome.Analysis.EventsFound)
	assert.False(t, outcome.Analysis.Truncated)
	assert.Equal(t, 1, countKind(outcome.Analysis.Findings, domain.FindingSensitiveServiceAccess))
	assert.Equal(t, 0, countKind(outcome.Analysis.Findings, domain.FindingUnusualRegion))
	assert.Equal(t, 0, countKind(outcome.Analysis.Findings, domain.FindingHighVolume))
}

func TestRespond_HighVolume(t *testing.T) {
	f := newFixture(t)

	records := make([]domain.LogRecord, 150)
	for i := range records {
		records[i] = record("s3.amazonaws.com", "us-east-1")
	}

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), "AKIA123").Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), "alice", "AKIA123", ports.KeyStatusInactive).Return(nil)
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(records, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)

	outcome := outcomeOf(t, resp)
	assert.Equal(t, 150, outcome.Analysis.EventsFound)
	require.Len(t, outcome.Analysis.Findings, 1)
	assert.Equal(t, domain.FindingHighVolume, outcome.Analysis.Findings[0].Kind)
	assert.Equal(t, domain.SeverityHigh, outcome.Analysis.Findings[0].Severity)
}

func TestRespond_SuspensionFailureStillCompletes(t *testing.T) {
	f := newFixture(t)

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), "AKIA123").Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), "alice", "AKIA123", ports.KeyStatusInactive).
		Return(errors.New("AccessDenied: not authorized to perform iam:UpdateAccessKey"))
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).
		Return([]domain.LogRecord{record("kms.amazonaws.com", "me-south-1")}, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	outcome := outcomeOf(t, resp)
	assert.Equal(t, domain.StatusError, outcome.Suspension.Status)
	assert.True(t, strings.HasPrefix(outcome.Suspension.Message, "Failed to suspend access key: "))
	assert.Contains(t, outcome.Suspension.Message, "AccessDenied")

	assert.Equal(t, domain.StatusSuccess, outcome.Analysis.Status)
	assert.Equal(t, 1, outcome.Analysis.EventsFound)
	assert.Len(t, outcome.Analysis.Findings, 2)
}

func TestRespond_OwnerLookupFailure(t *testing.T) {
	f := newFixture(t)

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), "AKIA123").Return("", errors.New("NoSuchEntity"))
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n ports.Notification) error {
		assert.Contains(t, n.Body, "User Associated: N/A")
		return nil
	})

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)

	outcome := outcomeOf(t, resp)
	assert.Equal(t, domain.StatusError, outcome.Suspension.Status)
	assert.Empty(t, outcome.Suspension.Username)
	assert.Equal(t, 0, outcome.Analysis.EventsFound)
	assert.NotNil(t, outcome.Analysis.Findings)
	assert.Empty(t, outcome.Analysis.Findings)
}

func TestRespond_NoAccessKeyEntity(t *testing.T) {
	tests := []struct {
		name  string
		event domain.TriggerEvent
	}{
		{
			name:  "only non access key entities",
			event: healthEvent(t, domain.AffectedEntity{EntityType: "USER", EntityValue: "alice"}),
		},
		{
			name:  "empty entity list",
			event: healthEvent(t),
		},
		{
			name:  "missing detail",
			event: domain.TriggerEvent{ID: "evt-2"},
		},
		{
			name:  "detail without affected entities",
			event: domain.TriggerEvent{Detail: json.RawMessage(`{"service":"RISK"}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No EXPECT calls: any collaborator call fails the test
			f := newFixture(t)

			resp, err := f.service.Respond(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, ExtractionFailureBody, resp.Body)
		})
	}
}

func TestRespond_LogRetrievalFailure(t *testing.T) {
	f := newFixture(t)

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), "AKIA123").Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), "alice", "AKIA123", ports.KeyStatusInactive).Return(nil)
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(nil, errors.New("ResourceNotFoundException"))
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n ports.Notification) error {
		assert.Contains(t, n.Body, "Events Found: N/A")
		return nil
	})

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	outcome := outcomeOf(t, resp)
	assert.Equal(t, domain.StatusSuccess, outcome.Suspension.Status)
	assert.Equal(t, domain.StatusError, outcome.Analysis.Status)
	assert.Equal(t, "Failed to gather logs: ResourceNotFoundException", outcome.Analysis.Message)
	assert.Equal(t, 0, outcome.Analysis.EventsFound)
	assert.Empty(t, outcome.Analysis.Findings)
	assert.Equal(t, fixedNow, outcome.Analysis.TimeRange.End)
}

func TestRespond_NotificationFailureIsNotEscalated(t *testing.T) {
	f := newFixture(t)

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), gomock.Any()).Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("sns: throttled"))

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRespond_ArchivesIncident(t *testing.T) {
	f := newFixture(t)
	f.service = New(f.identity, f.logs, f.notifier, DefaultSettings(),
		WithClock(clock.Fixed(fixedNow)),
		WithIDGenerator(func() string { return "incident-7" }),
		WithArchive(f.archive),
	)

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), gomock.Any()).Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
	f.archive.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o domain.OutcomeRecord) error {
		assert.Equal(t, "incident-7", o.IncidentID)
		return errors.New("connection refused")
	})

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRespond_TruncatedWhenLimitReached(t *testing.T) {
	f := newFixture(t)
	settings := DefaultSettings()
	settings.RecordLimit = 3
	f.service = New(f.identity, f.logs, f.notifier, settings, WithClock(clock.Fixed(fixedNow)))

	f.identity.EXPECT().FindKeyOwner(gomock.Any(), gomock.Any()).Return("alice", nil)
	f.identity.EXPECT().SetKeyStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q ports.LogQuery) ([]domain.LogRecord, error) {
		assert.Equal(t, 3, q.Limit)
		return []domain.LogRecord{
			record("s3.amazonaws.com", "us-east-1"),
			record("s3.amazonaws.com", "us-east-1"),
			record("s3.amazonaws.com", "us-east-1"),
		}, nil
	})
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := f.service.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)

	outcome := outcomeOf(t, resp)
	assert.True(t, outcome.Analysis.Truncated)
	assert.Equal(t, 3, outcome.Analysis.EventsFound)
}

func TestRespond_WithoutNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentityManager(ctrl)
	logs := mocks.NewMockAuditLogSource(ctrl)

	identity.EXPECT().FindKeyOwner(gomock.Any(), gomock.Any()).Return("alice", nil)
	identity.EXPECT().SetKeyStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	logs.EXPECT().FetchRecords(gomock.Any(), gomock.Any()).Return(nil, nil)

	svc := New(identity, logs, nil, DefaultSettings())
	resp, err := svc.Respond(context.Background(), healthEvent(t, accessKey("AKIA123")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRespond_CancelledContext(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.service.Respond(ctx, healthEvent(t, accessKey("AKIA123")))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("during suspension", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f.identity.EXPECT().FindKeyOwner(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			cancel()
			return "", ctx.Err()
		})

		_, err := f.service.Respond(ctx, healthEvent(t, accessKey("AKIA123")))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
