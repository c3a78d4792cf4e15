package amazon

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/core/ports"
)

// CloudWatchLogsAPI is the subset of the CloudWatch Logs client used to read
// audit records.
type CloudWatchLogsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

type CloudWatchLogSource struct {
	client CloudWatchLogsAPI
}

func NewCloudWatchLogSource(client CloudWatchLogsAPI) *CloudWatchLogSource {
	return &CloudWatchLogSource{client: client}
}

// FetchRecords runs a single bounded filter call. Pages beyond the first
// are not requested, so at most query.Limit records come back.
func (s *CloudWatchLogSource) FetchRecords(ctx context.Context, query ports.LogQuery) ([]domain.LogRecord, error) {
	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(query.LogGroup),
		StartTime:    aws.Int64(query.Start.UnixMilli()),
		EndTime:      aws.Int64(query.End.UnixMilli()),
	}
	if query.Filter != "" {
		input.FilterPattern = aws.String(query.Filter)
	}
	if query.Limit > 0 {
		input.Limit = aws.Int32(int32(min(query.Limit, math.MaxInt32)))
	}

	out, err := s.client.FilterLogEvents(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("filter log events in %s: %w", query.LogGroup, err)
	}

	records := make([]domain.LogRecord, 0, len(out.Events))
	for _, ev := range out.Events {
		if query.Limit > 0 && len(records) >= query.Limit {
			break
		}
		records = append(records, domain.LogRecord{
			Message:    aws.ToString(ev.Message),
			LogEventID: aws.ToString(ev.EventId),
			IngestedAt: fromMillis(ev.IngestionTime),
		})
	}
	return records, nil
}

func fromMillis(ms *int64) time.Time {
	if ms == nil {
		return time.Time{}
	}
	return time.UnixMilli(*ms).UTC()
}
