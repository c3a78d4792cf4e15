package domain

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultClassifierPolicy(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func cloudTrail(eventSource, region string) LogRecord {
	return LogRecord{Message: fmt.Sprintf(
		`{"eventVersion":"1.08","eventSource":%q,"awsRegion":%q,"eventID":"id-%s-%s","eventTime":"2026-03-14T10:00:00Z","eventName":"ListUsers"}`,
		eventSource, region, eventSource, region)}
}

func innocuous(n int) []LogRecord {
	records := make([]LogRecord, n)
	for i := range records {
		records[i] = cloudTrail("s3.amazonaws.com", "us-east-1")
	}
	return records
}

func TestClassify_HighVolumeBoundary(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 0},
		{100, 0},
		{101, 1},
		{150, 1},
		{1000, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d records", tt.count), func(t *testing.T) {
			findings := c.Classify(innocuous(tt.count))
			assert.Len(t, findings, tt.want)
			if tt.want == 1 {
				assert.Equal(t, FindingHighVolume, findings[0].Kind)
				assert.Equal(t, SeverityHigh, findings[0].Severity)
				assert.Equal(t, fmt.Sprintf("High volume of requests: %d events in 24 hours", tt.count), findings[0].Description)
				assert.Empty(t, findings[0].EventID)
			}
		})
	}
}

func TestClassify_HighVolumeCountsUnparseableRecords(t *testing.T) {
	c := newTestClassifier()

	records := innocuous(60)
	for i := 0; i < 41; i++ {
		records = append(records, LogRecord{Message: "not json"})
	}

	findings, skipped := c.ClassifyWithSkipped(records)
	require.Len(t, findings, 1)
	assert.Equal(t, FindingHighVolume, findings[0].Kind)
	assert.Contains(t, findings[0].Description, "101 events")
	assert.Equal(t, 41, skipped)
}

func TestClassify_SensitiveServices(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		source  string
		service string
		match   bool
	}{
		{"iam.amazonaws.com", "iam", true},
		{"kms.amazonaws.com", "kms", true},
		{"secretsmanager.amazonaws.com", "secretsmanager", true},
		{"s3.amazonaws.com", "", false},
		{"sts.amazonaws.com", "", false},
		{"iam", "", false},
		{"", "", false},
		{"iamx.amazonaws.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			for _, region := range []string{"us-east-1", "eu-west-1"} {
				findings := c.Classify([]LogRecord{cloudTrail(tt.source, region)})
				if !tt.match {
					assert.Empty(t, findings)
					continue
				}
				require.Len(t, findings, 1)
				assert.Equal(t, FindingSensitiveServiceAccess, findings[0].Kind)
				assert.Equal(t, SeverityMedium, findings[0].Severity)
				assert.Equal(t, "Access to sensitive service: "+tt.service, findings[0].Description)
				assert.Equal(t, fmt.Sprintf("id-%s-%s", tt.source, region), findings[0].EventID)
				assert.Equal(t, "2026-03-14T10:00:00Z", findings[0].Timestamp)
			}
		})
	}
}

func TestClassify_UnusualRegions(t *testing.T) {
	c := newTestClassifier()

	for _, region := range []string{"ap-east-1", "me-south-1"} {
		for _, source := range []string{"s3.amazonaws.com", "ec2.amazonaws.com"} {
			findings := c.Classify([]LogRecord{cloudTrail(source, region)})
			require.Len(t, findings, 1, "%s/%s", source, region)
			assert.Equal(t, FindingUnusualRegion, findings[0].Kind)
			assert.Equal(t, SeverityLow, findings[0].Severity)
			assert.Equal(t, "Activity in unusual region: "+region, findings[0].Description)
		}
	}

	assert.Empty(t, c.Classify([]LogRecord{cloudTrail("s3.amazonaws.com", "us-west-2")}))
}

func TestClassify_RecordMatchingBothRules(t *testing.T) {
	c := newTestClassifier()

	findings := c.Classify([]LogRecord{cloudTrail("kms.amazonaws.com", "ap-east-1")})
	require.Len(t, findings, 2)
	assert.Equal(t, FindingSensitiveServiceAccess, findings[0].Kind)
	assert.Equal(t, FindingUnusualRegion, findings[1].Kind)
	assert.Equal(t, findings[0].EventID, findings[1].EventID)
}

func TestClassify_UnparseableRecords(t *testing.T) {
	c := newTestClassifier()

	tests := []string{
		"",
		"not json",
		`{"eventSource":"iam.amazonaws.com"`,
		`["iam.amazonaws.com"]`,
		`"iam.amazonaws.com"`,
		`42`,
		`null`,
	}

	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			findings, skipped := c.ClassifyWithSkipped([]LogRecord{{Message: msg}})
			assert.Empty(t, findings)
			assert.Equal(t, 1, skipped)
		})
	}
}

func TestClassify_WrongFieldTypesAreIgnored(t *testing.T) {
	c := newTestClassifier()

	findings, skipped := c.ClassifyWithSkipped([]LogRecord{
		{Message: `{"eventSource":42,"awsRegion":"me-south-1"}`},
		{Message: `{"eventSource":"iam.amazonaws.com","awsRegion":["ap-east-1"]}`},
	})

	assert.Equal(t, 0, skipped)
	require.Len(t, findings, 2)
	assert.Equal(t, FindingUnusualRegion, findings[0].Kind)
	assert.Equal(t, FindingSensitiveServiceAccess, findings[1].Kind)
}

func TestClassify_MissingOptionalFields(t *testing.T) {
	c := newTestClassifier()

	findings := c.Classify([]LogRecord{{Message: `{"eventSource":"iam.amazonaws.com"}`}})
	require.Len(t, findings, 1)
	assert.Empty(t, findings[0].EventID)
	assert.Empty(t, findings[0].Timestamp)
}

func TestClassify_Order(t *testing.T) {
	c := newTestClassifier()

	records := innocuous(99)
	records = append(records,
		cloudTrail("iam.amazonaws.com", "us-east-1"),
		LogRecord{Message: "garbage"},
		cloudTrail("s3.amazonaws.com", "me-south-1"),
		cloudTrail("secretsmanager.amazonaws.com", "ap-east-1"),
	)

	findings := c.Classify(records)

	kinds := make([]FindingKind, len(findings))
	for i, f := range findings {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []FindingKind{
		FindingHighVolume,
		FindingSensitiveServiceAccess,
		FindingUnusualRegion,
		FindingSensitiveServiceAccess,
		FindingUnusualRegion,
	}, kinds)
}

func TestClassify_NoDeduplication(t *testing.T) {
	c := newTestClassifier()

	rec := cloudTrail("iam.amazonaws.com", "us-east-1")
	findings := c.Classify([]LogRecord{rec, rec, rec})
	assert.Len(t, findings, 3)
}

func TestClassify_Idempotent(t *testing.T) {
	c := newTestClassifier()

	records := append(innocuous(120),
		cloudTrail("iam.amazonaws.com", "ap-east-1"),
		LogRecord{Message: "{"},
		cloudTrail("kms.amazonaws.com", "us-east-2"),
	)

	first := c.Classify(records)
	second := c.Classify(records)
	assert.Equal(t, first, second)
}

func TestClassify_EmptyInputIsNotNil(t *testing.T) {
	c := newTestClassifier()

	assert.NotNil(t, c.Classify(nil))
	assert.Empty(t, c.Classify(nil))
}

func TestClassify_CustomPolicy(t *testing.T) {
	c := NewClassifier(ClassifierPolicy{
		HighVolumeThreshold: 2,
		SensitiveServices:   []string{"sts", " "},
		UnusualRegions:      []string{"af-south-1"},
		Window:              6 * time.Hour,
	}, nil)

	findings := c.Classify([]LogRecord{
		cloudTrail("sts.amazonaws.com", "af-south-1"),
		cloudTrail("iam.amazonaws.com", "ap-east-1"),
		cloudTrail("s3.amazonaws.com", "us-east-1"),
	})

	require.Len(t, findings, 3)
	assert.Equal(t, "High volume of requests: 3 events in 6 hours", findings[0].Description)
	assert.Equal(t, FindingSensitiveServiceAccess, findings[1].Kind)
	assert.Equal(t, FindingUnusualRegion, findings[2].Kind)
}

func TestServicePrefix(t *testing.T) {
	assert.Equal(t, "iam", servicePrefix("iam.amazonaws.com"))
	assert.Equal(t, "", servicePrefix(".amazonaws.com"))
	assert.Equal(t, "", servicePrefix("iam"))
	assert.Equal(t, "a", servicePrefix("a.b.c"))
}

func TestDescribeWindow(t *testing.T) {
	assert.Equal(t, "24 hours", describeWindow(24*time.Hour))
	assert.Equal(t, "1 hour", describeWindow(time.Hour))
	assert.Equal(t, "1h30m0s", describeWindow(90*time.Minute))
	assert.Equal(t, "the lookback window", describeWindow(0))
}
