package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-corporation/keyguard/internal/core/domain"
)

func TestReadRecords(t *testing.T) {
	input := `{"eventSource":"iam.amazonaws.com"}

  {"eventSource":"s3.amazonaws.com"}
not json
`
	records, err := readRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, `{"eventSource":"s3.amazonaws.com"}`, records[1].Message)
	assert.Equal(t, "not json", records[2].Message)
}

func TestPrintFindings(t *testing.T) {
	var buf bytes.Buffer
	printFindings(&buf, []domain.Finding{
		{Description: "Access to sensitive service: iam", EventID: "e-1", Timestamp: "2026-03-14T10:00:00Z", Severity: domain.SeverityMedium},
		{Description: "High volume of requests: 150 events in 24 hours", Severity: domain.SeverityHigh},
	}, 150, 1)

	out := buf.String()
	assert.Contains(t, out, "analyzed 150 records (1 unparseable)")
	assert.Contains(t, out, "[MEDIUM] Access to sensitive service: iam (event e-1 at 2026-03-14T10:00:00Z)")
	assert.Contains(t, out, "[HIGH] High volume of requests: 150 events in 24 hours\n")
	assert.Contains(t, out, "2 suspicious activities found")

	buf.Reset()
	printFindings(&buf, nil, 0, 0)
	assert.Contains(t, buf.String(), "no suspicious activity found")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"iam", "kms"}, splitList(" iam, ,kms,"))
	assert.Nil(t, splitList(""))
}
