package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportTime(t *testing.T) {
	expected := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		value string
	}{
		{"canonical layout", "2023-01-02 03:04:05 UTC"},
		{"doubled utc designator", "2023-01-02 03:04:05 UTCUTC"},
		{"fallback layout", "2023-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportTime(tt.value)
			require.NoError(t, err)
			assert.True(t, got.Equal(expected), "got %s", got)
		})
	}
}

func TestParseReportTimeInvalid(t *testing.T) {
	for _, value := range []string{"", "yesterday", "2023-01-02", "Mon Jan 02 03:04:05 UTC 2023"} {
		_, err := ParseReportTime(value)
		assert.Error(t, err, "value %q", value)
	}
}

func TestParseReportTimeOrdering(t *testing.T) {
	older, err := ParseReportTime("2023-01-02 03:04:05 UTCUTC")
	require.NoError(t, err)
	newer, err := ParseReportTime("2023-01-02T03:04:06Z")
	require.NoError(t, err)

	assert.True(t, newer.After(older))
}

func TestRecordWithProvenance(t *testing.T) {
	desc := FileDescriptor{
		Filename:     "foo-20-earnings-report-20230101.tsv.gz",
		LastModified: "2023-01-02 03:04:05 UTCUTC",
		Download:     "/datafeed/getReport?filename=foo",
		ReportType:   ReportTypeEarnings,
	}

	record := Record{
		"category": "books",
		"filename": "parsed-value-to-overwrite",
	}

	got := record.WithProvenance(desc)

	assert.Equal(t, "books", got["category"])
	assert.Equal(t, desc.Filename, got["filename"])
	assert.Equal(t, string(desc.ReportType), got["report_type"])
	assert.Equal(t, desc.LastModified, got["last_modified"])

	// The original record is untouched.
	assert.Equal(t, "parsed-value-to-overwrite", record["filename"])
}
