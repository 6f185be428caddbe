package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assocfeed/pkg/models"
)

func TestScrape(t *testing.T) {
	html := `<HTML><BODY><TABLE>
<TR><TD>foo-20-earnings-report-20230101.tsv.gz</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD><TD>1.2M</TD><TD><a href=/datafeed/getReport?filename=foo-20-earnings-report-20230101.tsv.gz>Download</a></TD></TR>
<TR><TD>foo-20-orders-report-20230101.tsv.gz</TD><TD>Mon Jan 02 04:05:06 UTC 2023</TD><TD>800K</TD><TD><a href="/datafeed/getReport?filename=foo-20-orders-report-20230101.tsv.gz">Download</a></TD></TR>
</TABLE></BODY></HTML>`

	descriptors := NewScraper(nil).Scrape(html)
	require.Len(t, descriptors, 2)

	assert.Equal(t, models.FileDescriptor{
		Filename:     "foo-20-earnings-report-20230101.tsv.gz",
		LastModified: "2023-01-02 03:04:05 UTCUTC",
		Download:     "/datafeed/getReport?filename=foo-20-earnings-report-20230101.tsv.gz",
		ReportType:   models.ReportTypeEarnings,
	}, descriptors[0])

	assert.Equal(t, models.ReportTypeOrders, descriptors[1].ReportType)
	assert.Equal(t, "2023-01-02 04:05:06 UTCUTC", descriptors[1].LastModified)
}

func TestScrapeRowSpansLineBreaks(t *testing.T) {
	html := "<TR><TD>foo-20-tracking-report-20230101.tsv.gz</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD>\n<TD>1.2M</TD>\n<TD><a href=/x.gz>Download</a></TD></TR>"

	descriptors := NewScraper(nil).Scrape(html)
	require.Len(t, descriptors, 1)
	assert.Equal(t, models.ReportTypeTracking, descriptors[0].ReportType)
	assert.Equal(t, "/x.gz", descriptors[0].Download)
}

func TestScrapeFilters(t *testing.T) {
	html := `<TR><TD>foo-20-bounty-report-20230101.tsv.gz</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD><TD><a href=/a.gz></TD></TR>
<TR><TD>readme.txt</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD><TD><a href=/b.txt></TD></TR>
<TR><TD>foo-20-earnings-report-20230101.tsv.gz</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD><TD><a href=/c.gz></TD></TR>`

	descriptors := NewScraper(nil).Scrape(html)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "foo-20-earnings-report-20230101.tsv.gz", descriptors[0].Filename)
}

func TestScrapeKeepsUnclassifiableRows(t *testing.T) {
	html := `<TR><TD>strange-file.tsv.gz</TD><TD>Mon Jan 02 03:04:05 UTC 2023</TD><TD><a href=/x.gz></TD></TR>`

	descriptors := NewScraper(nil).Scrape(html)
	require.Len(t, descriptors, 1)
	assert.Equal(t, models.ReportType(""), descriptors[0].ReportType)
}

func TestExtractReportType(t *testing.T) {
	tests := []struct {
		filename string
		expected models.ReportType
	}{
		{"foo-20-earnings-report-20230101.tsv.gz", models.ReportTypeEarnings},
		{"foo-20-orders-report-20230101.tsv.gz", models.ReportTypeOrders},
		{"foo-20-tracking-report-20230101.tsv.gz", models.ReportTypeTracking},
		{"uk-21-earnings-report-20230101.tsv.gz", models.ReportTypeEarningsSubtags},
		{"uk-21-orders-report-20230101.tsv.gz", models.ReportTypeOrdersSubtags},
		{"uk-21-tracking-report-20230101.tsv.gz", models.ReportTypeTracking},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := ExtractReportType(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractReportTypeBadFilename(t *testing.T) {
	_, err := ExtractReportType("not-a-report.gz")
	assert.Error(t, err)
}
