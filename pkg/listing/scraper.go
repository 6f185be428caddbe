// Package listing scrapes the portal's directory-listing page into report
// file descriptors.
package listing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assocfeed/pkg/logger"
	"assocfeed/pkg/models"
)

var (
	// rowPattern matches one table row of the listing page. Rows span line
	// breaks, so the pattern runs in dot-matches-newline mode.
	rowPattern = regexp.MustCompile(`(?s)<TR><TD>(.*?)</TD><TD>(.*?)</TD>.*?<a href=(.*?)>`)

	// filenamePattern extracts the report kind from names shaped like
	// <prefix>-<2-digit code>-<kind>-<8-digit date>.tsv.gz.
	filenamePattern = regexp.MustCompile(`\w+-\d{2}-(.+)-\d{8}\.tsv\.gz`)
)

const (
	reportSuffixMarker = "tsv"
	bountyMarker       = "bounty"

	// regionalAccountMarker flags the regional account whose earnings and
	// orders feeds carry the extra sub-tag breakdown column.
	regionalAccountMarker = "uk-21"
)

// Scraper parses the portal directory listing.
type Scraper struct {
	logger logger.Logger
}

// NewScraper creates a listing scraper.
func NewScraper(log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{logger: log}
}

// Scrape extracts file descriptors from the listing page HTML. Rows that are
// not report files, or that belong to the bounty programme, are dropped. A
// filename that defies report-type classification is logged and kept with an
// empty type rather than failing the scrape.
func (s *Scraper) Scrape(html string) []models.FileDescriptor {
	var descriptors []models.FileDescriptor
	for _, row := range rowPattern.FindAllStringSubmatch(html, -1) {
		filename, modified, href := row[1], row[2], row[3]

		if !strings.Contains(filename, reportSuffixMarker) || strings.Contains(filename, bountyMarker) {
			continue
		}

		lastModified, err := normalizeListingTime(modified)
		if err != nil {
			s.logger.ErrorWithFields("skipping row with unparseable modification time", map[string]interface{}{
				"filename": filename,
				"modified": modified,
				"error":    err.Error(),
			})
			continue
		}

		reportType, err := ExtractReportType(filename)
		if err != nil {
			s.logger.ErrorWithFields("failed to classify report file", map[string]interface{}{
				"filename": filename,
				"error":    err.Error(),
			})
		}

		descriptors = append(descriptors, models.FileDescriptor{
			Filename:     filename,
			LastModified: lastModified,
			Download:     strings.Trim(href, `"'`),
			ReportType:   reportType,
		})
	}
	return descriptors
}

// normalizeListingTime reformats the locale-formatted listing timestamp into
// the canonical form. The appended "UTC" marker doubles the designator when
// the source timezone field is itself UTC; the replication-state parser
// tolerates that form, so it is preserved as-is.
func normalizeListingTime(value string) (string, error) {
	t, err := time.Parse(models.ListingTimeLayout, value)
	if err != nil {
		return "", err
	}
	return t.Format(models.ReportTimeLayout) + "UTC", nil
}

// ExtractReportType derives the report classification from a filename. The
// kind segment is title-cased into a PascalCase identifier; the regional
// account's earnings and orders feeds get a "Subtags" suffix.
func ExtractReportType(filename string) (models.ReportType, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", fmt.Errorf("filename %q does not match report pattern", filename)
	}

	kind := strings.ReplaceAll(m[1], "-", " ")
	kind = cases.Title(language.English).String(kind)
	reportType := models.ReportType(strings.ReplaceAll(kind, " ", ""))

	if strings.Contains(filename, regionalAccountMarker) {
		switch reportType {
		case models.ReportTypeEarnings:
			reportType = models.ReportTypeEarningsSubtags
		case models.ReportTypeOrders:
			reportType = models.ReportTypeOrdersSubtags
		}
	}

	return reportType, nil
}
