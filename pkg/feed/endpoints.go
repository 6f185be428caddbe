package feed

import "net/url"

const (
	listReportsPath = "/datafeed/listReports"
	getReportPath   = "/datafeed/getReport"
)

// ListReportsURL returns the directory-listing endpoint.
func ListReportsURL(baseURL string) string {
	return baseURL + listReportsPath
}

// GetReportURL returns the download endpoint for a report file.
func GetReportURL(baseURL, filename string) string {
	return baseURL + getReportPath + "?filename=" + url.QueryEscape(filename)
}
