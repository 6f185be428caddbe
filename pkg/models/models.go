package models

// ReportType identifies one affiliate-performance report category.
type ReportType string

const (
	ReportTypeList            ReportType = "ReportList"
	ReportTypeEarnings        ReportType = "EarningsReport"
	ReportTypeOrders          ReportType = "OrdersReport"
	ReportTypeEarningsSubtags ReportType = "EarningsReportSubtags"
	ReportTypeOrdersSubtags   ReportType = "OrdersReportSubtags"
	ReportTypeTracking        ReportType = "TrackingReport"
	ReportTypeUtmSource       ReportType = "UtmSourceReport"
)

// ReportTypes lists every downloadable report category (the listing itself
// excluded).
var ReportTypes = []ReportType{
	ReportTypeEarnings,
	ReportTypeOrders,
	ReportTypeEarningsSubtags,
	ReportTypeOrdersSubtags,
	ReportTypeTracking,
	ReportTypeUtmSource,
}

// FileDescriptor identifies one discoverable report file from the portal
// directory listing. Immutable once constructed.
type FileDescriptor struct {
	Filename     string     `json:"filename"`
	LastModified string     `json:"last_modified"`
	Download     string     `json:"download"`
	ReportType   ReportType `json:"report_type"`
}

// Record is a normalized field-name-to-value mapping emitted for downstream
// ingestion. The provenance triple (filename, report_type, last_modified) is
// merged in before emission.
type Record map[string]string

// WithProvenance returns a copy of the record with the descriptor's provenance
// fields merged in, overwriting any same-named parsed field.
func (r Record) WithProvenance(desc FileDescriptor) Record {
	out := make(Record, len(r)+3)
	for k, v := range r {
		out[k] = v
	}
	out["filename"] = desc.Filename
	out["report_type"] = string(desc.ReportType)
	out["last_modified"] = desc.LastModified
	return out
}
