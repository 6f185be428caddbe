package models

import (
	"fmt"
	"time"
)

// Time layouts used by the portal and the replication state.
const (
	// ListingTimeLayout is the locale-formatted timestamp in the directory
	// listing, e.g. "Mon Jan 02 03:04:05 UTC 2023".
	ListingTimeLayout = "Mon Jan 02 15:04:05 MST 2006"

	// ReportTimeLayout is the canonical last_modified form carried on
	// descriptors and records.
	ReportTimeLayout = "2006-01-02 15:04:05 MST"

	// WatermarkFallbackLayout is the alternate form accepted when parsing a
	// persisted watermark.
	WatermarkFallbackLayout = "2006-01-02T15:04:05Z"

	// doubledUTCLayout tolerates the doubled timezone designator produced by
	// listing normalization when the source timezone is itself UTC. The
	// trailing "UTCUTC" is matched as literal text.
	doubledUTCLayout = "2006-01-02 15:04:05 UTCUTC"
)

// ParseReportTime parses a last_modified or watermark value, accepting the
// canonical layout, the doubled-UTC variant, and the fallback layout in that
// order. Failure of all three is fatal for the caller's descriptor.
func ParseReportTime(value string) (time.Time, error) {
	layouts := []string{ReportTimeLayout, doubledUTCLayout, WatermarkFallbackLayout}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unparseable report timestamp %q: %w", value, lastErr)
}
