package sync

import (
	"fmt"

	"assocfeed/pkg/models"
	"assocfeed/pkg/stream"
)

// Consumer is one registered downstream report stream: its report type, the
// key normalization its schema variant needs, and whether it was selected
// for this run.
type Consumer struct {
	Type      models.ReportType
	KeyFormat stream.KeyFormatter
	Selected  bool
}

// Registry maps report types to their consumers. It is resolved once at
// startup so dispatch never depends on ad-hoc string comparison.
type Registry map[models.ReportType]*Consumer

// NewRegistry builds the closed set of report consumers. selected narrows
// the run to the named streams; empty means every stream is selected.
// Unknown stream names are an error.
func NewRegistry(selected []string) (Registry, error) {
	registry := Registry{
		models.ReportTypeList:            {Type: models.ReportTypeList, KeyFormat: stream.FormatKey},
		models.ReportTypeEarnings:        {Type: models.ReportTypeEarnings, KeyFormat: stream.FormatKey},
		models.ReportTypeOrders:          {Type: models.ReportTypeOrders, KeyFormat: stream.FormatKey},
		models.ReportTypeEarningsSubtags: {Type: models.ReportTypeEarningsSubtags, KeyFormat: stream.FormatSubtagKey},
		models.ReportTypeOrdersSubtags:   {Type: models.ReportTypeOrdersSubtags, KeyFormat: stream.FormatSubtagKey},
		models.ReportTypeTracking:        {Type: models.ReportTypeTracking, KeyFormat: stream.FormatKey},
		models.ReportTypeUtmSource:       {Type: models.ReportTypeUtmSource, KeyFormat: stream.FormatKey},
	}

	if len(selected) == 0 {
		for _, consumer := range registry {
			consumer.Selected = true
		}
		return registry, nil
	}

	// The listing stream always runs; it feeds every child stream.
	registry[models.ReportTypeList].Selected = true

	for _, name := range selected {
		consumer, ok := registry[models.ReportType(name)]
		if !ok {
			return nil, fmt.Errorf("unknown report stream %q", name)
		}
		consumer.Selected = true
	}

	return registry, nil
}

// SelectedTypes returns the report types selected for this run, the listing
// stream excluded.
func (r Registry) SelectedTypes() []models.ReportType {
	var out []models.ReportType
	for _, rt := range models.ReportTypes {
		if consumer, ok := r[rt]; ok && consumer.Selected {
			out = append(out, rt)
		}
	}
	return out
}
