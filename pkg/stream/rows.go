package stream

import (
	"iter"
	"strings"

	"assocfeed/pkg/models"
)

// KeyFormatter normalizes a header field name into a record key.
type KeyFormatter func(string) string

// FormatKey is the default key normalization: lowercase with spaces replaced
// by underscores.
func FormatKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, " ", "_"))
}

// FormatSubtagKey additionally collapses the "Sub Tag" column prefix used by
// subtag report variants into a single "subtag" token before the generic
// normalization.
func FormatSubtagKey(key string) string {
	return FormatKey(strings.ReplaceAll(key, "Sub Tag", "subtag"))
}

// ParseRows converts a line sequence into field-name-to-value records. Line 0
// is the report title and is discarded, line 1 is the tab-delimited header
// row, every later line is a data row zipped positionally against the header.
// Pairing stops at the shorter side; misaligned columns lose fields rather
// than failing the file.
func ParseRows(lines iter.Seq2[string, error], format KeyFormatter) iter.Seq2[models.Record, error] {
	if format == nil {
		format = FormatKey
	}
	return func(yield func(models.Record, error) bool) {
		var header []string
		index := -1
		for line, err := range lines {
			if err != nil {
				yield(nil, err)
				return
			}
			index++
			switch {
			case index == 0:
				// title line
			case index == 1:
				for _, name := range strings.Split(line, "\t") {
					header = append(header, format(name))
				}
			default:
				values := strings.Split(line, "\t")
				row := make(models.Record, len(header))
				for i, name := range header {
					if i >= len(values) {
						break
					}
					row[name] = normalizeValue(values[i])
				}
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

// normalizeValue strips the literal doubled double-quote artifact the portal
// encoder leaves in field values.
func normalizeValue(value string) string {
	return strings.ReplaceAll(value, `""`, "")
}
