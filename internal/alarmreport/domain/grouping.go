package report

import (
	"errors"
	"strings"
)

// DefaultGroupDelimiter separates the device code from the descriptive
// suffix in tele-object labels, e.g. "TR-001 - Tracker position".
const DefaultGroupDelimiter = " - "

// KeyExtractor derives a stable group key from a descriptive label.
type KeyExtractor struct {
	delimiter string
}

// NewKeyExtractor constructs a key extractor for a fixed delimiter.
func NewKeyExtractor(delimiter string) (KeyExtractor, error) {
	if delimiter == "" {
		return KeyExtractor{}, errors.New("report: empty group delimiter")
	}
	return KeyExtractor{delimiter: delimiter}, nil
}

// ExtractKey returns the trimmed segment before the delimiter, or the
// whole trimmed label when the delimiter is absent. Deterministic and
// total: the same label always maps to the same key.
func (e KeyExtractor) ExtractKey(label string) string {
	delimiter := e.delimiter
	if delimiter == "" {
		delimiter = DefaultGroupDelimiter
	}
	head, _, _ := strings.Cut(label, delimiter)
	return strings.TrimSpace(head)
}
