package pdfraster

import (
	"fmt"
	"strings"

	"github.com/tsawler/pdfraster/core"
)

// Warning is a problem the reader reported while an operation ran. Most are
// harmless deviations from PDF/raster, such as a catalog with the wrong
// /Type, that did not stop the read.
type Warning struct {
	Level   core.ErrorLevel
	Code    core.ReadErrorCode
	Offset  int64
	Message string
}

func (w Warning) String() string {
	if w.Offset < 0 {
		return fmt.Sprintf("%s: %s", w.Level, w.Message)
	}
	return fmt.Sprintf("%s at offset %d: %s", w.Level, w.Offset, w.Message)
}

// FormatWarnings joins warnings into a single line for logging.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
