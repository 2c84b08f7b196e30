package export

import (
	"encoding/json"
	"io"

	"github.com/hakichain/haki-analytics/internal/analytics"
)

// JSONExporter exports views as indented JSON
type JSONExporter struct{}

func (e *JSONExporter) Export(view analytics.View, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
