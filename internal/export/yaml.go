package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hakichain/haki-analytics/internal/analytics"
)

// YAMLExporter exports views in YAML format
type YAMLExporter struct{}

func (e *YAMLExporter) Export(view analytics.View, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	enc.SetIndent(2)

	return enc.Encode(view)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
