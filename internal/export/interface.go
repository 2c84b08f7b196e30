// Package export writes a dashboard view to JSON, YAML or Markdown.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/securefile"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(view analytics.View, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}

// EnsureExtension appends ext to name unless name already ends with it.
func EnsureExtension(name, ext string) string {
	ext = "." + strings.TrimPrefix(ext, ".")
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// WriteFile renders view with e and writes it atomically to path (extension added
// when missing). It returns the final path.
func WriteFile(e Exporter, view analytics.View, path string) (string, error) {
	path = EnsureExtension(path, e.Extension())

	var buf strings.Builder
	if err := e.Export(view, &buf); err != nil {
		return "", fmt.Errorf("export %s: %w", e.Extension(), err)
	}
	if err := securefile.AtomicWriteFile(filepath.Clean(path), []byte(buf.String()), constants.FilePerm); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
