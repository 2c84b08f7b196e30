package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hakichain/haki-analytics/internal/analytics"
)

// MarkdownExporter exports views as Markdown tables, one per section
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(view analytics.View, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Chain Analytics\n\n"); err != nil {
		return err
	}

	wallet := view.Wallet
	if wallet == "" {
		wallet = "not connected"
	}
	fmt.Fprintf(w, "**Wallet:** %s\n\n", mdCell(wallet))
	if view.Query != "" {
		fmt.Fprintf(w, "**Filter:** `%s`\n\n", view.Query)
	}
	if view.WalletError != "" {
		fmt.Fprintf(w, "> %s\n\n", view.WalletError)
	}

	if err := writeAssetSection(w, view.Organization); err != nil {
		return err
	}
	if err := writeAssetSection(w, view.User); err != nil {
		return err
	}
	return writeRecordSection(w, view.Records)
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func writeAssetSection(w io.Writer, s analytics.Section[analytics.AssetRow]) error {
	fmt.Fprintf(w, "## %s\n\n", s.Title)
	if s.Error != "" {
		fmt.Fprintf(w, "> %s\n\n", s.Error)
	}
	if len(s.Rows) == 0 {
		_, err := fmt.Fprintf(w, "_%s_\n\n", s.Empty)
		return err
	}

	fmt.Fprintln(w, "| ID | Title | Content Hash | Registered |")
	fmt.Fprintln(w, "|---:|-------|--------------|------------|")
	for _, r := range s.Rows {
		fmt.Fprintf(w, "| %d | %s | `%s` | %s |\n", r.ID, mdCell(r.Title), mdCell(r.Hash), r.Registered)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeRecordSection(w io.Writer, s analytics.Section[analytics.RecordRow]) error {
	fmt.Fprintf(w, "## %s\n\n", s.Title)
	if s.Error != "" {
		fmt.Fprintf(w, "> %s\n\n", s.Error)
	}
	if len(s.Rows) == 0 {
		_, err := fmt.Fprintf(w, "_%s_\n\n", s.Empty)
		return err
	}

	fmt.Fprintln(w, "| ID | Metadata Hash | Owner | Registered At |")
	fmt.Fprintln(w, "|---:|---------------|-------|---------------|")
	for _, r := range s.Rows {
		fmt.Fprintf(w, "| %d | %s | %s | %s |\n", r.ID, mdCell(r.MetadataHash), mdCell(r.Owner), r.RegisteredAt)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// mdCell keeps a value on one table row.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
