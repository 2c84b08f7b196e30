package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/export"
	"github.com/hakichain/haki-analytics/internal/hakilens"
	"github.com/hakichain/haki-analytics/internal/render"
	"github.com/hakichain/haki-analytics/internal/securefile"
)

var errCasesDisabled = errors.New("case research is disabled: set HakiLens.BaseURL")

func newCasesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Search, read and summarize legal cases with HakiLens",
	}
	cmd.AddCommand(
		newCasesListCmd(a),
		newCasesGetCmd(a),
		newCasesDocsCmd(a),
		newCasesSummarizeCmd(a),
		newCasesAskCmd(a),
		newCasesChatCmd(a),
		newCasesSearchCmd(a),
		newCasesScrapeCmd(a),
	)
	return cmd
}

func (a *app) cases() (*hakilens.Client, error) {
	c := newCasesClient(a.cfg)
	if c == nil {
		return nil, errCasesDisabled
	}
	return c, nil
}

func newCasesListCmd(a *app) *cobra.Command {
	var (
		opts   hakilens.ListOptions
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			cases, err := c.ListCases(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), cases)
			}
			render.NewPrinter(cmd.OutOrStdout()).Cases(cases)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Full-text search")
	cmd.Flags().IntVar(&opts.Limit, "limit", hakilens.DefaultListLimit, "Page size")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newCasesGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <case-id>",
		Short: "Show one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			got, err := c.GetCase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), got)
			}
			render.NewPrinter(cmd.OutOrStdout()).Case(*got)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newCasesDocsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs <case-id>",
		Short: "List a case's documents and images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			docs, err := c.CaseDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			images, err := c.CaseImages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string][]hakilens.Attachment{
				"documents": docs,
				"images":    images,
			})
		},
	}
}

func newCasesSummarizeCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summarize <case-id>",
		Short: "Summarize a case with the AI service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			summary, err := c.SummarizeCase(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			title := "Case " + args[0] + " summary"
			if out == "" {
				render.NewPrinter(cmd.OutOrStdout()).Text(title, summary)
				return nil
			}

			path := export.EnsureExtension(out, "md")
			doc := fmt.Sprintf("# %s\n\n%s\n", title, strings.TrimSpace(summary))
			if err := securefile.AtomicWriteFile(path, []byte(doc), constants.FilePerm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "summary written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the summary to this Markdown file")
	return cmd
}

func newCasesAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a legal research question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			answer, err := c.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			render.NewPrinter(cmd.OutOrStdout()).Text("Answer", answer)
			return nil
		},
	}
}

func newCasesChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <case-id> <message...>",
		Short: "Ask a question about one case",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			reply, err := c.ChatWithCase(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			render.NewPrinter(cmd.OutOrStdout()).Text("Case "+args[0], reply)
			return nil
		},
	}
}

func newCasesSearchCmd(a *app) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the case law source and store the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cases()
			if err != nil {
				return err
			}
			raw, err := c.SearchCases(cmd.Context(), strings.Join(args, " "), deep)
			if err != nil {
				return err
			}
			return printRaw(cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Also fetch each result's full case")
	return cmd
}

func newCasesScrapeCmd(a *app) *cobra.Command {
	var (
		deep     bool
		listing  bool
		single   bool
		maxPages int
	)
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a page, a listing or a single case into the research store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listing && single {
				return errors.New("--listing and --case are mutually exclusive")
			}
			c, err := a.cases()
			if err != nil {
				return err
			}

			var raw json.RawMessage
			switch {
			case listing:
				raw, err = c.ScrapeListing(cmd.Context(), args[0], maxPages, deep)
			case single:
				raw, err = c.ScrapeCase(cmd.Context(), args[0], deep)
			default:
				raw, err = c.ScrapeURL(cmd.Context(), args[0], deep)
			}
			if err != nil {
				return err
			}
			return printRaw(cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Follow links to full case pages")
	cmd.Flags().BoolVar(&listing, "listing", false, "Treat the URL as a paginated listing")
	cmd.Flags().BoolVar(&single, "case", false, "Treat the URL as a single case page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Listing pages to follow (0 uses the service default)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRaw(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// not JSON; print as received
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
