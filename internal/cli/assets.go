package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/export"
	"github.com/hakichain/haki-analytics/internal/render"
	"github.com/hakichain/haki-analytics/internal/shared"
)

const formatTable = "table"

func newAssetsCmd(a *app) *cobra.Command {
	var (
		query   string
		format  string
		out     string
		address string
		connect bool
	)

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Show organization and user IP assets with the ICP registry",
		Long: `Load both Story IP registry collections for the wallet and the ICP metadata
registry, then print the three tables filtered by --query.

The wallet is --address when given, otherwise the account already authorized on the
configured wallet endpoint (--connect asks the wallet for access instead).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var exporter export.Exporter
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatTable {
				e, err := export.NewExporter(format)
				if err != nil {
					return err
				}
				exporter = e
			} else if out != "" {
				return errors.New("--out needs --format json, yaml or md")
			}

			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, address)
			if err != nil {
				return err
			}
			defer rt.Close()

			adoptSession(ctx, rt, connect)

			var g errgroup.Group
			g.Go(func() error { return rt.dash.RefreshRegistry(ctx) })
			g.Go(func() error { return rt.dash.RefreshAssets(ctx) })
			if err := g.Wait(); err != nil {
				log.Warn("refresh finished with errors", "error", err)
			}

			return writeView(cmd, rt.dash.View(query), exporter, out)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive filter on title, content hash, metadata hash and owner")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, yaml, md")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the export to this file instead of stdout")
	cmd.Flags().StringVar(&address, "address", "", "Wallet address to read assets for")
	cmd.Flags().BoolVar(&connect, "connect", false, "Request account access from the wallet endpoint")
	return cmd
}

// adoptSession resolves the wallet session before a one-shot refresh. Failures end up in
// the view; a missing provider is the normal state without a wallet and is not logged.
func adoptSession(ctx context.Context, rt *runtime, connect bool) {
	if connect {
		if _, err := rt.dash.Connect(ctx); err != nil {
			log.Warn("wallet connect failed", "error", err)
		}
		return
	}
	if _, err := rt.connector.Detect(ctx); err != nil && !errors.Is(err, shared.ErrProviderUnavailable) {
		log.Warn("wallet detection failed", "error", err)
	}
}

func writeView(cmd *cobra.Command, view analytics.View, exporter export.Exporter, out string) error {
	if exporter == nil {
		render.NewPrinter(cmd.OutOrStdout()).View(view)
		return nil
	}
	if out == "" {
		return exporter.Export(view, cmd.OutOrStdout())
	}

	path, err := export.WriteFile(exporter, view, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
	return nil
}
