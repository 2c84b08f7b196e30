package cli

import (
	"encoding/json"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/hakichain/haki-analytics/internal/render"
)

func newRegistryCmd(a *app) *cobra.Command {
	var (
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "List ICP metadata registry records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, a.cfg, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.dash.RefreshRegistry(ctx); err != nil {
				log.Warn("registry refresh failed", "url", rt.registry.RecordsURL(), "error", err)
			}
			section := rt.dash.View(query).Records

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(section)
			}
			render.NewPrinter(cmd.OutOrStdout()).Records(section)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive filter on metadata hash and owner")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")
	return cmd
}
