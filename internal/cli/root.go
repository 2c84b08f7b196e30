// Package cli is the haki-analytics command line: the dashboard API server plus one-shot
// commands for the chain analytics view and the case research service.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hakichain/haki-analytics/cmd/haki-analytics/config"
	"github.com/hakichain/haki-analytics/internal/constants"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type loaderFunc func(paths []string) (*config.Config, error)

type app struct {
	info      BuildInfo
	load      loaderFunc
	configDir string
	cfg       *config.Config
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, info BuildInfo, args []string) error {
	root := NewRootCmd(info)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func NewRootCmd(info BuildInfo) *cobra.Command {
	return newRootCmd(info, config.LoadFrom)
}

func newRootCmd(info BuildInfo, load loaderFunc) *cobra.Command {
	a := &app{info: info, load: load}

	root := &cobra.Command{
		Use:   constants.AppName,
		Short: "Chain analytics and case research for HakiChain",
		Long: `haki-analytics reads the Story IP registry contracts for a wallet, merges them with
the off-chain ICP metadata registry, and talks to the HakiLens case research service.

Quick Start:
  haki-analytics serve                          # dashboard API on 127.0.0.1:6140
  haki-analytics assets --address 0x...         # IP assets and registry records
  haki-analytics assets --format md --out report
  haki-analytics cases list --search "land"`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Directory searched first for config.yaml")

	root.AddCommand(
		newServeCmd(a),
		newAssetsCmd(a),
		newRegistryCmd(a),
		newCasesCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	paths, err := config.SearchPaths()
	if err != nil {
		return fmt.Errorf("config paths: %w", err)
	}
	if dir := strings.TrimSpace(a.configDir); dir != "" {
		paths = append([]string{filepath.Clean(dir)}, paths...)
	}
	cfg, err := a.load(paths)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}
