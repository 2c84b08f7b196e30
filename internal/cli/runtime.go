package cli

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/cmd/haki-analytics/config"
	"github.com/hakichain/haki-analytics/internal/analytics"
	"github.com/hakichain/haki-analytics/internal/assets"
	"github.com/hakichain/haki-analytics/internal/chains"
	"github.com/hakichain/haki-analytics/internal/hakilens"
	"github.com/hakichain/haki-analytics/internal/metrics"
	"github.com/hakichain/haki-analytics/internal/registry"
	"github.com/hakichain/haki-analytics/internal/wallet"
)

// runtime is every long-lived component built from one config.
type runtime struct {
	cfg       *config.Config
	metrics   *metrics.Metrics
	provider  *wallet.RPCProvider
	connector *wallet.Connector
	chain     *chains.Service
	registry  *registry.Client
	dash      *analytics.Dashboard
	cases     *hakilens.Client
}

// newRuntime wires the dashboard. With watch set the wallet is that fixed address;
// otherwise the configured wallet endpoint is dialled, and a missing or unreachable
// endpoint leaves the connector without a provider.
func newRuntime(ctx context.Context, cfg *config.Config, watch string) (*runtime, error) {
	rt := &runtime{
		cfg:     cfg,
		metrics: metrics.New(),
	}

	chainParams := chainParams(cfg)

	var provider wallet.Provider
	switch watch = strings.TrimSpace(watch); {
	case watch != "":
		wp, err := wallet.NewWatchProvider(watch, cfg.Chain.ChainID)
		if err != nil {
			return nil, err
		}
		provider = wp
	case cfg.Wallet.ProviderURL != "":
		p, err := wallet.DialRPCProvider(ctx, cfg.Wallet.ProviderURL, cfg.Wallet.PollInterval)
		if err != nil {
			log.Warn("wallet provider unavailable", "url", cfg.Wallet.ProviderURL, "error", err)
			break
		}
		rt.provider = p
		provider = p
	}
	rt.connector = wallet.NewConnector(provider, chainParams)

	chain, err := chains.NewService(chains.Config{
		Name:    cfg.Chain.Name,
		ChainID: cfg.Chain.ChainID,
		RPCURL:  cfg.Chain.RPCURL,
	})
	if err != nil {
		rt.Close()
		return nil, errors.Wrap(err, "chain service")
	}
	rt.chain = chain

	rt.registry = registry.NewClient(cfg.Registry.BaseURL, cfg.Registry.Timeout)

	loc, err := cfg.Location()
	if err != nil {
		rt.Close()
		return nil, err
	}

	dash, err := analytics.NewDashboard(
		rt.connector,
		assets.NewFetcher(assets.NewContractBinder(chain)),
		rt.registry,
		analytics.Config{
			OrgContract:  cfg.OrganizationContract(),
			UserContract: cfg.UserContract(),
			Formatter:    analytics.Formatter{Location: loc, Layout: cfg.Display.DateLayout},
			Metrics:      rt.metrics,
		},
	)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.dash = dash

	rt.cases = newCasesClient(cfg)
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.dash != nil {
		rt.dash.Stop()
	}
	if rt.provider != nil {
		rt.provider.Close()
	}
	if rt.chain != nil {
		if err := rt.chain.Close(); err != nil {
			log.Warn("chain client close failed", "error", err)
		}
	}
}

func chainParams(cfg *config.Config) wallet.ChainParams {
	return wallet.ChainParams{
		ChainID: cfg.Chain.ChainID,
		Name:    cfg.Chain.Name,
		RPCURL:  cfg.Chain.RPCURL,
		Currency: wallet.NativeCurrency{
			Name:     cfg.Chain.CurrencyName,
			Symbol:   cfg.Chain.CurrencySymbol,
			Decimals: cfg.Chain.CurrencyDecimals,
		},
	}
}

// newCasesClient returns nil when no HakiLens base URL is configured.
func newCasesClient(cfg *config.Config) *hakilens.Client {
	if cfg.HakiLens.BaseURL == "" {
		return nil
	}
	return hakilens.NewClient(cfg.HakiLens.BaseURL, cfg.HakiLens.Timeout)
}
