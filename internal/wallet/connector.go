// Package wallet connects to a user's wallet, keeps it on the required chain and tracks the
// connected account.
package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/internal/shared"
)

// Connector owns the wallet session. The session is the lowercase address of the first
// account the wallet reports, or "" when disconnected.
type Connector struct {
	provider Provider
	chain    ChainParams

	listenOnce sync.Once

	mu          sync.RWMutex
	address     string
	subscribers []func(address string)
}

// NewConnector builds a connector around provider. A nil provider is allowed and makes
// every call fail with shared.ErrProviderUnavailable.
func NewConnector(provider Provider, chain ChainParams) *Connector {
	return &Connector{
		provider: provider,
		chain:    chain,
	}
}

// Connect asks the wallet for account access, switching it to the required chain first.
func (c *Connector) Connect(ctx context.Context) (string, error) {
	if c.provider == nil {
		log.Error("wallet connect failed", "error", "no provider")
		return "", errors.Mark(errors.New("wallet: no provider"), shared.ErrProviderUnavailable)
	}

	if err := c.ensureChain(ctx); err != nil {
		log.Error("wallet connect failed", "step", "chain", "error", err)
		return "", err
	}

	accounts, err := c.requestAccounts(ctx, MethodRequestAccounts)
	if err != nil {
		log.Error("wallet connect failed", "step", "accounts", "error", err)
		return "", err
	}
	if len(accounts) == 0 {
		return "", errors.Mark(errors.New("wallet: no accounts authorized"), shared.ErrUserRejected)
	}

	c.listen()
	addr := c.setAddress(accounts[0])
	log.Info("wallet connected", "address", addr)
	return addr, nil
}

// Detect adopts an account the wallet has already authorized, without prompting.
// It returns "" when the wallet exposes no account.
func (c *Connector) Detect(ctx context.Context) (string, error) {
	if c.provider == nil {
		return "", errors.Mark(errors.New("wallet: no provider"), shared.ErrProviderUnavailable)
	}

	accounts, err := c.requestAccounts(ctx, MethodAccounts)
	if err != nil {
		return "", err
	}

	c.listen()
	if len(accounts) == 0 {
		return "", nil
	}
	addr := c.setAddress(accounts[0])
	log.Info("wallet already authorized", "address", addr)
	return addr, nil
}

// Address returns the current session address ("" when disconnected).
func (c *Connector) Address() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// Subscribe registers fn to be called with the new address on every session change.
func (c *Connector) Subscribe(fn func(address string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Connector) ensureChain(ctx context.Context) error {
	raw, err := c.provider.Request(ctx, MethodChainID)
	if err != nil {
		return err
	}

	var chainHex string
	if err := json.Unmarshal(raw, &chainHex); err != nil {
		return shared.Mark(err, shared.ErrParseFailure, "wallet: decode eth_chainId")
	}
	current, err := hexutil.DecodeUint64(strings.ToLower(strings.TrimSpace(chainHex)))
	if err != nil {
		return shared.Mark(err, shared.ErrParseFailure, "wallet: eth_chainId "+chainHex)
	}
	if current == c.chain.ChainID {
		return nil
	}

	log.Info("wallet on wrong chain, adding network",
		"current", chainHex,
		"required", c.chain.ChainIDHex(),
	)
	if _, err := c.provider.Request(ctx, MethodAddChain, c.chain.AddParameter()); err != nil {
		return err
	}
	return nil
}

func (c *Connector) requestAccounts(ctx context.Context, method string) ([]string, error) {
	raw, err := c.provider.Request(ctx, method)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, shared.Mark(err, shared.ErrParseFailure, "wallet: decode "+method)
	}
	return accounts, nil
}

// listen registers the account change handler once for the connector's lifetime.
func (c *Connector) listen() {
	c.listenOnce.Do(func() {
		c.provider.OnAccountsChanged(c.handleAccountsChanged)
	})
}

func (c *Connector) handleAccountsChanged(accounts []string) {
	next := ""
	if len(accounts) > 0 {
		next = accounts[0]
	}
	addr := c.setAddress(next)
	if addr == "" {
		log.Info("wallet disconnected")
		return
	}
	log.Info("wallet account switched", "address", addr)
}

func (c *Connector) setAddress(raw string) string {
	addr := strings.ToLower(strings.TrimSpace(raw))

	c.mu.Lock()
	if addr == c.address {
		c.mu.Unlock()
		return addr
	}
	c.address = addr
	subs := append([]func(string){}, c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(addr)
	}
	return addr
}
