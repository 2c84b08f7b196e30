package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/quantumauth-io/quantum-go-utils/retry"

	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/shared"
)

const defaultPollInterval = 2 * time.Second

// rpcCaller is the part of *rpc.Client the provider uses.
type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// RPCProvider reaches a wallet over Ethereum JSON-RPC (a local wallet agent or an
// EIP-1193 bridge). JSON-RPC has no push channel for accountsChanged, so account
// changes are detected by polling eth_accounts.
type RPCProvider struct {
	client   rpcCaller
	interval time.Duration

	mu       sync.Mutex
	handlers []func([]string)
	last     []string
	seeded   bool
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// DialRPCProvider connects to the wallet endpoint at url.
// An empty url means no wallet is configured.
func DialRPCProvider(ctx context.Context, url string, pollInterval time.Duration) (*RPCProvider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.Mark(errors.New("no wallet provider url configured"), shared.ErrProviderUnavailable)
	}

	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, shared.Mark(err, shared.ErrProviderUnavailable, "dial wallet provider "+url)
	}
	return newRPCProvider(client, pollInterval), nil
}

func newRPCProvider(client rpcCaller, pollInterval time.Duration) *RPCProvider {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &RPCProvider{
		client:   client,
		interval: pollInterval,
	}
}

func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, classifyRPCError(method, err)
	}

	if method == MethodAccounts || method == MethodRequestAccounts {
		var accounts []string
		if err := json.Unmarshal(raw, &accounts); err == nil {
			p.observe(accounts, false)
		}
	}
	return raw, nil
}

// OnAccountsChanged registers handler for the lifetime of the provider.
// The first registration starts the poller.
func (p *RPCProvider) OnAccountsChanged(handler func(accounts []string)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers = append(p.handlers, handler)
	if p.started {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	go p.pollAccounts(ctx)
}

// Close stops the poller and the underlying client.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	p.client.Close()
}

func (p *RPCProvider) pollAccounts(ctx context.Context) {
	defer close(p.done)

	cfg := retry.DefaultConfig()
	cfg.MaxDelayBeforeRetrying = p.interval
	cfg.InitialDelayBeforeRetrying = p.interval / 10

	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	polls := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("wallet account poller exiting", "polls", polls)
			return
		case <-timer.C:
			_, _ = retry.Retry(ctx, cfg,
				func(ctx context.Context) ([]interface{}, error) {
					polls++
					return nil, p.checkAccounts(ctx)
				},
				nil, // always retry
				"poll wallet accounts")
			timer.Reset(p.interval)
		}
	}
}

func (p *RPCProvider) checkAccounts(ctx context.Context) error {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, MethodAccounts); err != nil {
		return classifyRPCError(MethodAccounts, err)
	}
	p.observe(accounts, true)
	return nil
}

// observe records the latest account list. With emit set, handlers are called when the
// list differs from the previous observation. The first observation only seeds.
func (p *RPCProvider) observe(accounts []string, emit bool) {
	norm := make([]string, 0, len(accounts))
	for _, a := range accounts {
		norm = append(norm, strings.ToLower(strings.TrimSpace(a)))
	}

	p.mu.Lock()
	changed := p.seeded && !equalAccounts(p.last, norm)
	p.last = norm
	p.seeded = true
	handlers := append([]func([]string){}, p.handlers...)
	p.mu.Unlock()

	if !emit || !changed {
		return
	}
	log.Info("wallet accounts changed", "count", len(norm))
	for _, h := range handlers {
		h(append([]string(nil), norm...))
	}
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// classifyRPCError maps JSON-RPC failures onto the error taxonomy: EIP-1193 code 4001 is a
// user rejection, any other server-side error is passed through, and transport failures
// mean the provider cannot be reached.
func classifyRPCError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.ErrorCode() == constants.UserRejectedCode {
			return shared.Mark(err, shared.ErrUserRejected, method)
		}
		return errors.Wrapf(err, "%s", method)
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return shared.Mark(err, shared.ErrProviderUnavailable, method)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, "%s", method)
	}
	return shared.Mark(err, shared.ErrProviderUnavailable, method)
}
