// Package chains provides the read-only RPC client used for contract calls on the
// configured chain.
package chains

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Config struct {
	Name    string
	ChainID uint64
	RPCURL  string
}

// Client is what the service needs from *ethclient.Client.
type Client interface {
	bind.ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

type DialFunc func(ctx context.Context, url string) (Client, error)

func dialEthClient(ctx context.Context, url string) (Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Service dials the chain on first use and reuses the connection afterwards.
type Service struct {
	cfg  Config
	dial DialFunc

	mu     sync.Mutex
	client Client
}

func NewService(cfg Config) (*Service, error) {
	return NewServiceWithDialer(cfg, dialEthClient)
}

func NewServiceWithDialer(cfg Config, dial DialFunc) (*Service, error) {
	cfg.RPCURL = strings.TrimSpace(cfg.RPCURL)
	if cfg.RPCURL == "" {
		return nil, errors.New("chains: rpc url is empty")
	}
	if cfg.ChainID == 0 {
		return nil, errors.New("chains: chain id is 0")
	}
	if dial == nil {
		return nil, errors.New("chains: nil dialer")
	}
	return &Service{cfg: cfg, dial: dial}, nil
}

func (s *Service) Config() Config {
	return s.cfg
}

// Caller returns a contract caller bound to the configured chain.
func (s *Service) Caller(ctx context.Context) (bind.ContractCaller, error) {
	return s.connect(ctx)
}

func (s *Service) connect(ctx context.Context) (Client, error) {
	s.mu.Lock()
	if existing := s.client; existing != nil {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	// dial outside the lock
	dialed, err := s.dial(ctx, s.cfg.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "chains: dial %s (%s)", s.cfg.Name, s.cfg.RPCURL)
	}

	remote, err := dialed.ChainID(ctx)
	if err != nil {
		dialed.Close()
		return nil, errors.Wrapf(err, "chains: read chain id from %s", s.cfg.RPCURL)
	}
	if !remote.IsUint64() || remote.Uint64() != s.cfg.ChainID {
		dialed.Close()
		return nil, errors.Newf("chains: %s reports chain id %s, want %d", s.cfg.RPCURL, remote, s.cfg.ChainID)
	}

	s.mu.Lock()
	if existing := s.client; existing != nil {
		s.mu.Unlock()
		dialed.Close()
		return existing, nil
	}
	s.client = dialed
	s.mu.Unlock()

	log.Info("chain client connected", "chain", s.cfg.Name, "chain_id", s.cfg.ChainID)
	return dialed, nil
}

// Close drops the cached client. The service can dial again afterwards.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	return nil
}
