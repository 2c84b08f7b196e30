package wallet

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WatchProvider is a read-only provider for a fixed address. It reports that address as
// the only authorized account and is always on the given chain, so a Connector over it
// never prompts and never switches networks.
type WatchProvider struct {
	address string
	chainID uint64
}

func NewWatchProvider(address string, chainID uint64) (*WatchProvider, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return nil, errors.Newf("wallet: invalid watch address %q", address)
	}
	return &WatchProvider{
		address: strings.ToLower(common.HexToAddress(address).Hex()),
		chainID: chainID,
	}, nil
}

func (p *WatchProvider) Request(_ context.Context, method string, _ ...any) (json.RawMessage, error) {
	switch method {
	case MethodChainID:
		return json.Marshal(hexutil.EncodeUint64(p.chainID))
	case MethodAccounts, MethodRequestAccounts:
		return json.Marshal([]string{p.address})
	case MethodAddChain:
		return json.RawMessage("null"), nil
	default:
		return nil, errors.Newf("wallet: %s not supported by watch provider", method)
	}
}

// OnAccountsChanged is a no-op: the watched address never changes.
func (p *WatchProvider) OnAccountsChanged(func(accounts []string)) {}
