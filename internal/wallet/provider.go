package wallet

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hakichain/haki-analytics/internal/constants"
)

// Provider is the wallet capability handed to the Connector.
// It mirrors the EIP-1193 surface: request/response calls plus account change events.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	OnAccountsChanged(handler func(accounts []string))
}

const (
	MethodChainID         = "eth_chainId"
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAddChain        = "wallet_addEthereumChain"
)

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChainParameter is the wallet_addEthereumChain descriptor (EIP-3085).
type AddChainParameter struct {
	ChainID        string         `json:"chainId"`
	ChainName      string         `json:"chainName"`
	RPCURLs        []string       `json:"rpcUrls"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
}

// ChainParams describes the network the wallet must be on before contract reads make sense.
type ChainParams struct {
	ChainID  uint64
	Name     string
	RPCURL   string
	Currency NativeCurrency
}

func DefaultChain() ChainParams {
	return ChainParams{
		ChainID: constants.ChainID,
		Name:    constants.ChainName,
		RPCURL:  constants.ChainRPCURL,
		Currency: NativeCurrency{
			Name:     constants.CurrencyName,
			Symbol:   constants.CurrencySymbol,
			Decimals: constants.CurrencyDec,
		},
	}
}

func (c ChainParams) ChainIDHex() string {
	return hexutil.EncodeUint64(c.ChainID)
}

func (c ChainParams) AddParameter() AddChainParameter {
	return AddChainParameter{
		ChainID:        c.ChainIDHex(),
		ChainName:      c.Name,
		RPCURLs:        []string{strings.TrimSpace(c.RPCURL)},
		NativeCurrency: c.Currency,
	}
}
