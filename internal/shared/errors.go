// Package shared holds the error taxonomy used across fetchers, the connector and the view.
package shared

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrProviderUnavailable is returned when no wallet provider is reachable.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")

	// ErrUserRejected is returned when the wallet user declines a request.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrContractCallFailed marks any failed view call or revert.
	ErrContractCallFailed = errors.New("contract call failed")

	// ErrRegistryUnavailable marks transport failures and non-2xx answers from the off-chain registry.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrParseFailure marks malformed numbers, dates and bodies.
	ErrParseFailure = errors.New("parse failure")
)

// User-facing messages rendered at the view boundary.
const (
	MsgProviderUnavailable = "Wallet provider not available"
	MsgConnectFailed       = "Failed to connect wallet"
	MsgUserRejected        = "Wallet request was rejected"
	MsgAssetsFailed        = "Failed to load assets from contract"
	MsgRegistryFailed      = "Failed to fetch ICP records"
)

// Mark wraps err with msg and tags it with kind so errors.Is(err, kind) holds.
func Mark(err error, kind error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), kind)
}

// UserMessage maps an error from the wallet flow to the inline message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return MsgProviderUnavailable
	case errors.Is(err, ErrUserRejected):
		return MsgUserRejected
	case errors.Is(err, ErrContractCallFailed):
		return MsgAssetsFailed
	case errors.Is(err, ErrRegistryUnavailable), errors.Is(err, ErrParseFailure):
		return MsgRegistryFailed
	default:
		return MsgConnectFailed
	}
}
