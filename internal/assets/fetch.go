// Package assets reads the assets a wallet owns on a StoryIPRegister contract.
package assets

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/hakichain/haki-analytics/internal/contracts/bindings/go/storyipregister"
	"github.com/hakichain/haki-analytics/internal/shared"
)

type Fetcher struct {
	binder Binder
}

func NewFetcher(binder Binder) *Fetcher {
	return &Fetcher{binder: binder}
}

// FetchAssets returns the assets wallet owns on contract, newest id first.
// An empty wallet is a no-op: no calls are made and the result is nil.
// Every failure is marked shared.ErrContractCallFailed and no partial list is returned.
func (f *Fetcher) FetchAssets(ctx context.Context, contract common.Address, wallet string) ([]ChainAsset, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		log.Info("asset fetch bypassed, no wallet", "contract", contract.Hex())
		return nil, nil
	}

	fetchID := uuid.NewString()
	log.Info("asset fetch started", "fetch_id", fetchID, "contract", contract.Hex(), "wallet", wallet)

	out, err := f.fetch(ctx, contract, wallet, fetchID)
	if err != nil {
		log.Error("asset fetch failed", "fetch_id", fetchID, "contract", contract.Hex(), "error", err)
		return nil, err
	}

	log.Info("asset fetch finished", "fetch_id", fetchID, "contract", contract.Hex(), "count", len(out))
	return out, nil
}

func (f *Fetcher) fetch(ctx context.Context, contract common.Address, wallet, fetchID string) ([]ChainAsset, error) {
	if !common.IsHexAddress(wallet) {
		return nil, errors.Mark(errors.Newf("assets: invalid wallet address %q", wallet), shared.ErrContractCallFailed)
	}
	if f.binder == nil {
		return nil, errors.Mark(errors.New("assets: no binder"), shared.ErrContractCallFailed)
	}

	reader, err := f.binder.Bind(ctx, contract)
	if err != nil {
		return nil, shared.Mark(err, shared.ErrContractCallFailed, "assets: bind "+contract.Hex())
	}

	ids, err := reader.AssetsByOwner(ctx, common.HexToAddress(wallet))
	if err != nil {
		return nil, shared.Mark(err, shared.ErrContractCallFailed, "assets: getAssetsByOwner")
	}
	log.Info("asset ids returned", "fetch_id", fetchID, "contract", contract.Hex(), "ids", idStrings(ids))

	// one getAsset call per id, in order
	out := make([]ChainAsset, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			return nil, errors.Mark(errors.New("assets: nil asset id"), shared.ErrContractCallFailed)
		}
		raw, err := reader.AssetByID(ctx, id)
		if err != nil {
			return nil, shared.Mark(err, shared.ErrContractCallFailed, "assets: getAsset "+id.String())
		}
		asset, err := toChainAsset(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}

	reverse(out)
	return out, nil
}

func toChainAsset(raw storyipregister.StoryIPRegisterAsset) (ChainAsset, error) {
	if raw.Id == nil || !raw.Id.IsUint64() {
		return ChainAsset{}, errors.Mark(errors.Newf("assets: id %v out of range", raw.Id), shared.ErrContractCallFailed)
	}

	var ts int64
	if raw.Timestamp != nil {
		if !raw.Timestamp.IsInt64() {
			return ChainAsset{}, errors.Mark(errors.Newf("assets: timestamp %s out of range", raw.Timestamp), shared.ErrContractCallFailed)
		}
		ts = raw.Timestamp.Int64()
	}

	return ChainAsset{
		ID:           raw.Id.Uint64(),
		Title:        raw.Title,
		ContentHash:  raw.ContentHash,
		MetadataJSON: raw.MetadataJSON,
		Owner:        raw.Owner.Hex(),
		Timestamp:    ts,
	}, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func idStrings(ids []*big.Int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
