package assets

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hakichain/haki-analytics/internal/contracts/bindings/go/storyipregister"
)

// AssetReader is the read surface of a register contract.
type AssetReader interface {
	AssetsByOwner(ctx context.Context, owner common.Address) ([]*big.Int, error)
	AssetByID(ctx context.Context, id *big.Int) (storyipregister.StoryIPRegisterAsset, error)
}

// Binder yields a reader for the register deployed at contract.
type Binder interface {
	Bind(ctx context.Context, contract common.Address) (AssetReader, error)
}

// CallerSource hands out a contract caller for the required chain (see chains.Service).
type CallerSource interface {
	Caller(ctx context.Context) (bind.ContractCaller, error)
}

// ContractBinder binds the generated StoryIPRegister caller on top of a CallerSource.
type ContractBinder struct {
	source CallerSource
}

func NewContractBinder(source CallerSource) *ContractBinder {
	return &ContractBinder{source: source}
}

func (b *ContractBinder) Bind(ctx context.Context, contract common.Address) (AssetReader, error) {
	if b == nil || b.source == nil {
		return nil, errors.New("assets: no chain caller configured")
	}

	caller, err := b.source.Caller(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := storyipregister.NewStoryIPRegisterCaller(contract, caller)
	if err != nil {
		return nil, errors.Wrap(err, "storyipregister bind")
	}
	return &bindingReader{reg: reg}, nil
}

type bindingReader struct {
	reg *storyipregister.StoryIPRegisterCaller
}

func (r *bindingReader) AssetsByOwner(ctx context.Context, owner common.Address) ([]*big.Int, error) {
	return r.reg.GetAssetsByOwner(&bind.CallOpts{Context: ctx}, owner)
}

func (r *bindingReader) AssetByID(ctx context.Context, id *big.Int) (storyipregister.StoryIPRegisterAsset, error) {
	return r.reg.GetAsset(&bind.CallOpts{Context: ctx}, id)
}
