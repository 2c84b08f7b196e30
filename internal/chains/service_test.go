package chains

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	chainID *big.Int
	closed  atomic.Bool
}

func (f *fakeClient) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeClient) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeClient) Close() { f.closed.Store(true) }

func aeneid() Config {
	return Config{Name: "Story Aeneid", ChainID: 1315, RPCURL: "https://aeneid.storyrpc.io/"}
}

func TestCallerDialsOnceAndCaches(t *testing.T) {
	var dials atomic.Int32
	client := &fakeClient{chainID: big.NewInt(1315)}
	svc, err := NewServiceWithDialer(aeneid(), func(_ context.Context, url string) (Client, error) {
		dials.Add(1)
		assert.Equal(t, "https://aeneid.storyrpc.io/", url)
		return client, nil
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		caller, err := svc.Caller(context.Background())
		require.NoError(t, err)
		assert.Same(t, client, caller)
	}
	assert.EqualValues(t, 1, dials.Load())

	require.NoError(t, svc.Close())
	assert.True(t, client.closed.Load())

	_, err = svc.Caller(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, dials.Load())
}

func TestCallerRejectsWrongChain(t *testing.T) {
	client := &fakeClient{chainID: big.NewInt(1)}
	svc, err := NewServiceWithDialer(aeneid(), func(context.Context, string) (Client, error) {
		return client, nil
	})
	require.NoError(t, err)

	_, err = svc.Caller(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 1315")
	assert.True(t, client.closed.Load())
}

func TestCallerDialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	svc, err := NewServiceWithDialer(aeneid(), func(context.Context, string) (Client, error) {
		return nil, dialErr
	})
	require.NoError(t, err)

	_, err = svc.Caller(context.Background())
	assert.True(t, errors.Is(err, dialErr))
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(Config{ChainID: 1315})
	assert.Error(t, err)

	_, err = NewService(Config{RPCURL: "http://localhost:8545"})
	assert.Error(t, err)
}

type chainIDService struct{}

func (chainIDService) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(1315)) }

func TestCallerOverInProcRPC(t *testing.T) {
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", chainIDService{}))
	t.Cleanup(srv.Stop)

	svc, err := NewServiceWithDialer(aeneid(), func(context.Context, string) (Client, error) {
		return ethclient.NewClient(rpc.DialInProc(srv)), nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	caller, err := svc.Caller(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, caller)
}
