package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hakichain/haki-analytics/internal/assets"
	"github.com/hakichain/haki-analytics/internal/collection"
	"github.com/hakichain/haki-analytics/internal/metrics"
	"github.com/hakichain/haki-analytics/internal/registry"
	"github.com/hakichain/haki-analytics/internal/shared"
)

var (
	orgContract  = common.HexToAddress("0x2afce5b30DFD0d53a98e65d23E7D620701023f3C")
	userContract = common.HexToAddress("0x7466cfc967C4FfF0907eD5BEe8DB067459ad25Fc")
)

type fakeSession struct {
	mu          sync.Mutex
	addr        string
	subs        []func(string)
	connectAddr string
	connectErr  error
	detectAddr  string
}

func (s *fakeSession) set(addr string) {
	s.mu.Lock()
	if addr == s.addr {
		s.mu.Unlock()
		return
	}
	s.addr = addr
	subs := append([]func(string){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(addr)
	}
}

func (s *fakeSession) Connect(context.Context) (string, error) {
	if s.connectErr != nil {
		return "", s.connectErr
	}
	s.set(s.connectAddr)
	return s.connectAddr, nil
}

func (s *fakeSession) Detect(context.Context) (string, error) {
	if s.detectAddr != "" {
		s.set(s.detectAddr)
	}
	return s.Address(), nil
}

func (s *fakeSession) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *fakeSession) Subscribe(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

type fakeAssets struct {
	mu       sync.Mutex
	calls    []string
	failFor  map[common.Address]error
	gates    map[string]chan struct{}
	returned atomic.Int32
}

func (f *fakeAssets) FetchAssets(ctx context.Context, contract common.Address, wallet string) ([]assets.ChainAsset, error) {
	defer f.returned.Add(1)

	f.mu.Lock()
	f.calls = append(f.calls, contract.Hex()+"@"+wallet)
	gate := f.gates[wallet]
	err := f.failFor[contract]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	// newest first, as the fetcher returns them
	prefix := "org"
	if contract == userContract {
		prefix = "user"
	}
	return []assets.ChainAsset{
		{ID: 3, Title: prefix + " three " + wallet, ContentHash: "h3", Timestamp: 1_700_000_000},
		{ID: 2, Title: prefix + " two", ContentHash: "h2", Timestamp: 1_700_000_000},
		{ID: 1, Title: prefix + " one", ContentHash: "QmSpecial", Timestamp: 1_700_000_000},
	}, nil
}

func (f *fakeAssets) setFail(contract common.Address, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor == nil {
		f.failFor = map[common.Address]error{}
	}
	f.failFor[contract] = err
}

func (f *fakeAssets) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRecords struct {
	calls   atomic.Int32
	mu      sync.Mutex
	records []registry.Record
	err     error
}

func (f *fakeRecords) FetchRecords(context.Context) ([]registry.Record, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, f.err
}

func strPtr(s string) *string { return &s }

func newDashboard(t *testing.T, s Session, a AssetSource, r RecordSource) *Dashboard {
	t.Helper()
	d, err := NewDashboard(s, a, r, Config{
		OrgContract:  orgContract,
		UserContract: userContract,
		Formatter:    Formatter{Location: time.UTC, Layout: "2006-01-02"},
		Metrics:      metrics.New(),
	})
	require.NoError(t, err)
	return d
}

func rowIDs(rows []AssetRow) []uint64 {
	out := make([]uint64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestRefreshAssetsShowsNewestFirst(t *testing.T) {
	session := &fakeSession{addr: "0xabc"}
	d := newDashboard(t, session, &fakeAssets{}, &fakeRecords{})

	require.NoError(t, d.RefreshAssets(context.Background()))

	v := d.View("")
	assert.True(t, v.Connected)
	assert.Equal(t, "0xabc", v.Wallet)
	assert.Equal(t, []uint64{3, 2, 1}, rowIDs(v.Organization.Rows))
	assert.Equal(t, []uint64{3, 2, 1}, rowIDs(v.User.Rows))
	assert.Equal(t, "O", v.Organization.Rows[0].Initial)
	assert.Equal(t, "2023-11-14", v.Organization.Rows[0].Registered)
	assert.Equal(t, collection.Loaded, v.Organization.State)
	assert.Empty(t, v.AssetError)
	assert.False(t, v.Loading)
}

func TestRefreshAssetsWithoutSessionMakesNoCalls(t *testing.T) {
	fa := &fakeAssets{}
	d := newDashboard(t, &fakeSession{}, fa, &fakeRecords{})

	require.NoError(t, d.RefreshAssets(context.Background()))
	assert.Zero(t, fa.callCount())

	v := d.View("")
	assert.False(t, v.Connected)
	assert.Equal(t, collection.Idle, v.Organization.State)
	assert.Empty(t, v.Organization.Rows)
}

func TestAssetFailureRetainsPreviousList(t *testing.T) {
	fa := &fakeAssets{}
	d := newDashboard(t, &fakeSession{addr: "0xabc"}, fa, &fakeRecords{})
	require.NoError(t, d.RefreshAssets(context.Background()))

	fa.setFail(orgContract, errors.Mark(errors.New("reverted"), shared.ErrContractCallFailed))
	err := d.RefreshAssets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrContractCallFailed))

	v := d.View("")
	assert.Equal(t, []uint64{3, 2, 1}, rowIDs(v.Organization.Rows))
	assert.Equal(t, collection.Failed, v.Organization.State)
	assert.Equal(t, shared.MsgAssetsFailed, v.Organization.Error)
	assert.Equal(t, shared.MsgAssetsFailed, v.AssetError)

	// the user collection is independent of the org failure
	assert.Equal(t, collection.Loaded, v.User.State)
	assert.Empty(t, v.User.Error)
}

func TestRegistryFailureClearsRecords(t *testing.T) {
	fr := &fakeRecords{records: []registry.Record{{ID: 1, Owner: strPtr("ngo")}}}
	d := newDashboard(t, &fakeSession{}, &fakeAssets{}, fr)
	require.NoError(t, d.RefreshRegistry(context.Background()))
	require.Len(t, d.View("").Records.Rows, 1)

	fr.mu.Lock()
	fr.err = errors.Mark(errors.New("status 500"), shared.ErrRegistryUnavailable)
	fr.mu.Unlock()
	require.Error(t, d.RefreshRegistry(context.Background()))

	v := d.View("")
	assert.Empty(t, v.Records.Rows)
	assert.Zero(t, v.Records.Total)
	assert.Equal(t, shared.MsgRegistryFailed, v.RegistryError)
	assert.Equal(t, collection.Failed, v.Records.State)
}

func TestRegistryServerErrorEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newDashboard(t, &fakeSession{addr: "0xabc"}, &fakeAssets{}, registry.NewClient(srv.URL, time.Second))
	require.NoError(t, d.RefreshAssets(context.Background()))
	require.Error(t, d.RefreshRegistry(context.Background()))

	v := d.View("")
	assert.Equal(t, shared.MsgRegistryFailed, v.RegistryError)
	assert.Empty(t, v.Records.Rows)
	assert.Len(t, v.Organization.Rows, 3)
	assert.Empty(t, v.AssetError)
}

func TestViewFiltersAllCollections(t *testing.T) {
	fr := &fakeRecords{records: []registry.Record{
		{ID: 1, MetadataHash: strPtr("QmSpecialHash"), RegisteredAt: "1700000000000000000"},
		{ID: 2, Owner: strPtr("someone")},
		{ID: 3, RegisteredAt: "None"},
	}}
	d := newDashboard(t, &fakeSession{addr: "0xabc"}, &fakeAssets{}, fr)
	require.NoError(t, d.RefreshAssets(context.Background()))
	require.NoError(t, d.RefreshRegistry(context.Background()))

	v := d.View("qmspecial")
	assert.Equal(t, []uint64{1}, rowIDs(v.Organization.Rows))
	assert.Equal(t, []uint64{1}, rowIDs(v.User.Rows))
	require.Len(t, v.Records.Rows, 1)
	assert.Equal(t, "QmSpecialHash", v.Records.Rows[0].MetadataHash)
	assert.Equal(t, "Unassigned", v.Records.Rows[0].Owner)
	assert.Equal(t, "2023-11-14", v.Records.Rows[0].RegisteredAt)
	assert.Equal(t, 3, v.Records.Total)

	all := d.View("")
	require.Len(t, all.Records.Rows, 3)
	assert.Equal(t, "—", all.Records.Rows[1].MetadataHash)
	assert.Equal(t, "N/A", all.Records.Rows[2].RegisteredAt)
}

func TestConnectErrorShownInView(t *testing.T) {
	session := &fakeSession{connectErr: errors.Mark(errors.New("no provider"), shared.ErrProviderUnavailable)}
	d := newDashboard(t, session, &fakeAssets{}, &fakeRecords{})

	_, err := d.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, shared.MsgProviderUnavailable, d.View("").WalletError)

	session.connectErr = nil
	session.connectAddr = "0xabc"
	_, err = d.Connect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.View("").WalletError)
}

func TestStartFollowsSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	session := &fakeSession{connectAddr: "0xabc"}
	fa := &fakeAssets{}
	fr := &fakeRecords{records: []registry.Record{{ID: 1}}}
	d := newDashboard(t, session, fa, fr)

	d.Start(context.Background())
	d.Start(context.Background())

	require.Eventually(t, func() bool {
		return d.View("").Records.State == collection.Loaded
	}, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, fr.calls.Load())
	assert.Zero(t, fa.callCount())

	_, err := d.Connect(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		v := d.View("")
		return v.Organization.State == collection.Loaded && v.User.State == collection.Loaded
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, fa.callCount())

	// disconnect stops refreshing but keeps what is shown
	session.set("")
	v := d.View("")
	assert.False(t, v.Connected)
	assert.Len(t, v.Organization.Rows, 3)

	d.Stop()
}

func TestStartAdoptsAuthorizedWallet(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	session := &fakeSession{detectAddr: "0xdef"}
	d := newDashboard(t, session, &fakeAssets{}, &fakeRecords{})
	d.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(d.View("").User.Rows) == 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, strings.HasSuffix(d.View("").User.Rows[0].Title, "0xdef"))

	d.Stop()
}

func TestStaleWalletResultIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := make(chan struct{})
	fa := &fakeAssets{gates: map[string]chan struct{}{"0xaaa": gate}}
	session := &fakeSession{}
	d := newDashboard(t, session, fa, &fakeRecords{})
	d.Start(context.Background())

	session.set("0xaaa")
	require.Eventually(t, func() bool { return fa.callCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	session.set("0xbbb")
	require.Eventually(t, func() bool {
		v := d.View("")
		return v.Organization.State == collection.Loaded && v.User.State == collection.Loaded
	}, 2*time.Second, 5*time.Millisecond)

	// release the fetches issued for the previous wallet
	close(gate)
	require.Eventually(t, func() bool { return fa.returned.Load() == 4 }, 2*time.Second, 5*time.Millisecond)

	v := d.View("")
	require.Len(t, v.Organization.Rows, 3)
	assert.True(t, strings.HasSuffix(v.Organization.Rows[0].Title, "0xbbb"))
	assert.True(t, strings.HasSuffix(v.User.Rows[0].Title, "0xbbb"))
	assert.Equal(t, collection.Loaded, v.Organization.State)

	d.Stop()
}

func TestNewDashboardValidates(t *testing.T) {
	_, err := NewDashboard(nil, &fakeAssets{}, &fakeRecords{}, Config{})
	assert.Error(t, err)
	_, err = NewDashboard(&fakeSession{}, nil, &fakeRecords{}, Config{})
	assert.Error(t, err)
}
