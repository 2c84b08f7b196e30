// Package analytics aggregates the two on-chain asset collections and the off-chain
// registry into one filterable dashboard.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/sync/errgroup"

	"github.com/hakichain/haki-analytics/internal/assets"
	"github.com/hakichain/haki-analytics/internal/collection"
	"github.com/hakichain/haki-analytics/internal/metrics"
	"github.com/hakichain/haki-analytics/internal/registry"
)

// Collection names, also used as metric labels.
const (
	SourceOrganization = "organization"
	SourceUser         = "user"
	SourceRegistry     = "registry"
)

// Session is the wallet session the dashboard follows (see wallet.Connector).
type Session interface {
	Connect(ctx context.Context) (string, error)
	Detect(ctx context.Context) (string, error)
	Address() string
	Subscribe(fn func(address string))
}

type AssetSource interface {
	FetchAssets(ctx context.Context, contract common.Address, wallet string) ([]assets.ChainAsset, error)
}

type RecordSource interface {
	FetchRecords(ctx context.Context) ([]registry.Record, error)
}

type Config struct {
	OrgContract  common.Address
	UserContract common.Address
	Formatter    Formatter
	Metrics      *metrics.Metrics
}

type Dashboard struct {
	session   Session
	assets    AssetSource
	records   RecordSource
	cfg       Config
	formatter Formatter

	org      *collection.Collection[assets.ChainAsset]
	user     *collection.Collection[assets.ChainAsset]
	registry *collection.Collection[registry.Record]

	// mu serialises session transitions against the start of on-chain fetches.
	mu        sync.Mutex
	address   string
	walletErr error

	startOnce sync.Once
	baseCtx   context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewDashboard(session Session, assetSource AssetSource, recordSource RecordSource, cfg Config) (*Dashboard, error) {
	if session == nil {
		return nil, errors.New("analytics: nil session")
	}
	if assetSource == nil || recordSource == nil {
		return nil, errors.New("analytics: nil fetcher")
	}

	f := cfg.Formatter
	if f.Layout == "" && f.Location == nil {
		f = DefaultFormatter()
	}

	return &Dashboard{
		session:   session,
		assets:    assetSource,
		records:   recordSource,
		cfg:       cfg,
		formatter: f,
		org:       collection.New[assets.ChainAsset](SourceOrganization, collection.RetainOnFailure),
		user:      collection.New[assets.ChainAsset](SourceUser, collection.RetainOnFailure),
		registry:  collection.New[registry.Record](SourceRegistry, collection.ClearOnFailure),
	}, nil
}

// Start follows the wallet session for the lifetime of ctx. It fetches the registry once,
// adopts an already-authorized wallet, and from then on loads both asset collections
// whenever the session becomes non-empty. Calling Start again is a no-op.
func (d *Dashboard) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		base, cancel := context.WithCancel(ctx)
		d.mu.Lock()
		d.baseCtx, d.cancel = base, cancel
		d.mu.Unlock()

		d.session.Subscribe(d.onSession)

		d.goBackground(func(ctx context.Context) {
			_ = d.RefreshRegistry(ctx)
		})

		d.goBackground(func(ctx context.Context) {
			if _, err := d.session.Detect(ctx); err != nil {
				log.Warn("wallet detection failed", "error", err)
			}
		})
	})
}

// Stop cancels background fetches and waits for them to return.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

// Connect runs the wallet connect flow. The outcome is kept for the view.
func (d *Dashboard) Connect(ctx context.Context) (string, error) {
	addr, err := d.session.Connect(ctx)

	d.mu.Lock()
	d.walletErr = err
	d.mu.Unlock()

	if err != nil {
		return "", err
	}
	return addr, nil
}

// RefreshAssets loads both on-chain collections for the current session and waits for
// them. With no session nothing is called.
func (d *Dashboard) RefreshAssets(ctx context.Context) error {
	addr := d.session.Address()
	d.setSession(addr)
	if addr == "" {
		d.cfg.Metrics.ObserveFetch(SourceOrganization, metrics.OutcomeSkipped, 0)
		d.cfg.Metrics.ObserveFetch(SourceUser, metrics.OutcomeSkipped, 0)
		return nil
	}
	return d.loadAssets(ctx, addr)
}

// RefreshRegistry loads the registry collection and waits for it.
func (d *Dashboard) RefreshRegistry(ctx context.Context) error {
	ticket := d.registry.Begin("")
	start := time.Now()

	records, err := d.records.FetchRecords(ctx)
	if err != nil {
		if d.registry.Fail(ticket, err) {
			d.cfg.Metrics.ObserveFetch(SourceRegistry, metrics.OutcomeError, time.Since(start))
			d.cfg.Metrics.SetItems(SourceRegistry, 0)
		} else {
			d.cfg.Metrics.ObserveFetch(SourceRegistry, metrics.OutcomeStale, time.Since(start))
		}
		return err
	}

	if !d.registry.Apply(ticket, records) {
		d.cfg.Metrics.ObserveFetch(SourceRegistry, metrics.OutcomeStale, time.Since(start))
		return nil
	}
	d.cfg.Metrics.ObserveFetch(SourceRegistry, metrics.OutcomeOK, time.Since(start))
	d.cfg.Metrics.SetItems(SourceRegistry, len(records))
	return nil
}

// View filters every collection by query and formats the rows.
func (d *Dashboard) View(query string) View {
	d.mu.Lock()
	walletErr := d.walletErr
	d.mu.Unlock()

	return buildView(
		d.formatter,
		query,
		d.session.Address(),
		walletErr,
		d.org.Snapshot(),
		d.user.Snapshot(),
		d.registry.Snapshot(),
	)
}

func (d *Dashboard) onSession(addr string) {
	if !d.setSession(addr) || addr == "" {
		return
	}
	log.Info("wallet session changed, loading assets", "wallet", addr)
	d.goBackground(func(ctx context.Context) {
		_ = d.loadAssets(ctx, addr)
	})
}

// setSession records addr as the current session. On a change every in-flight on-chain
// fetch becomes stale; the items already held stay.
func (d *Dashboard) setSession(addr string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if addr == d.address {
		return false
	}
	d.address = addr
	d.org.Invalidate(addr)
	d.user.Invalidate(addr)
	return true
}

func (d *Dashboard) loadAssets(ctx context.Context, addr string) error {
	type job struct {
		source   string
		contract common.Address
		coll     *collection.Collection[assets.ChainAsset]
	}
	jobs := []job{
		{SourceOrganization, d.cfg.OrgContract, d.org},
		{SourceUser, d.cfg.UserContract, d.user},
	}

	// not errgroup.WithContext: one source failing must not cancel the other
	var g errgroup.Group
	for _, j := range jobs {
		ticket, ok := d.begin(j.coll, addr)
		if !ok {
			continue
		}
		g.Go(func() error {
			return d.loadCollection(ctx, j.source, j.contract, j.coll, ticket)
		})
	}
	return g.Wait()
}

// begin opens a fetch for addr unless the session moved on already.
func (d *Dashboard) begin(c *collection.Collection[assets.ChainAsset], addr string) (collection.Ticket, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if addr != d.address {
		return collection.Ticket{}, false
	}
	return c.Begin(addr), true
}

func (d *Dashboard) loadCollection(
	ctx context.Context,
	source string,
	contract common.Address,
	c *collection.Collection[assets.ChainAsset],
	ticket collection.Ticket,
) error {
	start := time.Now()
	items, err := d.assets.FetchAssets(ctx, contract, ticket.Tag())
	if err != nil {
		if !c.Fail(ticket, err) {
			log.Info("dropping stale asset failure", "source", source, "wallet", ticket.Tag())
			d.cfg.Metrics.ObserveFetch(source, metrics.OutcomeStale, time.Since(start))
			return nil
		}
		d.cfg.Metrics.ObserveFetch(source, metrics.OutcomeError, time.Since(start))
		return errors.Wrapf(err, "%s assets", source)
	}

	if !c.Apply(ticket, items) {
		log.Info("dropping stale asset result", "source", source, "wallet", ticket.Tag())
		d.cfg.Metrics.ObserveFetch(source, metrics.OutcomeStale, time.Since(start))
		return nil
	}
	d.cfg.Metrics.ObserveFetch(source, metrics.OutcomeOK, time.Since(start))
	d.cfg.Metrics.SetItems(source, len(items))
	return nil
}

func (d *Dashboard) goBackground(fn func(ctx context.Context)) {
	d.mu.Lock()
	ctx := d.baseCtx
	d.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(ctx)
	}()
}
