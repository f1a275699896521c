package services

import (
	"sync"
	"sync/atomic"
	"time"

	"ayuta/internal/events"
	"ayuta/internal/metrics"
	"ayuta/internal/models"
	"ayuta/internal/payment"
	"ayuta/internal/pricing"
	"ayuta/internal/repositories"
	"ayuta/internal/store"

	"go.uber.org/zap"
)

// TabConfig holds the pricing and checkout settings shared by every tab.
type TabConfig struct {
	TaxRate        float64
	ShippingCost   float64
	GatewayTimeout time.Duration
	IssueResults   bool
	// IdleTTL is how long an unused tab stays open. Zero keeps tabs forever.
	IdleTTL        time.Duration
}

// DefaultTabConfig matches the demo's built-in pricing.
func DefaultTabConfig() TabConfig {
	return TabConfig{
		TaxRate:        pricing.DefaultTaxRate,
		ShippingCost:   pricing.DefaultShippingCost,
		GatewayTimeout: 10 * time.Second,
		IssueResults:   true,
		IdleTTL:        30 * time.Minute,
	}
}

// Dependencies are the collaborators a tab is built from.
// Publisher, Logger, Metrics, OrderIDs and Clock are optional.
type Dependencies struct {
	Storage   repositories.StorageFactory
	Catalog   *CatalogService
	Gateway   payment.Gateway
	Publisher events.Publisher
	Logger    *zap.Logger
	Metrics   metrics.Recorder
	OrderIDs  *pricing.OrderIDGenerator
	Clock     func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.OrderIDs == nil {
		d.OrderIDs = pricing.NewOrderIDGenerator()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Storage == nil {
		d.Storage = repositories.NewMockStorageFactory()
	}
	return d
}

// Tab is one client's workspace: its storage, its bus and every page bound to them.
// All mutations go through the tab lock; subscribers run while it is held and must
// not call back into tab actions.
type Tab struct {
	ClientID string

	Shop    *ShopService
	Account *AccountService
	History *HistoryService
	Nav     *NavRenderer
	Home    *HomeRenderer

	store  *store.Store
	bus    *events.Bus
	logger *zap.Logger
	clock  func() time.Time

	state    models.State
	mu       sync.Mutex
	detach   []func()
	lastUsed atomic.Int64
}

// NewTab loads the client's state and renders every page once.
func NewTab(clientID string, deps Dependencies, cfg TabConfig) *Tab {
	deps = deps.withDefaults()
	logger := deps.Logger.With(zap.String("client_id", clientID))

	t := &Tab{
		ClientID: clientID,
		store:    store.New(deps.Storage(clientID), logger, deps.Metrics),
		bus:      events.NewBus(deps.Metrics),
		logger:   logger,
		clock:    deps.Clock,
	}
	t.state = t.store.Load()

	t.Shop = newShopService(t, deps, cfg)
	t.Account = newAccountService(t)
	t.History = newHistoryService(t)
	t.Nav = newNavRenderer(t.bus, t.state)
	t.Home = newHomeRenderer(t.bus, t.state, cfg)

	if deps.Publisher != nil {
		relay := events.NewRelay(clientID, deps.Publisher, logger)
		t.detach = append(t.detach, relay.Attach(t.bus))
	}
	return t
}

// Bus exposes the tab's notification bus.
func (t *Tab) Bus() *events.Bus {
	return t.bus
}

// State returns a snapshot of the in-memory state.
func (t *Tab) State() models.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Close detaches the broker relay, if any.
func (t *Tab) Close() {
	t.mu.Lock()
	detach := t.detach
	t.detach = nil
	t.mu.Unlock()
	for _, off := range detach {
		off()
	}
}

func (t *Tab) touch(at time.Time) {
	t.lastUsed.Store(at.UnixNano())
}

// idleSince reports whether the tab was last used before cutoff and has no
// checkout waiting on the gateway.
func (t *Tab) idleSince(cutoff time.Time) bool {
	return t.lastUsed.Load() < cutoff.UnixNano() && !t.Shop.checkingOut.Load()
}

func (t *Tab) now() string {
	return pricing.Timestamp(t.clock())
}

// mutate applies fn to a copy of the state under the tab lock. When fn succeeds
// the copy becomes the in-memory state, is persisted, and every signal is published
// with it, in that order. A storage fault does not stop notification.
func (t *Tab) mutate(fn func(state *models.State) error, signals ...events.Signal) (store.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	if err := fn(&next); err != nil {
		return store.Result{}, err
	}
	return t.commitLocked(next, signals...), nil
}

// reset replaces the state with defaults after clearing storage.
func (t *Tab) reset(signals ...events.Signal) store.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := t.store.Clear()
	t.state = models.DefaultState()
	t.publishLocked(signals...)
	return res
}

func (t *Tab) commitLocked(next models.State, signals ...events.Signal) store.Result {
	t.state = next
	res := t.store.Save(next)
	if res.Unsaved() {
		t.logger.Warn("state changed but not persisted", zap.Strings("keys", res.Failed))
	}
	t.publishLocked(signals...)
	return res
}

func (t *Tab) publishLocked(signals ...events.Signal) {
	for _, signal := range signals {
		t.bus.Publish(signal, t.state)
	}
}

// page keeps the last full render of a view and recomputes it on every signal
// it is subscribed to.
type page[V any] struct {
	render  func(models.State) V
	current V
	renders int
	mu      sync.RWMutex
}

func newPage[V any](bus *events.Bus, initial models.State, render func(models.State) V, signals ...events.Signal) *page[V] {
	p := &page[V]{render: render}
	p.update("", initial)
	for _, signal := range signals {
		bus.Subscribe(signal, p.update)
	}
	return p
}

func (p *page[V]) update(_ events.Signal, state models.State) {
	next := p.render(state)
	p.mu.Lock()
	p.current = next
	p.renders++
	p.mu.Unlock()
}

func (p *page[V]) view() V {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *page[V]) count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.renders
}

// TabRegistry hands out one Tab per client id, creating it on first use.
// Tabs unused for longer than TabConfig.IdleTTL are closed when a new tab is
// opened; their state is reloaded from storage on the next request.
type TabRegistry struct {
	deps Dependencies
	cfg  TabConfig
	tabs map[string]*Tab
	mu   sync.RWMutex
}

// NewTabRegistry creates an empty registry.
func NewTabRegistry(deps Dependencies, cfg TabConfig) *TabRegistry {
	return &TabRegistry{
		deps: deps.withDefaults(),
		cfg:  cfg,
		tabs: make(map[string]*Tab),
	}
}

// Get returns the tab for clientID.
func (r *TabRegistry) Get(clientID string) *Tab {
	now := r.deps.Clock()

	r.mu.RLock()
	tab, ok := r.tabs[clientID]
	if ok {
		tab.touch(now)
	}
	r.mu.RUnlock()
	if ok {
		return tab
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tab, ok := r.tabs[clientID]; ok {
		tab.touch(now)
		return tab
	}
	r.evictIdleLocked(now)
	tab = NewTab(clientID, r.deps, r.cfg)
	tab.touch(now)
	r.tabs[clientID] = tab
	r.deps.Logger.Debug("tab opened", zap.String("client_id", clientID))
	return tab
}

func (r *TabRegistry) evictIdleLocked(now time.Time) {
	if r.cfg.IdleTTL <= 0 {
		return
	}
	cutoff := now.Add(-r.cfg.IdleTTL)
	for id, tab := range r.tabs {
		if !tab.idleSince(cutoff) {
			continue
		}
		tab.Close()
		delete(r.tabs, id)
		r.deps.Logger.Debug("tab evicted", zap.String("client_id", id))
	}
}

// Len returns the number of open tabs.
func (r *TabRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// Close closes every tab.
func (r *TabRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, tab := range r.tabs {
		tab.Close()
		delete(r.tabs, id)
	}
}
