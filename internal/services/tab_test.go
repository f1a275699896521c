package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ayuta/internal/events"
	"ayuta/internal/models"
	"ayuta/internal/payment"
	"ayuta/internal/repositories"
	"ayuta/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSignal(msg events.SignalMessage) error {
	return m.Called(msg).Error(0)
}

func newRegistry(t *testing.T, publisher events.Publisher) *services.TabRegistry {
	t.Helper()
	catalog := services.NewCatalogService(repositories.NewMockProductRepository())
	_, err := catalog.Seed(services.DefaultCatalog())
	require.NoError(t, err)

	registry := services.NewTabRegistry(services.Dependencies{
		Storage:   repositories.NewMockStorageFactory(),
		Catalog:   catalog,
		Publisher: publisher,
	}, services.DefaultTabConfig())
	t.Cleanup(registry.Close)
	return registry
}

func TestTabRegistry_ClientIsolation(t *testing.T) {
	registry := newRegistry(t, nil)

	a := registry.Get("a")
	b := registry.Get("b")
	assert.Same(t, a, registry.Get("a"))
	assert.Equal(t, 2, registry.Len())

	_, err := a.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	assert.Len(t, a.State().Cart, 1)
	assert.Empty(t, b.State().Cart)
	assert.Empty(t, b.Home.View().Basket)
}

func TestTabRegistry_Close(t *testing.T) {
	registry := newRegistry(t, nil)
	tab := registry.Get("a")
	_, err := tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)

	registry.Close()
	assert.Zero(t, registry.Len())

	// Storage outlives the tab.
	assert.Len(t, registry.Get("a").State().Cart, 1)
}

// stepClock is a clock the test advances by hand.
type stepClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newIdleRegistry(t *testing.T, ttl time.Duration, gateway *MockPaymentGateway) (*services.TabRegistry, *stepClock) {
	t.Helper()
	catalog := services.NewCatalogService(repositories.NewMockProductRepository())
	_, err := catalog.Seed(services.DefaultCatalog())
	require.NoError(t, err)

	clock := &stepClock{now: fixedNow}
	cfg := services.DefaultTabConfig()
	cfg.IdleTTL = ttl
	deps := services.Dependencies{
		Storage: repositories.NewMockStorageFactory(),
		Catalog: catalog,
		Clock:   clock.Now,
	}
	if gateway != nil {
		deps.Gateway = gateway
	}
	registry := services.NewTabRegistry(deps, cfg)
	t.Cleanup(registry.Close)
	return registry, clock
}

func TestTabRegistry_EvictsIdleTabs(t *testing.T) {
	registry, clock := newIdleRegistry(t, time.Minute, nil)

	idle := registry.Get("idle")
	_, err := idle.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	active := registry.Get("active")

	clock.Advance(30 * time.Second)
	assert.Same(t, active, registry.Get("active"))
	clock.Advance(45 * time.Second)

	registry.Get("newcomer")
	assert.Equal(t, 2, registry.Len())
	assert.Same(t, active, registry.Get("active"))

	reopened := registry.Get("idle")
	assert.NotSame(t, idle, reopened)
	require.Len(t, reopened.State().Cart, 1)
	assert.Equal(t, "vitamin-d", reopened.State().Cart[0].ID)
	assert.Len(t, reopened.Home.View().Basket, 1)
}

func TestTabRegistry_ZeroIdleTTLKeepsTabs(t *testing.T) {
	registry, clock := newIdleRegistry(t, 0, nil)

	for i := 0; i < 5; i++ {
		registry.Get(fmt.Sprintf("anon-%d", i))
		clock.Advance(time.Hour)
	}
	assert.Equal(t, 5, registry.Len())
}

func TestTabRegistry_KeepsTabWithCheckoutInFlight(t *testing.T) {
	gateway := new(MockPaymentGateway)
	registry, clock := newIdleRegistry(t, time.Minute, gateway)

	paying := registry.Get("paying")
	_, err := paying.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&payment.PaymentIntent{ID: "pi_wait", ClientSecret: "pi_wait_secret"}, nil).Once()
	gateway.On("ConfirmCardPayment", mock.Anything, "pi_wait_secret", mock.Anything).
		Return(&payment.Confirmation{Status: payment.StatusSucceeded}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, _, checkoutErr := paying.Shop.Checkout(context.Background(), services.CheckoutRequest{Email: "a@x.com"})
		done <- checkoutErr
	}()
	<-entered

	clock.Advance(2 * time.Minute)
	registry.Get("other")
	assert.Same(t, paying, registry.Get("paying"))

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, registry.Get("paying").State().Orders, 1)
}

func TestTab_SubscribersReceiveSnapshots(t *testing.T) {
	f := newFixture(t)

	var received models.State
	f.tab.Bus().Subscribe(events.StateUpdated, func(_ events.Signal, state models.State) {
		state.Cart[0].Name = "tampered"
		received = state
	})

	_, err := f.tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	assert.Equal(t, "tampered", received.Cart[0].Name)
	assert.Equal(t, "Vitamin D", f.tab.State().Cart[0].Name)
	assert.Equal(t, "Vitamin D", f.tab.Shop.View().Basket[0].Name)
}

func TestTab_PersistsBeforeNotifying(t *testing.T) {
	f := newFixture(t)

	var persisted []models.CartItem
	f.tab.Bus().Subscribe(events.StateUpdated, func(events.Signal, models.State) {
		persisted = f.reload().Cart
	})

	_, err := f.tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestTab_RendersOnEverySignal(t *testing.T) {
	f := newFixture(t)
	shop, home := f.tab.Shop.Renders(), f.tab.Home.Renders()

	_, err := f.tab.Shop.SetGoal("energy")
	require.NoError(t, err)
	assert.Equal(t, shop+1, f.tab.Shop.Renders())
	assert.Equal(t, home+1, f.tab.Home.Renders())

	_, err = f.tab.Account.Logout()
	require.NoError(t, err)
	assert.Equal(t, shop+3, f.tab.Shop.Renders())
	assert.Equal(t, home+3, f.tab.Home.Renders())
}

func TestTab_RelayForwardsSignals(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishSignal", mock.MatchedBy(func(msg events.SignalMessage) bool {
		return msg.ClientID == "relayed" && msg.Signal == events.StateUpdated && msg.CartItems == 1
	})).Return(errors.New("broker down")).Once()

	registry := newRegistry(t, publisher)
	tab := registry.Get("relayed")

	status, err := tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	assert.False(t, status.Unsaved)
	assert.Len(t, tab.State().Cart, 1)

	// Close waits for queued signals to reach the broker.
	tab.Close()
	publisher.AssertExpectations(t)

	_, err = tab.Shop.ToggleCartItem("vitamin-d")
	require.NoError(t, err)
	publisher.AssertNumberOfCalls(t, "PublishSignal", 1)
}

func TestActionError(t *testing.T) {
	cause := errors.New("declined")
	err := services.NewGatewayError(services.ErrMsgPaymentFailed, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Payment failed. Please retry.: declined", err.Error())
	assert.Equal(t, services.ErrorStatus("Payment failed. Please retry."), err.Status())
	assert.Equal(t, "GATEWAY", err.Kind.String())

	_, ok := services.AsActionError(errors.New("plain"))
	assert.False(t, ok)
}
