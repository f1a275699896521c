package services_test

import (
	"context"
	"testing"
	"time"

	"ayuta/internal/events"
	"ayuta/internal/models"
	"ayuta/internal/payment"
	"ayuta/internal/pricing"
	"ayuta/internal/repositories"
	"ayuta/internal/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 5, 10, 0, 0, 123_000_000, time.UTC)

// MockPaymentGateway is a mock implementation of payment.Gateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentIntent), args.Error(1)
}

func (m *MockPaymentGateway) ConfirmCardPayment(ctx context.Context, clientSecret string, method payment.PaymentMethod) (*payment.Confirmation, error) {
	args := m.Called(ctx, clientSecret, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Confirmation), args.Error(1)
}

// expectPayment wires a two-step payment that ends with status.
func (m *MockPaymentGateway) expectPayment(email string, amount float64, status string) {
	intent := &payment.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret_abc", Amount: amount, Currency: "gbp", ReceiptEmail: email}
	m.On("CreatePaymentIntent", mock.Anything, payment.IntentRequest{Amount: amount, Currency: "gbp", ReceiptEmail: email}).
		Return(intent, nil).Once()
	m.On("ConfirmCardPayment", mock.Anything, "pi_test_secret_abc", payment.PaymentMethod{BillingDetails: payment.BillingDetails{Email: email}}).
		Return(&payment.Confirmation{Status: status, PaymentIntent: payment.ConfirmedIntent{ID: "pi_test", Status: status}}, nil).Once()
}

type fixture struct {
	tab     *services.Tab
	storage *repositories.MockKeyValueStorage
	gateway *MockPaymentGateway
	deps    services.Dependencies
	cfg     services.TabConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith builds a tab over seeded storage. seed runs before the tab loads.
func newFixtureWith(t *testing.T, seed func(*repositories.MockKeyValueStorage)) *fixture {
	t.Helper()

	catalog := services.NewCatalogService(repositories.NewMockProductRepository())
	_, err := catalog.Seed(services.DefaultCatalog())
	require.NoError(t, err)

	storage := repositories.NewMockKeyValueStorage()
	if seed != nil {
		seed(storage)
	}

	f := &fixture{
		storage: storage,
		gateway: new(MockPaymentGateway),
		cfg:     services.DefaultTabConfig(),
	}
	f.deps = services.Dependencies{
		Storage:  func(string) repositories.KeyValueStorage { return storage },
		Catalog:  catalog,
		Gateway:  f.gateway,
		OrderIDs: pricing.NewOrderIDGeneratorWith(func() time.Time { return fixedNow }, func(int) int { return 0 }),
		Clock:    func() time.Time { return fixedNow },
	}
	f.tab = services.NewTab("client-1", f.deps, f.cfg)
	t.Cleanup(f.tab.Close)
	return f
}

// reload opens a second tab over the same storage, as a page reload would.
func (f *fixture) reload() models.State {
	return services.NewTab("client-1", f.deps, f.cfg).State()
}

// recordSignals captures every signal published on the tab's bus.
func (f *fixture) recordSignals() *[]events.Signal {
	var got []events.Signal
	f.tab.Bus().SubscribeAll(func(signal events.Signal, _ models.State) {
		got = append(got, signal)
	})
	return &got
}
