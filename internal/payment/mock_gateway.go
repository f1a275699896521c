package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const secretSeparator = "_secret_"

// Default simulated round-trip latencies.
const (
	DefaultCreateDelay  = 500 * time.Millisecond
	DefaultConfirmDelay = 650 * time.Millisecond
)

// MockGateway simulates a card payment provider. Every payment succeeds unless
// a different confirmation status is forced.
type MockGateway struct {
	CreateDelay  time.Duration
	ConfirmDelay time.Duration

	confirmStatus string
	now           func() time.Time
	mu            sync.RWMutex
}

// NewMockGateway creates a MockGateway with the given simulated latencies.
func NewMockGateway(createDelay, confirmDelay time.Duration) *MockGateway {
	return &MockGateway{
		CreateDelay:   createDelay,
		ConfirmDelay:  confirmDelay,
		confirmStatus: StatusSucceeded,
		now:           time.Now,
	}
}

// ForceStatus makes subsequent confirmations report status.
func (g *MockGateway) ForceStatus(status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmStatus = status
}

// CreatePaymentIntent prepares an intent after the simulated latency.
func (g *MockGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error) {
	if err := wait(ctx, g.CreateDelay); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	id := fmt.Sprintf("pi_mock_%d_%s", g.now().UnixMilli(), randomID())
	return &PaymentIntent{
		ID:           id,
		ClientSecret: id + secretSeparator + randomID(),
		Amount:       req.Amount,
		Currency:     req.Currency,
		ReceiptEmail: req.ReceiptEmail,
	}, nil
}

// ConfirmCardPayment confirms the intent behind clientSecret after the simulated latency.
func (g *MockGateway) ConfirmCardPayment(ctx context.Context, clientSecret string, method PaymentMethod) (*Confirmation, error) {
	if err := wait(ctx, g.ConfirmDelay); err != nil {
		return nil, fmt.Errorf("confirm card payment: %w", err)
	}
	id, _, ok := strings.Cut(clientSecret, secretSeparator)
	if !ok || id == "" {
		return nil, fmt.Errorf("confirm card payment: invalid client secret")
	}

	g.mu.RLock()
	status := g.confirmStatus
	g.mu.RUnlock()

	return &Confirmation{
		Status: status,
		PaymentIntent: ConfirmedIntent{
			ID:            id,
			Status:        status,
			PaymentMethod: method,
		},
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomID returns 6 lowercase alphanumeric characters.
func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
