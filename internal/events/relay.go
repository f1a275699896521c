package events

import (
	"sync"
	"time"

	"ayuta/internal/models"

	"go.uber.org/zap"
)

// SignalMessage is the out-of-process form of a signal.
type SignalMessage struct {
	ClientID   string    `json:"client_id"`
	Signal     Signal    `json:"signal"`
	CartItems  int       `json:"cart_items"`
	Orders     int       `json:"orders"`
	SignedIn   bool      `json:"signed_in"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends signal messages to a broker.
type Publisher interface {
	PublishSignal(msg SignalMessage) error
}

// relayQueueSize bounds the signals waiting for the broker per client.
const relayQueueSize = 64

// Relay forwards a client's signals to a Publisher. Messages are handed to a
// background worker so a slow broker never holds up the bus; when the queue is
// full the message is dropped. Broker failures are logged and never reach the
// local bus.
type Relay struct {
	clientID  string
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time

	queue  chan SignalMessage
	done   chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewRelay creates a Relay for clientID.
func NewRelay(clientID string, publisher Publisher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		clientID:  clientID,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		queue:     make(chan SignalMessage, relayQueueSize),
		done:      make(chan struct{}),
	}
}

// Attach subscribes the relay to every signal on bus and starts delivering.
// detach unsubscribes, then waits until every queued message has been sent.
func (r *Relay) Attach(bus *Bus) (detach func()) {
	unsubscribe := bus.SubscribeAll(r.Forward)
	go r.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			r.stop()
		})
	}
}

// Forward is the Subscriber the relay registers on the bus.
func (r *Relay) Forward(signal Signal, state models.State) {
	msg := SignalMessage{
		ClientID:   r.clientID,
		Signal:     signal,
		CartItems:  len(state.Cart),
		Orders:     len(state.Orders),
		SignedIn:   state.SessionEmail() != "",
		OccurredAt: r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- msg:
	default:
		r.logger.Warn("relay queue full, signal dropped",
			zap.String("client_id", r.clientID),
			zap.String("signal", string(signal)))
	}
}

func (r *Relay) run() {
	defer close(r.done)
	for msg := range r.queue {
		if err := r.publisher.PublishSignal(msg); err != nil {
			r.logger.Warn("failed to relay signal",
				zap.String("client_id", r.clientID),
				zap.String("signal", string(msg.Signal)),
				zap.Error(err))
		}
	}
}

func (r *Relay) stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}
