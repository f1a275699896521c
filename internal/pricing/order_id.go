package pricing

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxOrderIDAttempts bounds the retries on the short display format before
// the generator widens the suffix.
const maxOrderIDAttempts = 8

// BuildOrderID renders the display order id: AYU-<last 5 digits of the epoch
// millisecond timestamp>-<two digit number in [10,99]>.
func BuildOrderID(now time.Time, rnd func(n int) int) string {
	stamp := fmt.Sprintf("%05d", now.UnixMilli()%100000)
	return fmt.Sprintf("AYU-%s-%d", stamp, rnd(90)+10)
}

// OrderIDGenerator issues display order ids that never repeat an id already taken.
type OrderIDGenerator struct {
	now func() time.Time
	rnd func(n int) int
	mu  sync.Mutex
}

// NewOrderIDGenerator creates a generator backed by the wall clock and math/rand.
func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{now: time.Now, rnd: rand.IntN}
}

// NewOrderIDGeneratorWith creates a generator with an injected clock and random source.
func NewOrderIDGeneratorWith(now func() time.Time, rnd func(n int) int) *OrderIDGenerator {
	return &OrderIDGenerator{now: now, rnd: rnd}
}

// Next returns an id for which taken reports false. It keeps the short AYU
// format while it can and falls back to a uuid-derived suffix.
func (g *OrderIDGenerator) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < maxOrderIDAttempts; i++ {
		id := BuildOrderID(g.now(), g.rnd)
		if taken == nil || !taken(id) {
			return id
		}
	}
	for {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		id := fmt.Sprintf("%s-%s", BuildOrderID(g.now(), g.rnd), suffix)
		if !taken(id) {
			return id
		}
	}
}
