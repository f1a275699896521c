package pricing_test

import (
	"regexp"
	"testing"
	"time"

	"ayuta/internal/pricing"

	"github.com/stretchr/testify/assert"
)

var orderIDPattern = regexp.MustCompile(`^AYU-\d{5}-\d{2}$`)

func fixedClock() time.Time {
	return time.UnixMilli(1741168800123)
}

func TestBuildOrderID_Format(t *testing.T) {
	id := pricing.BuildOrderID(fixedClock(), func(int) int { return 0 })
	assert.Equal(t, "AYU-00123-10", id)

	id = pricing.BuildOrderID(fixedClock(), func(n int) int { return n - 1 })
	assert.Equal(t, "AYU-00123-99", id)
}

func TestOrderIDGenerator_DefaultFormat(t *testing.T) {
	gen := pricing.NewOrderIDGenerator()
	for i := 0; i < 20; i++ {
		assert.Regexp(t, orderIDPattern, gen.Next(nil))
	}
}

func TestOrderIDGenerator_AvoidsTakenIDs(t *testing.T) {
	seq := []int{5, 5, 7}
	i := 0
	gen := pricing.NewOrderIDGeneratorWith(fixedClock, func(int) int {
		v := seq[i%len(seq)]
		i++
		return v
	})

	taken := map[string]bool{"AYU-00123-15": true}
	id := gen.Next(func(id string) bool { return taken[id] })
	assert.Equal(t, "AYU-00123-17", id)
}

func TestOrderIDGenerator_WidensWhenShortFormatExhausted(t *testing.T) {
	gen := pricing.NewOrderIDGeneratorWith(fixedClock, func(int) int { return 0 })

	id := gen.Next(func(id string) bool { return id == "AYU-00123-10" })
	assert.Regexp(t, `^AYU-00123-10-[0-9A-F]{6}$`, id)
}
