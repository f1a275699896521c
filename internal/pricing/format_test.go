package pricing_test

import (
	"testing"
	"time"

	"ayuta/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "£210.00", pricing.FormatCurrency(210))
	assert.Equal(t, "£0.00", pricing.FormatCurrency(0))
	assert.Equal(t, "£72.45", pricing.FormatCurrency(72.45))
	assert.Equal(t, "-£5.00", pricing.FormatCurrency(-5))
	assert.Equal(t, "£0.00", pricing.FormatCurrency(-0.001))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05 Mar 2025", pricing.FormatDate("2025-03-05T10:00:00.000Z"))
	assert.Equal(t, "31 Dec 2024", pricing.FormatDate("2024-12-31T23:59:59Z"))
	assert.Equal(t, "Invalid Date", pricing.FormatDate("yesterday"))
	assert.Equal(t, "Invalid Date", pricing.FormatDate(""))
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 5, 11, 0, 0, 123456789, time.FixedZone("BST", 3600))
	assert.Equal(t, "2025-03-05T10:00:00.123Z", pricing.Timestamp(at))
	assert.Equal(t, "05 Mar 2025", pricing.FormatDate(pricing.Timestamp(at)))
}
