package pricing

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// ISOLayout is the timestamp format stored on entities (UTC, millisecond precision).
	ISOLayout = "2006-01-02T15:04:05.000Z"

	dateLayout  = "02 Jan 2006"
	invalidDate = "Invalid Date"
)

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// FormatCurrency renders amount as pounds sterling, e.g. £1,234.50 or -£5.00.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 && Round2(amount) != 0 {
		sign = "-"
	}
	return sign + "£" + gbPrinter.Sprintf("%.2f", math.Abs(amount))
}

// FormatDate renders an ISO-8601 timestamp as day, short month and year.
func FormatDate(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return invalidDate
	}
	return t.Format(dateLayout)
}

// Timestamp formats t the way entity timestamps are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
