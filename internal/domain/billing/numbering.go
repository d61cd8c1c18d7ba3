package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberingConfig is the tenant's invoice numbering scheme
type NumberingConfig struct {
	Prefix           string
	Suffix           string
	Width            int
	StartingSequence int64
}

// IsConfigured returns true if the tenant set up a numbering scheme. A starting
// sequence alone does not count since every settings row carries one.
func (c NumberingConfig) IsConfigured() bool {
	return c.Prefix != "" || c.Suffix != "" || c.Width > 0
}

// Format returns prefix + zeroPad(startingSequence + existing, width) + suffix
func (c NumberingConfig) Format(existing int64) string {
	return c.FormatSequence(c.StartingSequence + existing)
}

// FormatSequence returns prefix + zeroPad(seq, width) + suffix
func (c NumberingConfig) FormatSequence(seq int64) string {
	s := strconv.FormatInt(seq, 10)
	for len(s) < c.Width {
		s = "0" + s
	}
	return c.Prefix + s + c.Suffix
}

// Sequence extracts the sequence of a number issued under this scheme
func (c NumberingConfig) Sequence(number string) (int64, bool) {
	return parseSequence(number, c.Prefix, c.Suffix)
}

// FallbackInvoicePrefix returns the INV-YYYYMMDD- stem shared by one day's fallback numbers
func FallbackInvoicePrefix(issueDate time.Time) string {
	return "INV-" + issueDate.Format("20060102") + "-"
}

// FallbackInvoiceNumber returns INV-YYYYMMDD-NNNNN for tenants without a numbering scheme,
// where existing is the number of invoices already issued with the same stem
func FallbackInvoiceNumber(issueDate time.Time, existing int64) string {
	return fmt.Sprintf("%s%05d", FallbackInvoicePrefix(issueDate), existing+1)
}

// FallbackInvoiceSequence extracts the NNNNN part of a fallback number issued on issueDate
func FallbackInvoiceSequence(issueDate time.Time, number string) (int64, bool) {
	return parseSequence(number, FallbackInvoicePrefix(issueDate), "")
}

// NextSequence returns one past the highest sequence that parse accepts in numbers
func NextSequence(numbers []string, parse func(string) (int64, bool)) int64 {
	var highest int64
	for _, n := range numbers {
		if seq, ok := parse(n); ok && seq > highest {
			highest = seq
		}
	}
	return highest + 1
}

func parseSequence(number, prefix, suffix string) (int64, bool) {
	if !strings.HasPrefix(number, prefix) || !strings.HasSuffix(number, suffix) || len(number) <= len(prefix)+len(suffix) {
		return 0, false
	}
	digits := number[len(prefix) : len(number)-len(suffix)]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}
