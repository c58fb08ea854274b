// Package normalize canonicalizes the raw field guesses of an extraction
// pass into typed, bounded values: strict calendar dates, HH:MM times,
// two-decimal amounts, hyphenated local phone numbers, and restricted
// vocabulary tags. Normalization is pure and deterministic; the synthesized
// reservation-number fallback, its only nondeterminism, runs through
// injectable clock and random sources so tests stay exact.
package normalize

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/voyagekit/resdesk/pkg/booking"
)

// Count defaults. Counts feed downstream arithmetic, so they are never null:
// a reservation has at least one adult, and children/infants default to zero.
const (
	DefaultAdults   = 1
	DefaultChildren = 0
	DefaultInfants  = 0
)

// tmpPrefix marks synthesized reservation numbers so they are visibly
// distinguishable from vendor-issued ones.
const tmpPrefix = "TMP"

// Normalizer turns a raw extraction document into a typed record.
type Normalizer struct {
	now     func() time.Time
	randHex func(n int) string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock injects the clock used for the reservation-number fallback.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithRandHex injects the random-suffix source used for the
// reservation-number fallback.
func WithRandHex(fn func(n int) string) Option {
	return func(n *Normalizer) {
		n.randHex = fn
	}
}

// New creates a Normalizer with the given options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:     time.Now,
		randHex: randomHex,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize canonicalizes a raw extraction document. The result is a
// complete typed record: every recognized field is either a bounded value or
// absent, never raw vendor text. Normalizing an already-normalized document
// returns it unchanged, field for field, except that a missing reservation
// number is synthesized on the first pass.
func (n *Normalizer) Normalize(parsed booking.Document) *booking.Record {
	out := &booking.Record{}

	for key, val := range parsed {
		if !booking.IsRecognizedField(key) {
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[key] = val
		}
	}

	out.ReservationNo = cleanString(parsed["reservation_no"])
	if ch := cleanString(parsed["channel"]); ch != nil {
		tag := booking.ParseChannel(*ch).String()
		out.Channel = &tag
	}
	out.ProductName = cleanString(parsed["product_name"])
	out.OptionName = cleanString(parsed["option_name"])

	out.UsageDate = normalizeDate(parsed["usage_date"])
	out.UsageTime = normalizeTime(parsed["usage_time"])

	out.NameKo = cleanString(parsed["name_ko"])
	out.FirstName = cleanString(parsed["first_name"])
	out.LastName = cleanString(parsed["last_name"])
	out.Email = normalizeEmail(parsed["email"])
	out.Phone = normalizePhone(parsed["phone"])

	out.Adults = normalizeCount(parsed["adults"], DefaultAdults)
	out.Children = normalizeCount(parsed["children"], DefaultChildren)
	out.Infants = normalizeCount(parsed["infants"], DefaultInfants)

	out.AdultUnitPrice = normalizeAmount(parsed["adult_unit_price"])
	out.ChildUnitPrice = normalizeAmount(parsed["child_unit_price"])
	out.TotalAmount = normalizeAmount(parsed["total_amount"])
	out.Currency = normalizeCurrency(parsed["currency"])

	if ps := cleanString(parsed["payment_status"]); ps != nil {
		status := booking.ParsePaymentStatus(*ps).String()
		out.PaymentStatus = &status
	} else {
		status := booking.PaymentPending.String()
		out.PaymentStatus = &status
	}
	out.Memo = cleanString(parsed["memo"])

	// Guest count is always recomputed from the parts; any provided total is
	// discarded. Must run before price backfill, which divides by adults.
	n.deriveGuestCount(out)
	n.backfillUnitPrices(out)

	if out.ReservationNo == nil {
		synthesized := n.synthesizeReservationNo()
		out.ReservationNo = &synthesized
	}

	return out
}

// deriveGuestCount recomputes the authoritative guest total.
func (n *Normalizer) deriveGuestCount(rec *booking.Record) {
	total := *rec.Adults + *rec.Children + *rec.Infants
	rec.GuestCount = &total
}

// backfillUnitPrices derives the adult unit price from the total when the
// vendor did not state one, then fills the child unit price from the adult
// price for bookings that carry children.
func (n *Normalizer) backfillUnitPrices(rec *booking.Record) {
	if rec.AdultUnitPrice == nil && rec.TotalAmount != nil && *rec.Adults > 0 {
		derived := round2(*rec.TotalAmount / float64(*rec.Adults))
		rec.AdultUnitPrice = &derived
	}
	if rec.ChildUnitPrice == nil && rec.AdultUnitPrice != nil && *rec.Children > 0 {
		derived := *rec.AdultUnitPrice
		rec.ChildUnitPrice = &derived
	}
}

// synthesizeReservationNo builds a fallback number from the clock plus a
// short random suffix.
func (n *Normalizer) synthesizeReservationNo() string {
	return fmt.Sprintf("%s-%s-%s", tmpPrefix, n.now().UTC().Format("20060102150405"), strings.ToUpper(n.randHex(2)))
}

// cleanString folds a raw value to a trimmed string, or nil when the value
// is missing, not string-like, or blank.
func cleanString(v any) *string {
	s, ok := stringValue(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// stringValue extracts a string representation from a scalar raw value.
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

// normalizeAmount coerces a raw amount to a non-negative value rounded to
// two decimals. Non-numeric, negative, or missing input yields nil rather
// than zero, so "free" and "unknown" stay distinct.
func normalizeAmount(v any) *float64 {
	var amount float64
	switch t := v.(type) {
	case float64:
		amount = t
	case int:
		amount = float64(t)
	case int64:
		amount = float64(t)
	case string:
		s := strings.TrimSpace(width.Fold.String(t))
		s = stripCurrencyMarks(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		amount = parsed
	default:
		return nil
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil
	}
	rounded := round2(amount)
	return &rounded
}

// normalizeCount coerces a raw count to a non-negative integer, with an
// explicit per-field default instead of null.
func normalizeCount(v any, fallback int) *int {
	count := fallback
	switch t := v.(type) {
	case int:
		count = t
	case int64:
		count = int(t)
	case float64:
		if t == math.Trunc(t) {
			count = int(t)
		}
	case string:
		s := strings.TrimSpace(width.Fold.String(t))
		s = strings.TrimSuffix(s, "명") // "2명" = two persons
		s = strings.TrimSpace(s)
		if parsed, err := strconv.Atoi(s); err == nil {
			count = parsed
		}
	}
	if count < 0 {
		count = fallback
	}
	return &count
}

// normalizeCurrency upper-cases a currency code; anything that does not look
// like a 3-letter code maps through the common symbol spellings.
func normalizeCurrency(v any) *string {
	s := cleanString(v)
	if s == nil {
		return nil
	}
	code := strings.ToUpper(strings.TrimSpace(width.Fold.String(*s)))
	switch code {
	case "₩", "원", "KRW":
		code = "KRW"
	case "$", "USD":
		code = "USD"
	case "¥", "엔", "JPY":
		code = "JPY"
	case "€", "EUR":
		code = "EUR"
	}
	if len(code) != 3 {
		return nil
	}
	return &code
}

// stripCurrencyMarks removes currency symbols, thousands separators, and
// unit words commonly pasted along with amounts.
func stripCurrencyMarks(s string) string {
	replacer := strings.NewReplacer(
		",", "",
		"₩", "",
		"$", "",
		"¥", "",
		"€", "",
		"원", "",
		"krw", "",
		"KRW", "",
		"usd", "",
		"USD", "",
		" ", "",
	)
	return replacer.Replace(s)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is a broken platform; a constant suffix still
		// yields a usable, visibly temporary number.
		return strings.Repeat("0", n*2)
	}
	return hex.EncodeToString(buf)
}
