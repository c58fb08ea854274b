// Package validate checks an effective reservation record before commit. A
// validation run is total: both the schema pass and the business pass always
// execute, and every finding is returned in one Result so a reviewer can fix
// everything at once. Blocking findings are Errors; advisory findings are
// Flags and never prevent commit.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/voyagekit/resdesk/pkg/booking"
)

// Validation bounds. The price tolerance is a fixed absolute amount:
// currency rounding and platform fees legitimately produce small gaps.
const (
	PriceTolerance      = 1.00
	MinReservationNoLen = 6
)

// requiredFields must be present on any committable record.
var requiredFields = []string{
	"reservation_no",
	"channel",
	"product_name",
	"usage_date",
	"guest_count",
	"payment_status",
	"total_amount",
}

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	emailRe = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// Issue is a single blocking finding, addressed by field path.
type Issue struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// Result is the complete outcome of one validation run.
type Result struct {
	Valid   bool           `json:"valid" yaml:"valid"`
	Errors  []Issue        `json:"errors,omitempty" yaml:"errors,omitempty"`
	Flags   []booking.Flag `json:"flags,omitempty" yaml:"flags,omitempty"`
	Summary string         `json:"summary" yaml:"summary"`
}

// Validator runs the schema and business passes. The clock is injectable so
// the stale-date check is testable.
type Validator struct {
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock injects the clock used by the stale-usage-date check.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New creates a Validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs both passes over the effective record and never fails:
// findings come back as data, since a rejected commit is an expected outcome
// the caller branches on.
func (v *Validator) Validate(rec *booking.Record) *Result {
	res := &Result{}
	if rec == nil {
		rec = &booking.Record{}
	}

	v.schemaPass(rec, res)
	v.businessPass(rec, res)

	res.Valid = len(res.Errors) == 0
	res.Summary = summarize(res)
	return res
}

// schemaPass checks presence, restricted vocabularies, numeric sign, and the
// strict date/time/email shapes. Every failure here is blocking.
func (v *Validator) schemaPass(rec *booking.Record, res *Result) {
	doc := rec.Document()
	for _, field := range requiredFields {
		if _, ok := doc[field]; !ok {
			res.Errors = append(res.Errors, Issue{Path: field, Message: "required field is missing"})
		}
	}

	if rec.Channel != nil && !booking.IsValidChannel(*rec.Channel) {
		res.Errors = append(res.Errors, Issue{Path: "channel", Message: fmt.Sprintf("unknown channel %q", *rec.Channel)})
	}
	if rec.PaymentStatus != nil && !booking.IsValidPaymentStatus(*rec.PaymentStatus) {
		res.Errors = append(res.Errors, Issue{Path: "payment_status", Message: fmt.Sprintf("unknown payment status %q", *rec.PaymentStatus)})
	}

	checkCount := func(path string, val *int) {
		if val != nil && *val < 0 {
			res.Errors = append(res.Errors, Issue{Path: path, Message: "must not be negative"})
		}
	}
	checkCount("adults", rec.Adults)
	checkCount("children", rec.Children)
	checkCount("infants", rec.Infants)
	checkCount("guest_count", rec.GuestCount)

	checkAmount := func(path string, val *float64) {
		if val != nil && *val < 0 {
			res.Errors = append(res.Errors, Issue{Path: path, Message: "must not be negative"})
		}
	}
	checkAmount("adult_unit_price", rec.AdultUnitPrice)
	checkAmount("child_unit_price", rec.ChildUnitPrice)
	checkAmount("total_amount", rec.TotalAmount)

	if rec.UsageDate != nil && !validDate(*rec.UsageDate) {
		res.Errors = append(res.Errors, Issue{Path: "usage_date", Message: "must be a calendar date in YYYY-MM-DD form"})
	}
	if rec.UsageTime != nil && !timeRe.MatchString(*rec.UsageTime) {
		res.Errors = append(res.Errors, Issue{Path: "usage_time", Message: "must be a time in HH:MM form"})
	}
	if rec.Email != nil && !emailRe.MatchString(*rec.Email) {
		res.Errors = append(res.Errors, Issue{Path: "email", Message: "must be a plain local@domain address"})
	}
}

// businessPass checks cross-field consistency. Only the headcount rule
// blocks; a mismatch there means the pipeline was bypassed. Everything else
// is an advisory flag.
func (v *Validator) businessPass(rec *booking.Record, res *Result) {
	if rec.GuestCount != nil {
		sum := intOrZero(rec.Adults) + intOrZero(rec.Children) + intOrZero(rec.Infants)
		if *rec.GuestCount != sum {
			res.Errors = append(res.Errors, Issue{
				Path:    "guest_count",
				Message: fmt.Sprintf("guest count %d does not equal adults+children+infants (%d)", *rec.GuestCount, sum),
			})
		}
	}

	if rec.NameKo == nil && rec.FirstName == nil {
		res.Flags = append(res.Flags, booking.FlagMissingName)
	}
	if rec.Email == nil && rec.Phone == nil {
		res.Flags = append(res.Flags, booking.FlagMissingContact)
	}
	if rec.ProductName == nil {
		res.Flags = append(res.Flags, booking.FlagMissingProduct)
	}
	if rec.UsageDate == nil {
		res.Flags = append(res.Flags, booking.FlagMissingUsageDate)
	}

	if rec.TotalAmount != nil && rec.AdultUnitPrice != nil {
		expected := *rec.AdultUnitPrice * float64(intOrZero(rec.Adults))
		if rec.ChildUnitPrice != nil {
			expected += *rec.ChildUnitPrice * float64(intOrZero(rec.Children))
		}
		gap := *rec.TotalAmount - expected
		if gap < 0 {
			gap = -gap
		}
		if gap > PriceTolerance {
			res.Flags = append(res.Flags, booking.FlagPriceMismatch)
		}
	}

	if rec.UsageDate != nil {
		if usage, err := time.Parse("2006-01-02", *rec.UsageDate); err == nil {
			today := v.now().UTC().Truncate(24 * time.Hour)
			if usage.Before(today) {
				res.Flags = append(res.Flags, booking.FlagStaleUsageDate)
			}
		}
	}

	if rec.ReservationNo != nil && len(*rec.ReservationNo) < MinReservationNoLen {
		res.Flags = append(res.Flags, booking.FlagShortReservationNo)
	}
}

// validDate accepts strict YYYY-MM-DD that is also a real calendar date.
func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func summarize(res *Result) string {
	if len(res.Errors) == 0 && len(res.Flags) == 0 {
		return "valid"
	}
	parts := make([]string, 0, 2)
	if len(res.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d blocking error(s)", len(res.Errors)))
	}
	if len(res.Flags) > 0 {
		parts = append(parts, fmt.Sprintf("%d advisory flag(s)", len(res.Flags)))
	}
	return strings.Join(parts, ", ")
}
