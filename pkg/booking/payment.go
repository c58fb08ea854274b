package booking

import "strings"

// PaymentStatus is the restricted payment vocabulary.
type PaymentStatus string

// String returns the string representation of a PaymentStatus.
func (p PaymentStatus) String() string {
	return string(p)
}

// Payment statuses. Unrecognized input defaults to pending: silently
// upgrading a reservation to confirmed is the higher-risk failure.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentStatuses lists every member of the restricted set.
var PaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentConfirmed,
	PaymentCancelled,
	PaymentRefunded,
}

// paymentAliases maps lower-cased bilingual words to canonical statuses.
// Canonical values map to themselves so tagging is idempotent.
var paymentAliases = map[string]PaymentStatus{
	"pending":    PaymentPending,
	"unpaid":     PaymentPending,
	"입금대기":       PaymentPending,
	"입금 대기":      PaymentPending,
	"결제대기":       PaymentPending,
	"미결제":        PaymentPending,
	"confirmed":  PaymentConfirmed,
	"paid":       PaymentConfirmed,
	"complete":   PaymentConfirmed,
	"completed":  PaymentConfirmed,
	"결제완료":       PaymentConfirmed,
	"결제 완료":      PaymentConfirmed,
	"입금완료":       PaymentConfirmed,
	"입금 완료":      PaymentConfirmed,
	"cancelled":  PaymentCancelled,
	"canceled":   PaymentCancelled,
	"취소":         PaymentCancelled,
	"예약취소":       PaymentCancelled,
	"결제취소":       PaymentCancelled,
	"refunded":   PaymentRefunded,
	"refund":     PaymentRefunded,
	"환불":         PaymentRefunded,
	"환불완료":       PaymentRefunded,
}

// ParsePaymentStatus maps a free-text payment word to the restricted set.
func ParsePaymentStatus(raw string) PaymentStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := paymentAliases[key]; ok {
		return status
	}
	return PaymentPending
}

// IsValidPaymentStatus reports whether s is a member of the restricted set.
func IsValidPaymentStatus(s string) bool {
	for _, status := range PaymentStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}
