package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagekit/resdesk/pkg/booking"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func fixedHex(n int) string {
	return "a1b2c3d4"[:n*2]
}

func testNormalizer() *Normalizer {
	return New(WithClock(fixedClock), WithRandHex(fixedHex))
}

func TestNormalizeMessyExtraction(t *testing.T) {
	parsed := booking.Document{
		"reservation_no": "  NV-20250310-001 ",
		"channel":        "네이버",
		"product_name":   "서울 시티 투어",
		"usage_date":     "2025년 3월 15일",
		"usage_time":     "오후 2시 30분",
		"name_ko":        "김민수",
		"phone":          "+82 10-1234-5678",
		"email":          "MinSu.Kim@Example.COM",
		"adults":         "2명",
		"children":       float64(1),
		"total_amount":   "₩150,000",
		"currency":       "원",
		"payment_status": "결제완료",
	}

	rec := testNormalizer().Normalize(parsed)

	require.NotNil(t, rec.ReservationNo)
	assert.Equal(t, "NV-20250310-001", *rec.ReservationNo)
	require.NotNil(t, rec.Channel)
	assert.Equal(t, "naver", *rec.Channel)
	require.NotNil(t, rec.UsageDate)
	assert.Equal(t, "2025-03-15", *rec.UsageDate)
	require.NotNil(t, rec.UsageTime)
	assert.Equal(t, "14:30", *rec.UsageTime)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "010-1234-5678", *rec.Phone)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "minsu.kim@example.com", *rec.Email)
	require.NotNil(t, rec.Adults)
	assert.Equal(t, 2, *rec.Adults)
	require.NotNil(t, rec.Children)
	assert.Equal(t, 1, *rec.Children)
	require.NotNil(t, rec.Infants)
	assert.Equal(t, 0, *rec.Infants)
	require.NotNil(t, rec.GuestCount)
	assert.Equal(t, 3, *rec.GuestCount)
	require.NotNil(t, rec.TotalAmount)
	assert.Equal(t, 150000.0, *rec.TotalAmount)
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "KRW", *rec.Currency)
	require.NotNil(t, rec.PaymentStatus)
	assert.Equal(t, "confirmed", *rec.PaymentStatus)

	// Unit price backfill: total / adults, child price copied from adult.
	require.NotNil(t, rec.AdultUnitPrice)
	assert.Equal(t, 75000.0, *rec.AdultUnitPrice)
	require.NotNil(t, rec.ChildUnitPrice)
	assert.Equal(t, 75000.0, *rec.ChildUnitPrice)
}

func TestNormalizeIdempotent(t *testing.T) {
	parsed := booking.Document{
		"reservation_no": "KL-889-22",
		"channel":        "klook",
		"product_name":   "남이섬 당일치기",
		"usage_date":     "2025/04/01",
		"usage_time":     "0900",
		"adults":         float64(2),
		"children":       float64(2),
		"total_amount":   "88,000원",
		"payment_status": "paid",
	}

	n := testNormalizer()
	first := n.Normalize(parsed)
	second := n.Normalize(first.Document())

	assert.Equal(t, first, second)
}

func TestNormalizeSynthesizesReservationNo(t *testing.T) {
	rec := testNormalizer().Normalize(booking.Document{
		"product_name": "한강 야경 크루즈",
	})

	require.NotNil(t, rec.ReservationNo)
	assert.Equal(t, "TMP-20250314092653-A1B2", *rec.ReservationNo)

	// A second pass must not reissue the number.
	again := testNormalizer().Normalize(rec.Document())
	require.NotNil(t, again.ReservationNo)
	assert.Equal(t, *rec.ReservationNo, *again.ReservationNo)
}

func TestNormalizeDefaultsAndDerivedCount(t *testing.T) {
	rec := testNormalizer().Normalize(booking.Document{
		"guest_count": float64(7), // stated totals are discarded
	})

	require.NotNil(t, rec.Adults)
	assert.Equal(t, 1, *rec.Adults)
	require.NotNil(t, rec.GuestCount)
	assert.Equal(t, 1, *rec.GuestCount)
	require.NotNil(t, rec.PaymentStatus)
	assert.Equal(t, "pending", *rec.PaymentStatus)
}

func TestNormalizeUnknownChannelAndVendorText(t *testing.T) {
	rec := testNormalizer().Normalize(booking.Document{
		"channel":      "somenewplatform",
		"total_amount": "가격 문의",
		"adults":       "-3",
	})

	require.NotNil(t, rec.Channel)
	assert.Equal(t, "other", *rec.Channel)
	assert.Nil(t, rec.TotalAmount)
	require.NotNil(t, rec.Adults)
	assert.Equal(t, 1, *rec.Adults)
}

func TestNormalizeKeepsUnrecognizedFields(t *testing.T) {
	rec := testNormalizer().Normalize(booking.Document{
		"product_name": "경복궁 야간개장",
		"pickup_spot":  "광화문역 2번 출구",
	})

	require.NotNil(t, rec.Extra)
	assert.Equal(t, "광화문역 2번 출구", rec.Extra["pickup_spot"])
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		null  bool
	}{
		{name: "iso", input: "2025-03-15", want: "2025-03-15"},
		{name: "dotted", input: "2025.3.5", want: "2025-03-05"},
		{name: "compact", input: "20250315", want: "2025-03-15"},
		{name: "korean", input: "2025년 3월 15일", want: "2025-03-15"},
		{name: "english month", input: "Mar 15, 2025", want: "2025-03-15"},
		{name: "english day first", input: "15 March 2025", want: "2025-03-15"},
		{name: "slashed unambiguous", input: "15/03/2025", want: "2025-03-15"},
		{name: "slashed same both ways", input: "3/3/2025", want: "2025-03-03"},
		{name: "slashed ambiguous", input: "03/04/2025", null: true},
		{name: "invalid month", input: "2025-13-45", null: true},
		{name: "not a date", input: "다음주 토요일", null: true},
		{name: "missing", input: nil, null: true},
		{name: "full width digits", input: "２０２５-０３-１５", want: "2025-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeDate(tt.input)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		null  bool
	}{
		{name: "clock", input: "15:04", want: "15:04"},
		{name: "compact", input: "0930", want: "09:30"},
		{name: "meridiem", input: "3:04 PM", want: "15:04"},
		{name: "meridiem hour only", input: "11am", want: "11:00"},
		{name: "noon", input: "12 PM", want: "12:00"},
		{name: "midnight", input: "12:00 AM", want: "00:00"},
		{name: "korean hour", input: "15시", want: "15:00"},
		{name: "korean full", input: "오후 2시 30분", want: "14:30"},
		{name: "korean morning", input: "오전 9시", want: "09:00"},
		{name: "hour out of range", input: "25:00", null: true},
		{name: "minute out of range", input: "12:75", null: true},
		{name: "not a time", input: "저녁쯤", null: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeTime(tt.input)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		null  bool
	}{
		{name: "country prefix", input: "+82 10-1234-5678", want: "010-1234-5678"},
		{name: "bare digits", input: "01012345678", want: "010-1234-5678"},
		{name: "already formatted", input: "010-1234-5678", want: "010-1234-5678"},
		{name: "landline untouched", input: "02-123-4567", want: "021234567"},
		{name: "decorated", input: "(010) 1234 5678", want: "010-1234-5678"},
		{name: "empty", input: "  ", null: true},
		{name: "missing", input: nil, null: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePhone(tt.input)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	valid := normalizeEmail(" Guest@Example.com ")
	require.NotNil(t, valid)
	assert.Equal(t, "guest@example.com", *valid)

	assert.Nil(t, normalizeEmail("not-an-email"))
	assert.Nil(t, normalizeEmail("a@b"))
	assert.Nil(t, normalizeEmail(nil))
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		null  bool
	}{
		{name: "numeric", input: float64(50000), want: 50000},
		{name: "currency string", input: "₩50,000", want: 50000},
		{name: "suffix unit", input: "88,000원", want: 88000},
		{name: "rounds to cents", input: 33.333, want: 33.33},
		{name: "zero stays zero", input: float64(0), want: 0},
		{name: "negative", input: float64(-100), null: true},
		{name: "vendor text", input: "문의", null: true},
		{name: "missing", input: nil, null: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeAmount(tt.input)
			if tt.null {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
