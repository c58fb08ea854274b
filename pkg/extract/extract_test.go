package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagekit/resdesk/pkg/errors"
)

func TestFallbackNeverFails(t *testing.T) {
	res, err := Fallback{}.Extract(context.Background(), "예약 문자 원문")

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Fields)
	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Notes)
}

func TestParseOracleResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, res *Result)
	}{
		{
			name: "plain json",
			raw:  `{"fields": {"reservation_no": "NV-001", "adults": 2}, "confidence": 0.92, "notes": "clear text"}`,
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, "NV-001", res.Fields["reservation_no"])
				assert.Equal(t, float64(2), res.Fields["adults"])
				assert.Equal(t, 0.92, res.Confidence)
				assert.Equal(t, "clear text", res.Notes)
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"fields\": {\"product_name\": \"서울 시티 투어\"}, \"confidence\": 0.5}\n```",
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, "서울 시티 투어", res.Fields["product_name"])
				assert.Equal(t, 0.5, res.Confidence)
			},
		},
		{
			name: "json wrapped in prose",
			raw:  `Here is the extraction: {"fields": {"channel": "naver"}, "confidence": 1} Hope this helps.`,
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, "naver", res.Fields["channel"])
			},
		},
		{
			name: "confidence clamped high",
			raw:  `{"fields": {}, "confidence": 3.5}`,
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, 1.0, res.Confidence)
			},
		},
		{
			name: "confidence clamped low",
			raw:  `{"fields": {}, "confidence": -0.4}`,
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, 0.0, res.Confidence)
			},
		},
		{
			name: "unknown keys preserved",
			raw:  `{"fields": {"pickup_spot": "광화문역"}, "confidence": 0.7}`,
			check: func(t *testing.T, res *Result) {
				assert.Equal(t, "광화문역", res.Fields["pickup_spot"])
			},
		},
		{
			name: "missing fields object",
			raw:  `{"confidence": 0.2}`,
			check: func(t *testing.T, res *Result) {
				assert.Empty(t, res.Fields)
				assert.Equal(t, 0.2, res.Confidence)
			},
		},
		{
			name:    "not json at all",
			raw:     "I could not process this request.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseOracleResponse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "")

	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
