package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain", "1234.56", 1234.56, true},
		{"indian grouping", "1,60,000", 160000, true},
		{"rupee symbol", "₹ 9,900.00", 9900, true},
		{"dollar symbol", "$586.71", 586.71, true},
		{"dash placeholder", "-", 0, true},
		{"em dash placeholder", "—", 0, true},
		{"empty", "", 0, true},
		{"negative", "-250.00", -250, true},
		{"cr suffix", "500.00Cr", 500, true},
		{"garbage", "abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestParseOCRAmount(t *testing.T) {
	got, ok := ParseOCRAmount("5O0.0O")
	assert.True(t, ok)
	assert.InDelta(t, 500.0, got, 0.001)

	got, ok = ParseOCRAmount("§86.71")
	assert.True(t, ok)
	assert.InDelta(t, 586.71, got, 0.001)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.56, Round2(1.555))
	assert.Equal(t, -1.56, Round2(-1.555))
	assert.Equal(t, 0.333, Round3(1.0/3.0))
	assert.Equal(t, 0.3, Sum2(0.1, 0.1, 0.1))
}
