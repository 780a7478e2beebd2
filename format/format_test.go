package format_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/mortgage-bonus/format"
)

func TestEUR_UsesCommaDecimalsAndEuroSign(t *testing.T) {
	got := format.EUR(decimal.RequireFromString("1095.104"))

	assert.True(t, strings.HasSuffix(got, "€"), got)
	assert.Contains(t, got, ",10")
	assert.NotContains(t, got, ".10")
}

func TestEUR_Negative(t *testing.T) {
	got := format.EUR(decimal.RequireFromString("-12.5"))
	assert.Contains(t, got, "12,50")
	assert.Contains(t, got, "-")
}

func TestPct(t *testing.T) {
	assert.Contains(t, format.Pct(decimal.RequireFromString("2.7")), "2,7")
	assert.True(t, strings.HasSuffix(format.Pct(decimal.RequireFromString("1.85")), "%"))
	assert.Contains(t, format.Pct(decimal.RequireFromString("0.1234")), "0,123")
}

func TestMonths(t *testing.T) {
	assert.Equal(t, "360 meses", format.Months(360))
}
