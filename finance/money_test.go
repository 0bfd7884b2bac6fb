package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeso(t *testing.T) {
	cases := map[string]string{
		"0":           "₱0.00",
		"12.5":        "₱12.50",
		"999":         "₱999.00",
		"1000":        "₱1,000.00",
		"999.995":     "₱1,000.00",
		"1234567.891": "₱1,234,567.89",
		"-1500":       "₱-1,500.00",
		"-0.001":      "₱0.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Peso(decimal.RequireFromString(in)), in)
	}
}

func TestSignedPeso(t *testing.T) {
	assert.Equal(t, "₱+16,666.67", SignedPeso(decimal.RequireFromString("16666.6667")))
	assert.Equal(t, "₱-250.00", SignedPeso(decimal.NewFromInt(-250)))
	assert.Equal(t, "₱+0.00", SignedPeso(decimal.Zero))
}
