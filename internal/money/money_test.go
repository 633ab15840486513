package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCovers(t *testing.T) {
	tests := []struct {
		name string
		paid Amounts
		due  Amounts
		want bool
	}{
		{"exact LRD", New(1000, 0), New(1000, 0), true},
		{"short LRD", New(400, 0), New(1000, 0), false},
		{"USD paid on LRD invoice", New(0, 50), New(1000, 0), false},
		{"both met", New(1000, 20), New(1000, 20), true},
		{"one of two met", New(1000, 0), New(1000, 20), false},
		{"nothing due", Amounts{}, Amounts{}, true},
		{"over", New(1500, 0), New(1000, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.paid.Covers(tt.due))
		})
	}
}

func TestArithmeticKeepsCurrenciesApart(t *testing.T) {
	a := New(100, 5)
	b := New(50.25, 1.5)
	sum := a.Add(b)
	assert.True(t, sum.LRD.Equal(decimal.RequireFromString("150.25")))
	assert.True(t, sum.USD.Equal(decimal.RequireFromString("6.5")))

	diff := b.Sub(a)
	assert.True(t, diff.AnyNegative())
	assert.False(t, diff.AnyPositive())
}

func TestExceeds(t *testing.T) {
	c, ok := New(10, 3).Exceeds(New(10, 2))
	assert.True(t, ok)
	assert.Equal(t, USD, c)

	_, ok = New(10, 2).Exceeds(New(10, 2))
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "LRD 12.50 / USD 0.00", New(12.5, 0).String())
}
