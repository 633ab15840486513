// Package money holds the two-currency amounts used by the fee ledger.
// LRD and USD are tracked side by side and never converted into each other.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code accepted by the ledger.
type Currency string

const (
	LRD Currency = "LRD"
	USD Currency = "USD"
)

// Currencies lists the supported currencies, primary first.
var Currencies = []Currency{LRD, USD}

// Amounts is a pair of per-currency amounts.
type Amounts struct {
	LRD decimal.Decimal `json:"lrd"`
	USD decimal.Decimal `json:"usd"`
}

// New builds Amounts from float literals. Intended for fixtures and tests.
func New(lrd, usd float64) Amounts {
	return Amounts{LRD: decimal.NewFromFloat(lrd), USD: decimal.NewFromFloat(usd)}
}

// Get returns the component for c.
func (a Amounts) Get(c Currency) decimal.Decimal {
	if c == USD {
		return a.USD
	}
	return a.LRD
}

// Add sums component-wise.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{LRD: a.LRD.Add(b.LRD), USD: a.USD.Add(b.USD)}
}

// Sub subtracts component-wise.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{LRD: a.LRD.Sub(b.LRD), USD: a.USD.Sub(b.USD)}
}

// IsZero reports whether both components are zero.
func (a Amounts) IsZero() bool {
	return a.LRD.IsZero() && a.USD.IsZero()
}

// AnyNegative reports whether either component is below zero.
func (a Amounts) AnyNegative() bool {
	return a.LRD.IsNegative() || a.USD.IsNegative()
}

// AnyPositive reports whether either component is above zero.
func (a Amounts) AnyPositive() bool {
	return a.LRD.IsPositive() || a.USD.IsPositive()
}

// Covers reports whether a settles due: every non-zero component of due is met
// by the matching component of a.
func (a Amounts) Covers(due Amounts) bool {
	for _, c := range Currencies {
		d := due.Get(c)
		if d.IsZero() {
			continue
		}
		if a.Get(c).LessThan(d) {
			return false
		}
	}
	return true
}

// Exceeds returns the first currency in which a is larger than limit.
func (a Amounts) Exceeds(limit Amounts) (Currency, bool) {
	for _, c := range Currencies {
		if a.Get(c).GreaterThan(limit.Get(c)) {
			return c, true
		}
	}
	return "", false
}

// Round2 rounds both components to two decimal places.
func (a Amounts) Round2() Amounts {
	return Amounts{LRD: a.LRD.Round(2), USD: a.USD.Round(2)}
}

func (a Amounts) String() string {
	return fmt.Sprintf("%s %s / %s %s", LRD, a.LRD.StringFixed(2), USD, a.USD.StringFixed(2))
}
