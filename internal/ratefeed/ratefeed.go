// Package ratefeed defines the exchange-rate lookup boundary. The
// import core only consumes the Source interface; the HTTP feed and
// its cache live outside this module. Rates are quoted against MDL:
// one unit of a currency equals N leu.
package ratefeed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrBadKey is returned when the shared secret does not match.
var ErrBadKey = errors.New("ratefeed: invalid key")

// UnknownCurrencyError is returned when a requested currency has no
// quoted rate.
type UnknownCurrencyError struct {
	Currency string
}

func (e *UnknownCurrencyError) Error() string {
	return "ratefeed: no rate for " + e.Currency
}

// Request is a keyed rate lookup.
type Request struct {
	Date time.Time
	From string
	To   string
	Key  string // shared secret
}

// Source returns the numeric exchange rate for a request, or a
// rejection when the key or a currency is unrecognized.
type Source interface {
	Rate(req Request) (decimal.Decimal, error)
}

// StaticSource is a Source over a fixed table of MDL quotes, used in
// tests and offline setups.
type StaticSource struct {
	key    string
	quotes map[string]decimal.Decimal // currency -> MDL per unit
}

// NewStaticSource creates a StaticSource. Quote keys are uppercased.
func NewStaticSource(key string, quotes map[string]decimal.Decimal) *StaticSource {
	normalized := make(map[string]decimal.Decimal, len(quotes))
	for code, rate := range quotes {
		normalized[strings.ToUpper(code)] = rate
	}
	return &StaticSource{key: key, quotes: normalized}
}

// Rate computes the from->to rate, triangulating through MDL.
func (s *StaticSource) Rate(req Request) (decimal.Decimal, error) {
	if strings.TrimSpace(req.Key) != s.key {
		return decimal.Zero, ErrBadKey
	}
	return CrossRate(s.quotes, req.From, req.To)
}

// CrossRate derives the from->to rate from a table of MDL quotes.
func CrossRate(quotes map[string]decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fc := strings.ToUpper(strings.TrimSpace(from))
	tc := strings.ToUpper(strings.TrimSpace(to))

	if fc == "" || tc == "" {
		return decimal.Zero, fmt.Errorf("ratefeed: missing currency in request")
	}
	if fc == tc {
		return decimal.NewFromInt(1), nil
	}

	one := decimal.NewFromInt(1)
	switch {
	case fc == "MDL":
		rate, ok := quotes[tc]
		if !ok {
			return decimal.Zero, &UnknownCurrencyError{Currency: tc}
		}
		return one.Div(rate), nil
	case tc == "MDL":
		rate, ok := quotes[fc]
		if !ok {
			return decimal.Zero, &UnknownCurrencyError{Currency: fc}
		}
		return rate, nil
	default:
		fromRate, ok := quotes[fc]
		if !ok {
			return decimal.Zero, &UnknownCurrencyError{Currency: fc}
		}
		toRate, ok := quotes[tc]
		if !ok {
			return decimal.Zero, &UnknownCurrencyError{Currency: tc}
		}
		return fromRate.Div(toRate), nil
	}
}
