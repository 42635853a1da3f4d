package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/model"
)

// ValidationError describes a single posting invariant violation.
type ValidationError struct {
	Invariant   int
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d: %s", e.Invariant, e.Description)
}

// ValidatePosting enforces the double-entry invariants on a posting
// before it is stored.
func ValidatePosting(p model.Posting) []ValidationError {
	var errs []ValidationError

	// Invariant 1: at least two legs.
	if len(p.Legs) < 2 {
		errs = append(errs, ValidationError{
			Invariant:   1,
			Description: fmt.Sprintf("posting has %d legs, need at least 2", len(p.Legs)),
		})
	}

	// Invariant 2: legs balance (sum of debits == sum of credits).
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, leg := range p.Legs {
		totalDebit = totalDebit.Add(leg.Debit)
		totalCredit = totalCredit.Add(leg.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		errs = append(errs, ValidationError{
			Invariant:   2,
			Description: fmt.Sprintf("debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
		})
	}

	two := decimal.NewFromInt(100)
	for _, leg := range p.Legs {
		// Invariant 3: exactly one of debit/credit per leg.
		hasDebit := !leg.Debit.IsZero()
		hasCredit := !leg.Credit.IsZero()
		if hasDebit == hasCredit {
			errs = append(errs, ValidationError{
				Invariant:   3,
				Description: fmt.Sprintf("leg %q must have exactly one of debit or credit", leg.Account),
			})
		}

		// Invariant 4: no more than 2 decimal places.
		for _, amt := range []decimal.Decimal{leg.Debit, leg.Credit} {
			if !amt.IsZero() && !amt.Mul(two).Equal(amt.Mul(two).Floor()) {
				errs = append(errs, ValidationError{
					Invariant:   4,
					Description: fmt.Sprintf("leg %q amount %s has more than 2 decimal places", leg.Account, amt),
				})
			}
		}
	}

	return errs
}
