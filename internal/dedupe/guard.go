package dedupe

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Query carries the fingerprint filters for an existence lookup.
// Description is set only when the reference number is empty.
type Query struct {
	Key         string
	Description string
}

// Finder is the store capability the guard needs: find an active
// (non-cancelled) transaction matching the fingerprint.
type Finder interface {
	FindByFingerprint(q Query) (model.Transaction, bool, error)
}

// Notice is a human-readable record of one skipped duplicate line.
type Notice struct {
	RecordID   string
	Date       time.Time
	Deposit    decimal.Decimal
	Withdrawal decimal.Decimal
	Reference  string
}

func (n Notice) String() string {
	ref := strings.TrimSpace(n.Reference)
	if ref == "" {
		ref = "-"
	}
	date := "-"
	if !n.Date.IsZero() {
		date = n.Date.Format("2006-01-02")
	}
	return fmt.Sprintf(
		"duplicate statement line skipped: existing record %s, date %s, amount %s, reference %s",
		n.RecordID, date, n.Deposit.Sub(n.Withdrawal).StringFixed(2), ref,
	)
}

// Guard checks candidate transactions against previously stored ones.
type Guard struct {
	finder Finder
}

// NewGuard creates a Guard over a store.
func NewGuard(f Finder) *Guard {
	return &Guard{finder: f}
}

// Check returns a Notice when an active transaction with the same
// fingerprint already exists, nil otherwise. A duplicate is a soft
// outcome: the caller skips the line and continues the import.
func (g *Guard) Check(txn model.Transaction) (*Notice, error) {
	q := Query{
		Key: Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, txn.Reference),
	}
	if strings.TrimSpace(txn.Reference) == "" {
		q.Description = txn.Description
	}

	existing, found, err := g.finder.FindByFingerprint(q)
	if err != nil {
		return nil, fmt.Errorf("fingerprint lookup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &Notice{
		RecordID:   existing.ID,
		Date:       existing.Date,
		Deposit:    existing.Deposit,
		Withdrawal: existing.Withdrawal,
		Reference:  existing.Reference,
	}, nil
}
