package dedupe

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Key builds the deterministic fingerprint of a bank transaction:
// company, account, posting date, signed amount at 2 decimals, and
// reference number. Two transactions with the same key are the same
// economic event.
func Key(company, bankAccount string, date time.Time, deposit, withdrawal decimal.Decimal, reference string) string {
	amount := deposit.Sub(withdrawal)
	dateStr := ""
	if !date.IsZero() {
		dateStr = date.Format("2006-01-02")
	}
	return strings.Join([]string{
		company,
		bankAccount,
		dateStr,
		amount.StringFixed(2),
		strings.TrimSpace(reference),
	}, "::")
}

// UniqueKey is the store-level uniqueness key for a transaction. When
// the reference number is empty the synthesized description joins the
// key, so two distinct reference-less lines with different free text
// are never merged.
func UniqueKey(txn model.Transaction) string {
	key := Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, txn.Reference)
	if strings.TrimSpace(txn.Reference) == "" {
		key += "::" + txn.Description
	}
	return key
}
