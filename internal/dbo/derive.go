package dbo

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Period is the statement date range derived from document posting
// dates (min/max), falling back to the header dates when present.
type Period struct {
	From time.Time
	To   time.Time
}

var ibanPattern = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)

// isIBAN reports whether an account string is IBAN-shaped.
func isIBAN(s string) bool {
	return ibanPattern.MatchString(strings.ToUpper(strings.ReplaceAll(s, " ", "")))
}

// Derive converts document blocks into transactions in file order,
// inferring direction relative to the header account and carrying a
// running balance seeded from the opening balance.
//
// Blocks where neither side matches our account, or whose amount is
// zero, still produce a zero-amount transaction with no counterparty
// role: they keep the running balance continuous and the audit trail
// complete.
func Derive(header Header, blocks []DocumentBlock) ([]model.Transaction, Period, error) {
	txns := make([]model.Transaction, 0, len(blocks))
	balance := header.OpeningBalance
	var period Period

	for i, block := range blocks {
		docNumber := strings.TrimSpace(block[KeyDocumentNumber])
		dateWritten := strings.TrimSpace(block[KeyDateWritten])
		docDate := strings.TrimSpace(block[KeyDocumentDate])

		// DATEWRITTEN is a fallback for an absent document date only; a
		// malformed date aborts the whole statement.
		postingDate, err := ParseDate(docDate)
		if err != nil {
			return nil, Period{}, fmt.Errorf("document %d: bad date %q: %w", i+1, docDate, err)
		}
		if postingDate.IsZero() {
			postingDate, err = ParseDate(dateWritten)
			if err != nil {
				return nil, Period{}, fmt.Errorf("document %d: bad date %q: %w", i+1, dateWritten, err)
			}
		}

		amount, err := parseAmount(block[KeyAmount])
		if err != nil {
			return nil, Period{}, fmt.Errorf("document %d: bad amount %q", i+1, block[KeyAmount])
		}

		payerAccount := strings.TrimSpace(block[KeyPayerAccount])
		receiverAccount := strings.TrimSpace(block[KeyReceiverAccount])

		txn := model.Transaction{
			Date:      postingDate,
			Reference: docNumber,
			Currency:  header.Currency,
			Status:    model.TxnStatusPending,
		}

		var cpAccount string
		switch {
		case header.Account != "" && payerAccount == header.Account && !amount.IsZero():
			// We paid: outgoing.
			txn.Withdrawal = amount
			balance = balance.Sub(amount)
			txn.Role = model.RoleReceiver
			txn.CounterpartyName = strings.TrimSpace(block[KeyReceiver])
			cpAccount = receiverAccount
			txn.CounterpartyTax = strings.TrimSpace(block[KeyReceiverFCode])
			txn.CounterpartyBank = strings.TrimSpace(block[KeyReceiverBank])
			txn.CounterpartyBIC = strings.TrimSpace(block[KeyReceiverBankBIC])
		case header.Account != "" && receiverAccount == header.Account && !amount.IsZero():
			// We were paid: incoming.
			txn.Deposit = amount
			balance = balance.Add(amount)
			txn.Role = model.RolePayer
			txn.CounterpartyName = strings.TrimSpace(block[KeyPayer])
			cpAccount = payerAccount
			txn.CounterpartyTax = strings.TrimSpace(block[KeyPayerFCode])
			txn.CounterpartyBank = strings.TrimSpace(block[KeyPayerBank])
			txn.CounterpartyBIC = strings.TrimSpace(block[KeyPayerBankBIC])
		}

		if isIBAN(cpAccount) {
			txn.CounterpartyIBAN = cpAccount
		} else {
			txn.CounterpartyAcct = cpAccount
		}
		txn.BankBalance = balance

		txn.Description = describe(block, txn, amount)

		if !postingDate.IsZero() {
			if period.From.IsZero() || postingDate.Before(period.From) {
				period.From = postingDate
			}
			if period.To.IsZero() || postingDate.After(period.To) {
				period.To = postingDate
			}
		}

		txns = append(txns, txn)
	}

	if !header.BeginDate.IsZero() {
		period.From = header.BeginDate
	}
	if !header.EndDate.IsZero() {
		period.To = header.EndDate
	}

	return txns, period, nil
}
