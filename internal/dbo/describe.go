package dbo

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/model"
)

// describe synthesizes the human-readable transaction description.
// Lines are emitted in fixed order and only when their source value is
// non-empty; the single blank line separates the free-text ground from
// the structured fields.
func describe(block DocumentBlock, txn model.Transaction, amount decimal.Decimal) string {
	var lines []string

	if ground := strings.TrimSpace(block[KeyGround]); ground != "" {
		lines = append(lines, ground, "")
	}

	if !amount.IsZero() {
		lines = append(lines, "Amount: "+amount.StringFixed(2))
	}
	if txn.Reference != "" {
		lines = append(lines, "Document Number: "+txn.Reference)
	}
	if dateWritten := strings.TrimSpace(block[KeyDateWritten]); dateWritten != "" {
		lines = append(lines, "Date Written: "+dateWritten)
	}

	cpAccount := txn.CounterpartyAcct
	if cpAccount == "" {
		cpAccount = txn.CounterpartyIBAN
	}
	if txn.Role != model.RoleNone {
		role := string(txn.Role)
		if txn.CounterpartyName != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", role, txn.CounterpartyName))
		}
		if txn.CounterpartyTax != "" {
			lines = append(lines, fmt.Sprintf("%s IDNO: %s", role, txn.CounterpartyTax))
		}
		if cpAccount != "" {
			lines = append(lines, fmt.Sprintf("%s Account: %s", role, cpAccount))
		}
		if txn.CounterpartyBank != "" {
			lines = append(lines, fmt.Sprintf("%s Bank: %s", role, txn.CounterpartyBank))
		}
		if txn.CounterpartyBIC != "" {
			lines = append(lines, fmt.Sprintf("%s Bank BIC: %s", role, txn.CounterpartyBIC))
		}
	}

	operType := strings.TrimSpace(block[KeyOperType])
	txnCode := strings.TrimSpace(block[KeyTransactionCode])
	var tech []string
	if operType != "" {
		tech = append(tech, "OpType: "+operType)
	}
	if txnCode != "" {
		tech = append(tech, "TxnCode: "+txnCode)
	}
	if len(tech) > 0 {
		lines = append(lines, strings.Join(tech, " / "))
	}

	return strings.Join(lines, "\n")
}
