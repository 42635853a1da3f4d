package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CounterpartyRole says which side of a statement line the counterparty
// was on, relative to our own account.
type CounterpartyRole string

const (
	// RolePayer marks an incoming transaction: the counterparty paid us.
	RolePayer CounterpartyRole = "Payer"
	// RoleReceiver marks an outgoing transaction: the counterparty was paid.
	RoleReceiver CounterpartyRole = "Receiver"
	// RoleNone is used for zero-amount or unmatched statement lines.
	RoleNone CounterpartyRole = ""
)

// TransactionStatus is the lifecycle state of a bank transaction.
type TransactionStatus string

const (
	TxnStatusPending    TransactionStatus = "pending"
	TxnStatusReconciled TransactionStatus = "reconciled"
	TxnStatusCancelled  TransactionStatus = "cancelled"
)

// PaymentLink records one reconciliation link from a transaction to the
// ledger posting that settles it.
type PaymentLink struct {
	PostingKind PostingKind
	PostingID   string
	Allocated   decimal.Decimal
}

// Transaction is one normalized bank statement line. At most one of
// Deposit/Withdrawal is non-zero; zero-amount lines carry neither a
// direction nor a counterparty role.
type Transaction struct {
	ID          string // assigned by the store on insert
	Company     string
	BankAccount string
	Date        time.Time
	Deposit     decimal.Decimal
	Withdrawal  decimal.Decimal
	BankBalance decimal.Decimal // running balance after this transaction
	Reference   string
	Currency    string

	Role             CounterpartyRole
	CounterpartyName string
	CounterpartyAcct string // plain account number, empty when IBAN-shaped
	CounterpartyIBAN string
	CounterpartyTax  string // IDNO / fiscal code
	CounterpartyBank string
	CounterpartyBIC  string

	Description string
	Status      TransactionStatus
	Links       []PaymentLink
}

// Amount returns the non-zero side of the transaction, or zero for
// directionless lines.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Deposit.IsZero() {
		return t.Deposit
	}
	return t.Withdrawal
}

// SignedAmount is deposit minus withdrawal: positive incoming,
// negative outgoing.
func (t Transaction) SignedAmount() decimal.Decimal {
	return t.Deposit.Sub(t.Withdrawal)
}

// Linked reports whether the transaction already carries a link to the
// given posting.
func (t Transaction) Linked(kind PostingKind, postingID string) bool {
	for _, l := range t.Links {
		if l.PostingKind == kind && l.PostingID == postingID {
			return true
		}
	}
	return false
}
