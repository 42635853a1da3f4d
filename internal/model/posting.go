package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingKind selects the shape of a generated ledger posting.
type PostingKind string

const (
	// KindPayment is a two-sided transfer between the bank account and a
	// counter account.
	KindPayment PostingKind = "payment"
	// KindJournal is a journal-style posting with explicit debit/credit legs.
	KindJournal PostingKind = "journal"
)

// PostingState is the draft/submitted lifecycle of a posting.
type PostingState string

const (
	StateDraft     PostingState = "draft"
	StateSubmitted PostingState = "submitted"
	StateCancelled PostingState = "cancelled"
)

// JournalTypeBankEntry is the journal posting subtype that supports
// party tracking on its counter leg.
const JournalTypeBankEntry = "bank-entry"

// PostingLeg is a single row of a posting (one side of a double-entry).
type PostingLeg struct {
	Account    string
	Debit      decimal.Decimal // zero if credit side
	Credit     decimal.Decimal // zero if debit side
	Currency   string
	CostCenter string
	PartyType  string
	Party      string
}

// Posting is a generated ledger entry, payment- or journal-style.
type Posting struct {
	ID            string // assigned by the store on insert
	Kind          PostingKind
	Company       string
	Date          time.Time
	Reference     string
	ModeOfPayment string
	JournalType   string // journal subtype, empty for payment postings
	Amount        decimal.Decimal
	Currency      string
	PartyType     string
	Party         string
	Legs          []PostingLeg
	State         PostingState
}
