// Package reconcile attaches generated ledger postings back to the
// bank transactions they settle.
package reconcile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evghenin/moldova-banking/internal/model"
	"github.com/evghenin/moldova-banking/internal/store"
)

// Linker records reconciliation links on transactions. Linking is
// idempotent: invoking it twice for the same posting/transaction pair
// leaves exactly one link.
type Linker struct {
	store store.TransactionStore
	log   zerolog.Logger
}

// NewLinker creates a Linker over a transaction store.
func NewLinker(s store.TransactionStore, log zerolog.Logger) *Linker {
	return &Linker{store: s, log: log}
}

// Link appends a link from the transaction to the posting and flips
// the transaction's status to reconciled.
//
// The transition only fires for submitted postings and non-cancelled
// transactions; anything else is a silent no-op, as is an already
// existing link for the same posting. A failure to update the status
// is logged but does not undo the persisted link.
func (l *Linker) Link(txnID string, posting model.Posting) error {
	if posting.State != model.StateSubmitted {
		return nil
	}

	txn, ok, err := l.store.Get(txnID)
	if err != nil {
		return fmt.Errorf("loading transaction %s: %w", txnID, err)
	}
	if !ok {
		return fmt.Errorf("transaction %s: %w", txnID, store.ErrNotFound)
	}
	if txn.Status == model.TxnStatusCancelled {
		return nil
	}
	if txn.Linked(posting.Kind, posting.ID) {
		return nil
	}

	allocated := txn.Amount()
	if allocated.IsZero() {
		allocated = posting.Amount
	}

	link := model.PaymentLink{
		PostingKind: posting.Kind,
		PostingID:   posting.ID,
		Allocated:   allocated,
	}
	if err := l.store.AppendLink(txnID, link); err != nil {
		return fmt.Errorf("appending link to %s: %w", txnID, err)
	}

	if err := l.store.SetStatus(txnID, model.TxnStatusReconciled); err != nil {
		l.log.Warn().
			Str("transaction", txnID).
			Str("posting", posting.ID).
			Err(err).
			Msg("link recorded but status update failed")
	}
	return nil
}
