// Package store holds the bank-transaction record stores. The import
// core only depends on the TransactionStore interface; the memory
// store backs tests and the file store backs the CLI.
package store

import (
	"errors"

	"github.com/evghenin/moldova-banking/internal/dedupe"
	"github.com/evghenin/moldova-banking/internal/model"
)

// ErrDuplicate is returned by Insert when a transaction with the same
// uniqueness key already exists. Callers treat it as the duplicate
// signal, not a fatal failure: two imports racing on one fingerprint
// resolve at insert time instead of via a lock.
var ErrDuplicate = errors.New("store: duplicate transaction")

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("store: transaction not found")

// TransactionStore persists bank transactions and enforces fingerprint
// uniqueness.
type TransactionStore interface {
	dedupe.Finder

	// Insert stores a new transaction and returns its assigned id.
	// Returns ErrDuplicate when the uniqueness key is already taken by
	// an active record.
	Insert(txn model.Transaction) (string, error)

	// Get returns a transaction by id.
	Get(id string) (model.Transaction, bool, error)

	// AppendLink adds a reconciliation link to a transaction.
	AppendLink(id string, link model.PaymentLink) error

	// SetStatus updates the lifecycle status of a transaction.
	SetStatus(id string, status model.TransactionStatus) error
}
