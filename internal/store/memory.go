package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/evghenin/moldova-banking/internal/dedupe"
	"github.com/evghenin/moldova-banking/internal/model"
)

// Memory is an in-memory TransactionStore. The uniqueness check and
// the insert happen under one lock, so a conflict surfaces as
// ErrDuplicate rather than a lost race.
type Memory struct {
	mu    sync.Mutex
	byID  map[string]model.Transaction
	byKey map[string]string // uniqueness key -> record id
	order []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[string]model.Transaction),
		byKey: make(map[string]string),
	}
}

// Insert stores a transaction, assigning a uuid id.
func (m *Memory) Insert(txn model.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dedupe.UniqueKey(txn)
	if existingID, ok := m.byKey[key]; ok {
		if m.byID[existingID].Status != model.TxnStatusCancelled {
			return "", ErrDuplicate
		}
	}

	txn.ID = uuid.NewString()
	m.byID[txn.ID] = txn
	m.byKey[key] = txn.ID
	m.order = append(m.order, txn.ID)
	return txn.ID, nil
}

// FindByFingerprint returns the active transaction matching the
// fingerprint filters, excluding cancelled records.
func (m *Memory) FindByFingerprint(q dedupe.Query) (model.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lookup := q.Key
	if q.Description != "" {
		lookup += "::" + q.Description
	}
	id, ok := m.byKey[lookup]
	if !ok {
		return model.Transaction{}, false, nil
	}
	txn := m.byID[id]
	if txn.Status == model.TxnStatusCancelled {
		return model.Transaction{}, false, nil
	}
	return txn, true, nil
}

// Get returns a transaction by id.
func (m *Memory) Get(id string) (model.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.byID[id]
	return txn, ok, nil
}

// AppendLink adds a reconciliation link to a stored transaction.
func (m *Memory) AppendLink(id string, link model.PaymentLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	txn.Links = append(txn.Links, link)
	m.byID[id] = txn
	return nil
}

// SetStatus updates a stored transaction's status.
func (m *Memory) SetStatus(id string, status model.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	txn.Status = status
	m.byID[id] = txn
	return nil
}

// restore loads a previously persisted transaction, keeping its id.
func (m *Memory) restore(txn model.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[txn.ID] = txn
	m.byKey[dedupe.UniqueKey(txn)] = txn.ID
	m.order = append(m.order, txn.ID)
}

// All returns every stored transaction in insertion order.
func (m *Memory) All() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}
