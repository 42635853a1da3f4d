package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/model"
)

// ErrPostingNotFound is returned when a posting id does not exist.
var ErrPostingNotFound = errors.New("ledger: posting not found")

// PostingQuery carries the pre-existence filters: same reference, same
// date, same amount, same company means the posting was already
// generated on an earlier run.
type PostingQuery struct {
	Company   string
	Reference string
	Date      time.Time
	Amount    decimal.Decimal
}

// PostingStore persists generated ledger postings.
type PostingStore interface {
	// FindPosting returns a posting matching the pre-existence filters.
	FindPosting(q PostingQuery) (model.Posting, bool, error)

	// InsertPosting stores a draft posting and returns its assigned id.
	InsertPosting(p model.Posting) (string, error)

	// SubmitPosting finalizes a posting and returns the updated value.
	SubmitPosting(id string) (model.Posting, error)
}

// MemoryStore is an in-memory PostingStore.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]model.Posting
	order []string

	// SubmitErr, when set, makes SubmitPosting fail. Tests use it to
	// exercise the draft-stays-unlinked path.
	SubmitErr error
}

// NewMemoryStore creates an empty in-memory posting store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]model.Posting)}
}

// FindPosting scans for a non-cancelled posting matching the filters.
func (m *MemoryStore) FindPosting(q PostingQuery) (model.Posting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		p := m.byID[id]
		if p.State == model.StateCancelled {
			continue
		}
		if p.Company == q.Company && p.Reference == q.Reference &&
			p.Date.Equal(q.Date) && p.Amount.Equal(q.Amount) {
			return p, true, nil
		}
	}
	return model.Posting{}, false, nil
}

// InsertPosting stores a posting in draft state with a uuid id.
func (m *MemoryStore) InsertPosting(p model.Posting) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.NewString()
	p.State = model.StateDraft
	m.byID[p.ID] = p
	m.order = append(m.order, p.ID)
	return p.ID, nil
}

// SubmitPosting flips a posting to the submitted state.
func (m *MemoryStore) SubmitPosting(id string) (model.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubmitErr != nil {
		return model.Posting{}, m.SubmitErr
	}
	p, ok := m.byID[id]
	if !ok {
		return model.Posting{}, ErrPostingNotFound
	}
	p.State = model.StateSubmitted
	m.byID[id] = p
	return p, nil
}

// All returns every posting in insertion order.
func (m *MemoryStore) All() []model.Posting {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Posting, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}
