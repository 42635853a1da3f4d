package dedupe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/model"
)

// mapFinder is a Finder over a fixed key -> transaction map.
type mapFinder struct {
	byKey map[string]model.Transaction
	err   error
}

func (f *mapFinder) FindByFingerprint(q Query) (model.Transaction, bool, error) {
	if f.err != nil {
		return model.Transaction{}, false, f.err
	}
	lookup := q.Key
	if q.Description != "" {
		lookup += "::" + q.Description
	}
	txn, ok := f.byKey[lookup]
	return txn, ok, nil
}

func TestGuard_NewLine(t *testing.T) {
	guard := NewGuard(&mapFinder{byKey: map[string]model.Transaction{}})

	notice, err := guard.Check(model.Transaction{
		Company:     "Acme SRL",
		BankAccount: "Main MDL",
		Date:        date(2024, 3, 5),
		Withdrawal:  dec("150"),
		Reference:   "145",
	})
	require.NoError(t, err)
	assert.Nil(t, notice)
}

func TestGuard_Duplicate(t *testing.T) {
	existing := model.Transaction{
		ID:          "rec-1",
		Company:     "Acme SRL",
		BankAccount: "Main MDL",
		Date:        date(2024, 3, 5),
		Withdrawal:  dec("150"),
		Reference:   "145",
	}
	finder := &mapFinder{byKey: map[string]model.Transaction{
		UniqueKey(existing): existing,
	}}
	guard := NewGuard(finder)

	notice, err := guard.Check(existing)
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, "rec-1", notice.RecordID)
	assert.Equal(t, "145", notice.Reference)
	assert.Contains(t, notice.String(), "existing record rec-1")
	assert.Contains(t, notice.String(), "-150.00")
}

func TestGuard_EmptyReferenceUsesDescription(t *testing.T) {
	existing := model.Transaction{
		ID:          "rec-2",
		Company:     "Acme SRL",
		BankAccount: "Main MDL",
		Date:        date(2024, 3, 5),
		Withdrawal:  dec("15"),
		Description: "Monthly maintenance fee",
	}
	finder := &mapFinder{byKey: map[string]model.Transaction{
		UniqueKey(existing): existing,
	}}
	guard := NewGuard(finder)

	notice, err := guard.Check(existing)
	require.NoError(t, err)
	require.NotNil(t, notice, "same description is a duplicate")

	other := existing
	other.Description = "SMS notification charge"
	notice, err = guard.Check(other)
	require.NoError(t, err)
	assert.Nil(t, notice, "different description is a new line")
}

func TestGuard_FinderError(t *testing.T) {
	guard := NewGuard(&mapFinder{err: errors.New("store offline")})

	_, err := guard.Check(model.Transaction{Reference: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fingerprint lookup")
}

func TestNotice_String_EmptyFields(t *testing.T) {
	n := Notice{RecordID: "rec-9"}
	s := n.String()
	assert.Contains(t, s, "date -")
	assert.Contains(t, s, "reference -")
}
