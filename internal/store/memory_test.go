package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/dedupe"
	"github.com/evghenin/moldova-banking/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleTxn() model.Transaction {
	return model.Transaction{
		Company:     "Acme SRL",
		BankAccount: "Main MDL",
		Date:        date(2024, 3, 5),
		Withdrawal:  dec("150"),
		Reference:   "145",
		Currency:    "MDL",
		Status:      model.TxnStatusPending,
	}
}

func TestMemory_InsertAssignsID(t *testing.T) {
	mem := NewMemory()

	id, err := mem.Insert(sampleTxn())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, ok, err := mem.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "145", got.Reference)
}

func TestMemory_InsertDuplicate(t *testing.T) {
	mem := NewMemory()

	_, err := mem.Insert(sampleTxn())
	require.NoError(t, err)

	_, err = mem.Insert(sampleTxn())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_CancelledRecordDoesNotBlockReinsert(t *testing.T) {
	mem := NewMemory()

	id, err := mem.Insert(sampleTxn())
	require.NoError(t, err)
	require.NoError(t, mem.SetStatus(id, model.TxnStatusCancelled))

	id2, err := mem.Insert(sampleTxn())
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestMemory_FindByFingerprint(t *testing.T) {
	mem := NewMemory()
	txn := sampleTxn()
	id, err := mem.Insert(txn)
	require.NoError(t, err)

	q := dedupe.Query{Key: dedupe.Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, txn.Reference)}
	got, found, err := mem.FindByFingerprint(q)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, got.ID)

	q.Key = dedupe.Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, "other")
	_, found, err = mem.FindByFingerprint(q)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_FindByFingerprint_ExcludesCancelled(t *testing.T) {
	mem := NewMemory()
	txn := sampleTxn()
	id, err := mem.Insert(txn)
	require.NoError(t, err)
	require.NoError(t, mem.SetStatus(id, model.TxnStatusCancelled))

	q := dedupe.Query{Key: dedupe.Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, txn.Reference)}
	_, found, err := mem.FindByFingerprint(q)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_FindByFingerprint_DescriptionJoinsLookup(t *testing.T) {
	mem := NewMemory()
	txn := sampleTxn()
	txn.Reference = ""
	txn.Description = "Monthly maintenance fee"
	_, err := mem.Insert(txn)
	require.NoError(t, err)

	key := dedupe.Key(txn.Company, txn.BankAccount, txn.Date, txn.Deposit, txn.Withdrawal, "")

	_, found, err := mem.FindByFingerprint(dedupe.Query{Key: key, Description: "Monthly maintenance fee"})
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = mem.FindByFingerprint(dedupe.Query{Key: key, Description: "SMS notification charge"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_AppendLinkAndSetStatus(t *testing.T) {
	mem := NewMemory()
	id, err := mem.Insert(sampleTxn())
	require.NoError(t, err)

	link := model.PaymentLink{PostingKind: model.KindPayment, PostingID: "p-1", Allocated: dec("150")}
	require.NoError(t, mem.AppendLink(id, link))
	require.NoError(t, mem.SetStatus(id, model.TxnStatusReconciled))

	got, ok, err := mem.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Links, 1)
	assert.Equal(t, "p-1", got.Links[0].PostingID)
	assert.Equal(t, model.TxnStatusReconciled, got.Status)
}

func TestMemory_UnknownID(t *testing.T) {
	mem := NewMemory()

	_, ok, err := mem.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, mem.AppendLink("missing", model.PaymentLink{}), ErrNotFound)
	assert.ErrorIs(t, mem.SetStatus("missing", model.TxnStatusCancelled), ErrNotFound)
}

func TestMemory_AllPreservesOrder(t *testing.T) {
	mem := NewMemory()

	first := sampleTxn()
	second := sampleTxn()
	second.Reference = "146"

	_, err := mem.Insert(first)
	require.NoError(t, err)
	_, err = mem.Insert(second)
	require.NoError(t, err)

	all := mem.All()
	require.Len(t, all, 2)
	assert.Equal(t, "145", all[0].Reference)
	assert.Equal(t, "146", all[1].Reference)
}
