package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/model"
)

func TestFile_InsertAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "transactions.csv")

	f, err := OpenFile(path)
	require.NoError(t, err)

	txn := sampleTxn()
	txn.Description = "Payment for services\n\nAmount: 150.00"
	id, err := f.Insert(txn)
	require.NoError(t, err)

	// A fresh open sees the same record with the same id.
	reopened, err := OpenFile(path)
	require.NoError(t, err)
	got, ok, err := reopened.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "145", got.Reference)
	assert.Equal(t, txn.Description, got.Description, "multi-line descriptions survive the round trip")
	assert.Equal(t, "150.00", got.Withdrawal.StringFixed(2))

	// And the duplicate check still holds.
	_, err = reopened.Insert(sampleTxn())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFile_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")

	f, err := OpenFile(path)
	require.NoError(t, err)

	_, err = f.Insert(sampleTxn())
	require.NoError(t, err)
	second := sampleTxn()
	second.Reference = "146"
	_, err = f.Insert(second)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "id,company,bank_account"))
}

func TestFile_AppendLinkRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")

	f, err := OpenFile(path)
	require.NoError(t, err)
	id, err := f.Insert(sampleTxn())
	require.NoError(t, err)

	link := model.PaymentLink{PostingKind: model.KindPayment, PostingID: "p-1", Allocated: dec("150")}
	require.NoError(t, f.AppendLink(id, link))
	require.NoError(t, f.SetStatus(id, model.TxnStatusReconciled))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	got, ok, err := reopened.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Links, 1)
	assert.Equal(t, model.KindPayment, got.Links[0].PostingKind)
	assert.Equal(t, "p-1", got.Links[0].PostingID)
	assert.Equal(t, "150.00", got.Links[0].Allocated.StringFixed(2))
	assert.Equal(t, model.TxnStatusReconciled, got.Status)
}

func TestOpenFile_MissingFileIsEmpty(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Empty(t, f.All())
}

func TestUnmarshalTransaction_FieldCount(t *testing.T) {
	_, err := UnmarshalTransaction([]string{"too", "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 19 fields")
}

func TestUnmarshalTransaction_BadLink(t *testing.T) {
	row := MarshalTransaction(sampleTxn())
	row[colLinks] = "payment-only-two-parts"
	_, err := UnmarshalTransaction(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad link")
}
