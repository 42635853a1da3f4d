package reconcile

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/logger"
	"github.com/evghenin/moldova-banking/internal/model"
	"github.com/evghenin/moldova-banking/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func insertTxn(t *testing.T, mem *store.Memory, txn model.Transaction) string {
	t.Helper()
	id, err := mem.Insert(txn)
	require.NoError(t, err)
	return id
}

func pendingTxn() model.Transaction {
	return model.Transaction{
		Company:     "Acme SRL",
		BankAccount: "Main MDL",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Withdrawal:  dec("150"),
		Reference:   "145",
		Status:      model.TxnStatusPending,
	}
}

func submittedPosting() model.Posting {
	return model.Posting{
		ID:     "p-1",
		Kind:   model.KindPayment,
		Amount: dec("150"),
		State:  model.StateSubmitted,
	}
}

func newLinker(mem *store.Memory) *Linker {
	return NewLinker(mem, logger.NewWithWriter(io.Discard))
}

func TestLink_HappyPath(t *testing.T) {
	mem := store.NewMemory()
	id := insertTxn(t, mem, pendingTxn())

	require.NoError(t, newLinker(mem).Link(id, submittedPosting()))

	got, ok, err := mem.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Links, 1)
	assert.Equal(t, "p-1", got.Links[0].PostingID)
	assert.Equal(t, "150.00", got.Links[0].Allocated.StringFixed(2))
	assert.Equal(t, model.TxnStatusReconciled, got.Status)
}

func TestLink_Idempotent(t *testing.T) {
	mem := store.NewMemory()
	id := insertTxn(t, mem, pendingTxn())
	linker := newLinker(mem)

	require.NoError(t, linker.Link(id, submittedPosting()))
	require.NoError(t, linker.Link(id, submittedPosting()))

	got, _, err := mem.Get(id)
	require.NoError(t, err)
	assert.Len(t, got.Links, 1, "second call must not add a second link")
}

func TestLink_DraftPostingIsNoOp(t *testing.T) {
	mem := store.NewMemory()
	id := insertTxn(t, mem, pendingTxn())

	draft := submittedPosting()
	draft.State = model.StateDraft
	require.NoError(t, newLinker(mem).Link(id, draft))

	got, _, err := mem.Get(id)
	require.NoError(t, err)
	assert.Empty(t, got.Links)
	assert.Equal(t, model.TxnStatusPending, got.Status)
}

func TestLink_CancelledTransactionIsNoOp(t *testing.T) {
	mem := store.NewMemory()
	id := insertTxn(t, mem, pendingTxn())
	require.NoError(t, mem.SetStatus(id, model.TxnStatusCancelled))

	require.NoError(t, newLinker(mem).Link(id, submittedPosting()))

	got, _, err := mem.Get(id)
	require.NoError(t, err)
	assert.Empty(t, got.Links)
	assert.Equal(t, model.TxnStatusCancelled, got.Status)
}

func TestLink_UnknownTransaction(t *testing.T) {
	mem := store.NewMemory()

	err := newLinker(mem).Link("missing", submittedPosting())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLink_ZeroAmountFallsBackToPostingAmount(t *testing.T) {
	mem := store.NewMemory()
	txn := pendingTxn()
	txn.Withdrawal = decimal.Zero
	txn.Description = "Informational line"
	id := insertTxn(t, mem, txn)

	require.NoError(t, newLinker(mem).Link(id, submittedPosting()))

	got, _, err := mem.Get(id)
	require.NoError(t, err)
	require.Len(t, got.Links, 1)
	assert.Equal(t, "150.00", got.Links[0].Allocated.StringFixed(2))
}

func TestLink_DifferentPostingsBothLink(t *testing.T) {
	mem := store.NewMemory()
	id := insertTxn(t, mem, pendingTxn())
	linker := newLinker(mem)

	first := submittedPosting()
	second := submittedPosting()
	second.ID = "p-2"
	second.Kind = model.KindJournal

	require.NoError(t, linker.Link(id, first))
	require.NoError(t, linker.Link(id, second))

	got, _, err := mem.Get(id)
	require.NoError(t, err)
	assert.Len(t, got.Links, 2)
}
