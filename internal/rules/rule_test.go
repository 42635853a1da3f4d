package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/model"
)

func TestLoadSave_RoundTripPreservesOrder(t *testing.T) {
	dir := t.TempDir()

	in := []Rule{
		{Name: "pos", Company: "Acme SRL", Bank: "Victoriabank", Pattern: "POS",
			Kind: model.KindPayment, CounterAccount: "245 Card Clearing", Submit: true, AutoReconcile: true},
		{Name: "fee", Company: "Acme SRL", Bank: "Victoriabank", Pattern: "COMISION",
			Kind: model.KindJournal, CounterAccount: "713 Bank Charges", JournalType: "bank-entry"},
		{Name: "old", Disabled: true, Company: "Acme SRL", Bank: "Victoriabank", Pattern: "LEGACY",
			Kind: model.KindPayment, CounterAccount: "245 Card Clearing"},
	}
	require.NoError(t, Save(dir, in))

	out, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "pos", out[0].Name)
	assert.Equal(t, "fee", out[1].Name)
	assert.Equal(t, "old", out[2].Name)
	assert.True(t, out[0].AutoReconcile)
	assert.True(t, out[2].Disabled)
	assert.Equal(t, model.KindJournal, out[1].Kind)
	assert.Equal(t, "bank-entry", out[1].JournalType)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestSave_EmptyRuleList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, nil))

	out, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}
