package dbo

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenin/moldova-banking/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerive_OutgoingPayment(t *testing.T) {
	header := Header{
		Account:        "MD001",
		OpeningBalance: dec("1000"),
		Currency:       "MDL",
	}
	blocks := []DocumentBlock{{
		KeyDocumentNumber: "145",
		KeyDocumentDate:   "05.03.2024",
		KeyAmount:         "150",
		KeyPayerAccount:   "MD001",
		KeyReceiver:       "ACME",
		KeyReceiverFCode:  "1234567",
	}}

	txns, _, err := Derive(header, blocks)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	txn := txns[0]
	assert.Equal(t, "150.00", txn.Withdrawal.StringFixed(2))
	assert.True(t, txn.Deposit.IsZero())
	assert.Equal(t, "850.00", txn.BankBalance.StringFixed(2))
	assert.Equal(t, model.RoleReceiver, txn.Role)
	assert.Equal(t, "ACME", txn.CounterpartyName)
	assert.Equal(t, "1234567", txn.CounterpartyTax)
	assert.Contains(t, txn.Description, "Receiver: ACME")
	assert.Contains(t, txn.Description, "Receiver IDNO: 1234567")
}

func TestDerive_FromStatementFile(t *testing.T) {
	data, err := os.ReadFile("../../testdata/statement_march.txt")
	require.NoError(t, err)
	stmt, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)

	txns, period, err := Derive(stmt.Header, stmt.Blocks)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// Outgoing: our account is the payer.
	out := txns[0]
	assert.Equal(t, "150.00", out.Withdrawal.StringFixed(2))
	assert.Equal(t, model.RoleReceiver, out.Role)
	assert.Equal(t, "ACME SRL", out.CounterpartyName)
	assert.Equal(t, "MD95EX0000002251555777", out.CounterpartyIBAN)
	assert.Empty(t, out.CounterpartyAcct)
	assert.Equal(t, "850.00", out.BankBalance.StringFixed(2))
	assert.Equal(t, "145", out.Reference)
	assert.Equal(t, "MDL", out.Currency)
	assert.Equal(t, model.TxnStatusPending, out.Status)

	// Incoming: our account is the receiver.
	in := txns[1]
	assert.Equal(t, "3500.00", in.Deposit.StringFixed(2))
	assert.Equal(t, model.RolePayer, in.Role)
	assert.Equal(t, "Orange Moldova SA", in.CounterpartyName)
	assert.Equal(t, "1003600106115", in.CounterpartyTax)
	assert.Equal(t, "4350.00", in.BankBalance.StringFixed(2))
	assert.Contains(t, in.Description, "SALARY MARCH 2024 transfer")
	assert.Contains(t, in.Description, "Payer: Orange Moldova SA")

	// Zero-amount informational line keeps the balance and no role.
	info := txns[2]
	assert.True(t, info.Amount().IsZero())
	assert.Equal(t, model.RoleNone, info.Role)
	assert.Equal(t, "4350.00", info.BankBalance.StringFixed(2))
	assert.Contains(t, info.Description, "Informational notice")

	// Closing balance matches the header.
	assert.True(t, txns[2].BankBalance.Equal(stmt.Header.ClosingBalance))

	// Header dates win over derived min/max.
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), period.From)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), period.To)
}

func TestDerive_UnmatchedAccountsStayDirectionless(t *testing.T) {
	header := Header{Account: "MD001", OpeningBalance: dec("500")}
	blocks := []DocumentBlock{{
		KeyDocumentDate:    "10.03.2024",
		KeyAmount:          "75.00",
		KeyPayerAccount:    "MD555",
		KeyReceiverAccount: "MD777",
	}}

	txns, _, err := Derive(header, blocks)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.True(t, txns[0].Deposit.IsZero())
	assert.True(t, txns[0].Withdrawal.IsZero())
	assert.Equal(t, model.RoleNone, txns[0].Role)
	assert.Equal(t, "500.00", txns[0].BankBalance.StringFixed(2))
}

func TestDerive_DateWrittenFallback(t *testing.T) {
	header := Header{Account: "MD001"}
	blocks := []DocumentBlock{{
		KeyDateWritten:     "07.03.2024",
		KeyAmount:          "10",
		KeyReceiverAccount: "MD001",
	}}

	txns, _, err := Derive(header, blocks)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestDerive_BadDate(t *testing.T) {
	header := Header{Account: "MD001"}
	blocks := []DocumentBlock{{
		KeyDocumentDate: "not-a-date",
		KeyAmount:       "10",
	}}

	txns, _, err := Derive(header, blocks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad date")
	assert.Nil(t, txns, "a malformed date must not emit a zero-date transaction")
}

func TestDerive_BadDateNotMaskedByDateWritten(t *testing.T) {
	header := Header{Account: "MD001"}

	// A valid DATEWRITTEN must not excuse a malformed DOCUMENTDATE.
	_, _, err := Derive(header, []DocumentBlock{{
		KeyDocumentDate: "not-a-date",
		KeyDateWritten:  "07.03.2024",
		KeyAmount:       "10",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"not-a-date"`)

	_, _, err = Derive(header, []DocumentBlock{{
		KeyDocumentDate: "05.03.2024",
		KeyDateWritten:  "not-a-date",
		KeyAmount:       "10",
	}})
	require.NoError(t, err, "the fallback is not consulted when the document date parses")
}

func TestDerive_BadDateWrittenFallback(t *testing.T) {
	header := Header{Account: "MD001"}
	blocks := []DocumentBlock{{
		KeyDateWritten: "31/03/2024",
		KeyAmount:      "10",
	}}

	_, _, err := Derive(header, blocks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"31/03/2024"`)
}

func TestDerive_BadAmount(t *testing.T) {
	header := Header{Account: "MD001"}
	blocks := []DocumentBlock{{
		KeyDocumentDate: "05.03.2024",
		KeyAmount:       "abc",
	}}

	_, _, err := Derive(header, blocks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad amount")
}

func TestDerive_PeriodFromDocumentsWhenHeaderSilent(t *testing.T) {
	header := Header{Account: "MD001"}
	blocks := []DocumentBlock{
		{KeyDocumentDate: "12.03.2024", KeyAmount: "1", KeyReceiverAccount: "MD001"},
		{KeyDocumentDate: "03.03.2024", KeyAmount: "2", KeyReceiverAccount: "MD001"},
		{KeyDocumentDate: "25.03.2024", KeyAmount: "3", KeyReceiverAccount: "MD001"},
	}

	_, period, err := Derive(header, blocks)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), period.From)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), period.To)
}

func TestIsIBAN(t *testing.T) {
	assert.True(t, isIBAN("MD24AG000225100013104168"))
	assert.True(t, isIBAN("md24ag000225100013104168"), "case-insensitive")
	assert.True(t, isIBAN("MD24 AG00 0225 1000 1310 4168"), "spaces stripped")
	assert.False(t, isIBAN("22510001310416"), "plain account number")
	assert.False(t, isIBAN(""))
}

func TestDescribe_Order(t *testing.T) {
	block := DocumentBlock{
		KeyGround:          "Payment for services",
		KeyDateWritten:     "05.03.2024",
		KeyOperType:        "1",
		KeyTransactionCode: "101",
	}
	txn := model.Transaction{
		Reference:        "145",
		Role:             model.RoleReceiver,
		CounterpartyName: "ACME SRL",
		CounterpartyTax:  "1003600012345",
		CounterpartyIBAN: "MD95EX0000002251555777",
		CounterpartyBank: "Victoriabank",
		CounterpartyBIC:  "VICBMD2X",
	}

	got := describe(block, txn, dec("150"))
	want := strings.Join([]string{
		"Payment for services",
		"",
		"Amount: 150.00",
		"Document Number: 145",
		"Date Written: 05.03.2024",
		"Receiver: ACME SRL",
		"Receiver IDNO: 1003600012345",
		"Receiver Account: MD95EX0000002251555777",
		"Receiver Bank: Victoriabank",
		"Receiver Bank BIC: VICBMD2X",
		"OpType: 1 / TxnCode: 101",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestDescribe_SkipsEmptyFields(t *testing.T) {
	block := DocumentBlock{KeyGround: "Fee"}
	txn := model.Transaction{}

	got := describe(block, txn, decimal.Zero)
	assert.Equal(t, "Fee\n", got, "ground plus its separator line only")
	assert.NotContains(t, got, "Amount:")
	assert.NotContains(t, got, "Document Number:")
}
