package model

// AccountType classifies ledger accounts in the chart.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeClearing   AccountType = "clearing"
	AccountTypeReceivable AccountType = "receivable"
	AccountTypePayable    AccountType = "payable"
	AccountTypeExpense    AccountType = "expense"
	AccountTypeIncome     AccountType = "income"
)

// Account is a row in ledger-accounts.csv. Accounts are keyed by name
// and each carries the currency its balance is kept in.
type Account struct {
	Name        string
	Type        AccountType
	Currency    string
	Description string
}
