package accounts

import "github.com/evghenin/moldova-banking/internal/model"

// DefaultChart returns the starter ledger chart for a new project.
// Account names follow local bookkeeping convention (class 2/5 codes).
func DefaultChart(currency string) []model.Account {
	return []model.Account{
		{Name: "242 Current Account", Type: model.AccountTypeBank, Currency: currency, Description: "Main settlement account"},
		{Name: "245 Card Clearing", Type: model.AccountTypeClearing, Currency: currency, Description: "POS / card settlement in transit"},
		{Name: "221 Trade Receivables", Type: model.AccountTypeReceivable, Currency: currency, Description: "Amounts owed by customers"},
		{Name: "521 Trade Payables", Type: model.AccountTypePayable, Currency: currency, Description: "Amounts owed to suppliers"},
		{Name: "713 Bank Charges", Type: model.AccountTypeExpense, Currency: currency, Description: "Commission and service fees"},
		{Name: "622 Interest Income", Type: model.AccountTypeIncome, Currency: currency, Description: "Interest credited by the bank"},
	}
}
