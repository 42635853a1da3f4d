package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Header is the CSV header for ledger-accounts.csv.
const Header = "name,type,currency,description"

const (
	numFields   = 4
	colName     = 0
	colType     = 1
	colCurrency = 2
	colDesc     = 3
)

// ReadAccounts reads ledger-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts to a writer, header included.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, numFields)
	row[colName] = a.Name
	row[colType] = string(a.Type)
	row[colCurrency] = a.Currency
	row[colDesc] = a.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colName] == "" {
		return model.Account{}, fmt.Errorf("empty account name")
	}
	return model.Account{
		Name:        record[colName],
		Type:        model.AccountType(record[colType]),
		Currency:    record[colCurrency],
		Description: record[colDesc],
	}, nil
}
