package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evghenin/moldova-banking/internal/dedupe"
	"github.com/evghenin/moldova-banking/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,company,bank_account,date,deposit,withdrawal,bank_balance,reference,currency,role,cp_name,cp_account,cp_iban,cp_tax_id,cp_bank,cp_bic,description,status,links"

const (
	numFields   = 19
	dateFormat  = "2006-01-02"
	colID       = 0
	colCompany  = 1
	colBankAcct = 2
	colDate     = 3
	colDeposit  = 4
	colWithdraw = 5
	colBalance  = 6
	colRef      = 7
	colCurrency = 8
	colRole     = 9
	colCpName   = 10
	colCpAcct   = 11
	colCpIBAN   = 12
	colCpTax    = 13
	colCpBank   = 14
	colCpBIC    = 15
	colDesc     = 16
	colStatus   = 17
	colLinks    = 18
)

// File is a TransactionStore backed by a single transactions.csv file.
// All records are held in memory; Insert appends a row, link and
// status updates rewrite the file.
type File struct {
	path string
	mem  *Memory
}

// OpenFile loads (or lazily creates) a CSV transaction store.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: NewMemory()}

	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer fh.Close()

	txns, err := ReadTransactions(fh)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	for _, txn := range txns {
		f.mem.restore(txn)
	}
	return f, nil
}

// Insert stores a transaction and appends it to the file.
func (f *File) Insert(txn model.Transaction) (string, error) {
	id, err := f.mem.Insert(txn)
	if err != nil {
		return "", err
	}
	txn.ID = id

	if err := f.appendRow(txn); err != nil {
		return "", err
	}
	return id, nil
}

// FindByFingerprint implements dedupe.Finder.
func (f *File) FindByFingerprint(q dedupe.Query) (model.Transaction, bool, error) {
	return f.mem.FindByFingerprint(q)
}

// Get returns a transaction by id.
func (f *File) Get(id string) (model.Transaction, bool, error) {
	return f.mem.Get(id)
}

// AppendLink adds a reconciliation link and rewrites the file.
func (f *File) AppendLink(id string, link model.PaymentLink) error {
	if err := f.mem.AppendLink(id, link); err != nil {
		return err
	}
	return f.rewrite()
}

// SetStatus updates a transaction's status and rewrites the file.
func (f *File) SetStatus(id string, status model.TransactionStatus) error {
	if err := f.mem.SetStatus(id, status); err != nil {
		return err
	}
	return f.rewrite()
}

// All returns every stored transaction in insertion order.
func (f *File) All() []model.Transaction {
	return f.mem.All()
}

func (f *File) appendRow(txn model.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	defer fh.Close()

	if isNew {
		if _, err := fmt.Fprintln(fh, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(fh)
	if err := cw.Write(MarshalTransaction(txn)); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func (f *File) rewrite() error {
	tmp := f.path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	if err := WriteTransactions(fh, f.mem.All()); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing transactions file: %w", err)
	}
	return nil
}

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a writer, header included.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colCompany] = txn.Company
	row[colBankAcct] = txn.BankAccount
	if !txn.Date.IsZero() {
		row[colDate] = txn.Date.Format(dateFormat)
	}
	if !txn.Deposit.IsZero() {
		row[colDeposit] = txn.Deposit.StringFixed(2)
	}
	if !txn.Withdrawal.IsZero() {
		row[colWithdraw] = txn.Withdrawal.StringFixed(2)
	}
	row[colBalance] = txn.BankBalance.StringFixed(2)
	row[colRef] = txn.Reference
	row[colCurrency] = txn.Currency
	row[colRole] = string(txn.Role)
	row[colCpName] = txn.CounterpartyName
	row[colCpAcct] = txn.CounterpartyAcct
	row[colCpIBAN] = txn.CounterpartyIBAN
	row[colCpTax] = txn.CounterpartyTax
	row[colCpBank] = txn.CounterpartyBank
	row[colCpBIC] = txn.CounterpartyBIC
	row[colDesc] = txn.Description
	row[colStatus] = string(txn.Status)
	row[colLinks] = marshalLinks(txn.Links)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var txn model.Transaction
	var err error

	if record[colDate] != "" {
		txn.Date, err = time.Parse(dateFormat, record[colDate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}
	if txn.Deposit, err = parseDecimal(record[colDeposit]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing deposit %q: %w", record[colDeposit], err)
	}
	if txn.Withdrawal, err = parseDecimal(record[colWithdraw]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing withdrawal %q: %w", record[colWithdraw], err)
	}
	if txn.BankBalance, err = parseDecimal(record[colBalance]); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing bank_balance %q: %w", record[colBalance], err)
	}

	txn.Links, err = unmarshalLinks(record[colLinks])
	if err != nil {
		return model.Transaction{}, err
	}

	txn.ID = record[colID]
	txn.Company = record[colCompany]
	txn.BankAccount = record[colBankAcct]
	txn.Reference = record[colRef]
	txn.Currency = record[colCurrency]
	txn.Role = model.CounterpartyRole(record[colRole])
	txn.CounterpartyName = record[colCpName]
	txn.CounterpartyAcct = record[colCpAcct]
	txn.CounterpartyIBAN = record[colCpIBAN]
	txn.CounterpartyTax = record[colCpTax]
	txn.CounterpartyBank = record[colCpBank]
	txn.CounterpartyBIC = record[colCpBIC]
	txn.Description = record[colDesc]
	txn.Status = model.TransactionStatus(record[colStatus])
	return txn, nil
}

// marshalLinks encodes reconciliation links as "kind:id:amount"
// triples, semicolon-separated.
func marshalLinks(links []model.PaymentLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, fmt.Sprintf("%s:%s:%s", l.PostingKind, l.PostingID, l.Allocated.StringFixed(2)))
	}
	return strings.Join(parts, ";")
}

func unmarshalLinks(s string) ([]model.PaymentLink, error) {
	if s == "" {
		return nil, nil
	}
	var links []model.PaymentLink
	for _, part := range strings.Split(s, ";") {
		fields := strings.SplitN(part, ":", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("bad link %q", part)
		}
		amount, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("bad link amount %q: %w", fields[2], err)
		}
		links = append(links, model.PaymentLink{
			PostingKind: model.PostingKind(fields[0]),
			PostingID:   fields[1],
			Allocated:   amount,
		})
	}
	return links, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
