package ledger

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

	"github.com/evghenin/moldova-banking/internal/model"
)

// Header is the CSV header for postings.csv. One row per leg; posting
// level fields repeat on every leg row of the same posting.
const Header = "posting_id,kind,company,date,reference,mode_of_payment,journal_type,state,amount,currency,party_type,party,leg_account,leg_debit,leg_credit,leg_currency,leg_cost_center,leg_party_type,leg_party"

const (
	numFields      = 19
	dateFormat     = "2006-01-02"
	colPostingID   = 0
	colKind        = 1
	colCompany     = 2
	colDate        = 3
	colRef         = 4
	colMode        = 5
	colJournalType = 6
	colState       = 7
	colAmount      = 8
	colCurrency    = 9
	colPartyType   = 10
	colParty       = 11
	colLegAccount  = 12
	colLegDebit    = 13
	colLegCredit   = 14
	colLegCurrency = 15
	colLegCC       = 16
	colLegPType    = 17
	colLegParty    = 18
)

// FileStore is a PostingStore backed by a postings.csv file, loaded
// into a MemoryStore and rewritten on every mutation.
type FileStore struct {
	path string
	mem  *MemoryStore
}

// OpenFileStore loads (or lazily creates) a CSV posting store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, mem: NewMemoryStore()}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening postings %s: %w", path, err)
	}
	defer f.Close()

	postings, err := ReadPostings(f)
	if err != nil {
		return nil, fmt.Errorf("reading postings %s: %w", path, err)
	}
	for _, p := range postings {
		s.mem.byID[p.ID] = p
		s.mem.order = append(s.mem.order, p.ID)
	}
	return s, nil
}

// FindPosting implements PostingStore.
func (s *FileStore) FindPosting(q PostingQuery) (model.Posting, bool, error) {
	return s.mem.FindPosting(q)
}

// InsertPosting stores a draft posting and rewrites the file.
func (s *FileStore) InsertPosting(p model.Posting) (string, error) {
	id, err := s.mem.InsertPosting(p)
	if err != nil {
		return "", err
	}
	if err := s.rewrite(); err != nil {
		return "", err
	}
	return id, nil
}

// SubmitPosting finalizes a posting and rewrites the file.
func (s *FileStore) SubmitPosting(id string) (model.Posting, error) {
	p, err := s.mem.SubmitPosting(id)
	if err != nil {
		return model.Posting{}, err
	}
	if err := s.rewrite(); err != nil {
		return model.Posting{}, err
	}
	return p, nil
}

// All returns every posting in insertion order.
func (s *FileStore) All() []model.Posting {
	return s.mem.All()
}

func (s *FileStore) rewrite() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	if err := WritePostings(f, s.mem.All()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing postings file: %w", err)
	}
	return nil
}

// ReadPostings reads postings.csv, regrouping leg rows by posting id.
func ReadPostings(r io.Reader) ([]model.Posting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading postings CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var postings []model.Posting
	index := make(map[string]int)
	for i, rec := range records[1:] {
		p, leg, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if at, ok := index[p.ID]; ok {
			postings[at].Legs = append(postings[at].Legs, leg)
			continue
		}
		p.Legs = []model.PostingLeg{leg}
		index[p.ID] = len(postings)
		postings = append(postings, p)
	}
	return postings, nil
}

// WritePostings writes postings to a writer, one row per leg.
func WritePostings(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range postings {
		for _, leg := range p.Legs {
			if err := cw.Write(marshalRow(p, leg)); err != nil {
				return fmt.Errorf("writing posting %s: %w", p.ID, err)
			}
		}
	}
	return cw.Error()
}

func marshalRow(p model.Posting, leg model.PostingLeg) []string {
	row := make([]string, numFields)
	row[colPostingID] = p.ID
	row[colKind] = string(p.Kind)
	row[colCompany] = p.Company
	if !p.Date.IsZero() {
		row[colDate] = p.Date.Format(dateFormat)
	}
	row[colRef] = p.Reference
	row[colMode] = p.ModeOfPayment
	row[colJournalType] = p.JournalType
	row[colState] = string(p.State)
	row[colAmount] = p.Amount.StringFixed(2)
	row[colCurrency] = p.Currency
	row[colPartyType] = p.PartyType
	row[colParty] = p.Party
	row[colLegAccount] = leg.Account
	if !leg.Debit.IsZero() {
		row[colLegDebit] = leg.Debit.StringFixed(2)
	}
	if !leg.Credit.IsZero() {
		row[colLegCredit] = leg.Credit.StringFixed(2)
	}
	row[colLegCurrency] = leg.Currency
	row[colLegCC] = leg.CostCenter
	row[colLegPType] = leg.PartyType
	row[colLegParty] = leg.Party
	return row
}

func unmarshalRow(record []string) (model.Posting, model.PostingLeg, error) {
	if len(record) != numFields {
		return model.Posting{}, model.PostingLeg{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var p model.Posting
	var leg model.PostingLeg
	var err error

	if record[colDate] != "" {
		p.Date, err = time.Parse(dateFormat, record[colDate])
		if err != nil {
			return p, leg, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
	}
	if p.Amount, err = parseDecimal(record[colAmount]); err != nil {
		return p, leg, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	if leg.Debit, err = parseDecimal(record[colLegDebit]); err != nil {
		return p, leg, fmt.Errorf("parsing leg_debit %q: %w", record[colLegDebit], err)
	}
	if leg.Credit, err = parseDecimal(record[colLegCredit]); err != nil {
		return p, leg, fmt.Errorf("parsing leg_credit %q: %w", record[colLegCredit], err)
	}

	p.ID = record[colPostingID]
	p.Kind = model.PostingKind(record[colKind])
	p.Company = record[colCompany]
	p.Reference = record[colRef]
	p.ModeOfPayment = record[colMode]
	p.JournalType = record[colJournalType]
	p.State = model.PostingState(record[colState])
	p.Currency = record[colCurrency]
	p.PartyType = record[colPartyType]
	p.Party = record[colParty]
	leg.Account = record[colLegAccount]
	leg.Currency = record[colLegCurrency]
	leg.CostCenter = record[colLegCC]
	leg.PartyType = record[colLegPType]
	leg.Party = record[colLegParty]
	return p, leg, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
