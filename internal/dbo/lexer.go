package dbo

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel lines of the DBO format.
const (
	tagSectionStart = "SECTIONACCOUNTSTART"
	tagSectionStop  = "SECTIONACCOUNTSTOP"
	tagDocStart     = "DocStart"
	tagDocEnd       = "DocEnd"
)

// Header field keys (account section or global).
const (
	keyAccount   = "ACCOUNT"
	keyStartRest = "STARTREST"
	keyStopRest  = "STOPREST"
	keyCurrCode  = "CURRCODE"
	keyBeginDate = "BEGINDATE"
	keyEndDate   = "ENDDATE"
)

// Document block field keys.
const (
	KeyDocumentNumber  = "DOCUMENTNUMBER"
	KeyDocumentDate    = "DOCUMENTDATE"
	KeyDateWritten     = "DATEWRITTEN"
	KeyAmount          = "AMOUNT"
	KeyPayerAccount    = "PAYERACCOUNT"
	KeyReceiverAccount = "RECEIVERACCOUNT"
	KeyPayer           = "PAYER"
	KeyReceiver        = "RECEIVER"
	KeyPayerFCode      = "PAYERFCODE"
	KeyReceiverFCode   = "RECEIVERFCODE"
	KeyPayerBank       = "PAYERBANK"
	KeyReceiverBank    = "RECEIVERBANK"
	KeyPayerBankBIC    = "PAYERBANKBIC"
	KeyReceiverBankBIC = "RECEIVERBANKBIC"
	KeyOperType        = "OPERTYPE"
	KeyTransactionCode = "TRANSACTIONCODE"
	KeyGround          = "GROUND"
)

// dateLayout is the DD.MM.YYYY form used by DBO exports.
const dateLayout = "02.01.2006"

// FormatError means the input is not a parseable DBO statement. The
// whole import is aborted and nothing persisted.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "dbo: " + e.Reason
}

// DocumentBlock is the raw key/value mapping of one statement line
// item, owned by the parser until consumed by the deriver.
type DocumentBlock map[string]string

// Header is the typed account section of a statement, immutable once
// parsed. BeginDate/EndDate are zero when the export omits them.
type Header struct {
	Account        string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Currency       string
	BeginDate      time.Time
	EndDate        time.Time
}

// Statement is the lexer output: header fields plus document blocks in
// file order.
type Statement struct {
	Header Header
	Blocks []DocumentBlock
}

// IsDBO sniffs whether content looks like a DBO export by checking for
// the tags every real export carries.
func IsDBO(content string) bool {
	for _, tag := range []string{tagDocStart, tagDocEnd, keyBeginDate, keyEndDate} {
		if !strings.Contains(content, tag) {
			return false
		}
	}
	return true
}

// Parse tokenizes a DBO statement into a header and ordered document
// blocks. An unterminated block at end of input is discarded; a DocEnd
// with no open block is ignored. Returns a FormatError when none of
// the sentinel tags appear in the input at all.
func Parse(r io.Reader) (*Statement, error) {
	headerFields := make(map[string]string)
	var blocks []DocumentBlock
	var current DocumentBlock
	inAccountSection := false
	sawSentinel := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch line {
		case tagSectionStart:
			inAccountSection = true
			sawSentinel = true
			continue
		case tagSectionStop:
			inAccountSection = false
			sawSentinel = true
			continue
		case tagDocStart:
			current = make(DocumentBlock)
			sawSentinel = true
			continue
		case tagDocEnd:
			if current != nil {
				blocks = append(blocks, current)
				current = nil
			}
			sawSentinel = true
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch {
		case inAccountSection:
			headerFields[key] = value
		case current != nil:
			current[key] = value
		default:
			// Global fields outside any section (BEGINDATE, ENDDATE).
			headerFields[key] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning statement: %w", err)
	}

	if !sawSentinel {
		return nil, &FormatError{Reason: "no DBO section or document tags found"}
	}

	header, err := buildHeader(headerFields)
	if err != nil {
		return nil, err
	}

	return &Statement{Header: header, Blocks: blocks}, nil
}

func buildHeader(fields map[string]string) (Header, error) {
	h := Header{
		Account:  fields[keyAccount],
		Currency: fields[keyCurrCode],
	}

	var err error
	if h.OpeningBalance, err = parseAmount(fields[keyStartRest]); err != nil {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad %s value %q", keyStartRest, fields[keyStartRest])}
	}
	if h.ClosingBalance, err = parseAmount(fields[keyStopRest]); err != nil {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad %s value %q", keyStopRest, fields[keyStopRest])}
	}
	if h.BeginDate, err = ParseDate(fields[keyBeginDate]); err != nil {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad %s value %q", keyBeginDate, fields[keyBeginDate])}
	}
	if h.EndDate, err = ParseDate(fields[keyEndDate]); err != nil {
		return Header{}, &FormatError{Reason: fmt.Sprintf("bad %s value %q", keyEndDate, fields[keyEndDate])}
	}

	return h, nil
}

// parseAmount parses a statement amount. Empty values are zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	// Some exports use a comma decimal separator.
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// ParseDate parses a DBO date. Empty values yield the zero time.
// DD.MM.YYYY is the native form; ISO dates are accepted as well.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
