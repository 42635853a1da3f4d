package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/evghenin/moldova-banking/internal/accounts"
	"github.com/evghenin/moldova-banking/internal/config"
	"github.com/evghenin/moldova-banking/internal/dbo"
	"github.com/evghenin/moldova-banking/internal/dedupe"
	"github.com/evghenin/moldova-banking/internal/ledger"
	"github.com/evghenin/moldova-banking/internal/model"
	"github.com/evghenin/moldova-banking/internal/reconcile"
	"github.com/evghenin/moldova-banking/internal/rules"
	"github.com/evghenin/moldova-banking/internal/store"
)

// ErrImportInProgress means an import job with the same identity key
// is already running.
var ErrImportInProgress = errors.New("import already in progress")

// Result summarizes one statement import run.
type Result struct {
	File    string
	Created int
	Skipped int
	Notices []dedupe.Notice
	Period  dbo.Period
}

// Runner drives the full import pipeline for statement files: parse,
// derive, dedupe, persist, then rule-driven posting generation and
// reconciliation. Runs for different files may execute concurrently;
// a per-file job key stops the same statement from being imported
// twice at once.
type Runner struct {
	cfg       *config.Config
	chart     *accounts.Service
	txns      store.TransactionStore
	guard     *dedupe.Guard
	engine    *rules.Engine
	generator *ledger.Generator
	linker    *reconcile.Linker
	log       zerolog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// NewRunner wires the pipeline. engine, generator and linker may be
// nil when automation is disabled.
func NewRunner(
	cfg *config.Config,
	chart *accounts.Service,
	txns store.TransactionStore,
	engine *rules.Engine,
	generator *ledger.Generator,
	linker *reconcile.Linker,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		chart:     chart,
		txns:      txns,
		guard:     dedupe.NewGuard(txns),
		engine:    engine,
		generator: generator,
		linker:    linker,
		log:       log,
		active:    make(map[string]struct{}),
	}
}

// ImportFile imports one statement file. Duplicate lines are skipped
// with a notice; automation failures are logged and never block the
// transaction's persistence. Only a parse failure or an unrecoverable
// store failure aborts the run.
func (r *Runner) ImportFile(path string) (*Result, error) {
	key := "import::" + filepath.Base(path)
	if !r.acquire(key) {
		return nil, fmt.Errorf("%w: %s", ErrImportInProgress, filepath.Base(path))
	}
	defer r.release(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	if !dbo.IsDBO(string(data)) {
		return nil, &dbo.FormatError{Reason: "file is not a DBO statement"}
	}
	if !r.cfg.Import.DBOEnabled {
		return nil, fmt.Errorf("DBO statement detected but DBO import is disabled")
	}

	stmt, err := dbo.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	acct, ok := r.cfg.AccountByIBAN(stmt.Header.Account)
	if !ok {
		return nil, fmt.Errorf("statement account %q is not configured", stmt.Header.Account)
	}
	bankLedger, ok := r.chart.Get(acct.LedgerAccount)
	if !ok {
		return nil, fmt.Errorf("bank account %q references unknown ledger account %q", acct.Name, acct.LedgerAccount)
	}

	txns, period, err := dbo.Derive(stmt.Header, stmt.Blocks)
	if err != nil {
		return nil, err
	}

	result := &Result{File: filepath.Base(path), Period: period}
	for _, txn := range txns {
		txn.Company = r.cfg.Company.Name
		txn.BankAccount = acct.Name

		notice, err := r.guard.Check(txn)
		if err != nil {
			return nil, err
		}
		if notice != nil {
			result.Skipped++
			result.Notices = append(result.Notices, *notice)
			continue
		}

		id, err := r.txns.Insert(txn)
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a read-then-write race; the conflict is the
			// duplicate signal.
			result.Skipped++
			result.Notices = append(result.Notices, r.conflictNotice(txn))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("storing transaction: %w", err)
		}
		txn.ID = id
		result.Created++

		r.automate(txn, acct, bankLedger)
	}

	return result, nil
}

// automate runs the rule engine for one inserted transaction. All
// failures degrade to log lines; the transaction stays imported.
func (r *Runner) automate(txn model.Transaction, acct config.BankAccount, bankLedger model.Account) {
	if !r.cfg.Automation.Enabled || r.engine == nil || r.generator == nil {
		return
	}

	rule, err := r.engine.Match(txn, acct.Bank, bankLedger)
	if err != nil {
		r.log.Warn().Str("transaction", txn.ID).Err(err).Msg("automation rule rejected")
		return
	}
	if rule == nil {
		return
	}

	applied := *rule
	if applied.ModeOfPayment == "" {
		applied.ModeOfPayment = r.cfg.Automation.ModeOfPayment
	}

	posting, err := r.generator.Generate(txn, applied, bankLedger)
	if err != nil {
		r.log.Warn().Str("transaction", txn.ID).Err(err).Msg("posting generation rejected")
		return
	}
	if posting == nil {
		return
	}

	if applied.AutoReconcile && posting.State == model.StateSubmitted && r.linker != nil {
		if err := r.linker.Link(txn.ID, *posting); err != nil {
			r.log.Error().Str("transaction", txn.ID).Str("posting", posting.ID).Err(err).Msg("reconciliation failed")
		}
	}
}

// conflictNotice builds a duplicate notice after an insert-time
// conflict, looking up the winning record for its id.
func (r *Runner) conflictNotice(txn model.Transaction) dedupe.Notice {
	if notice, err := r.guard.Check(txn); err == nil && notice != nil {
		return *notice
	}
	return dedupe.Notice{
		Date:       txn.Date,
		Deposit:    txn.Deposit,
		Withdrawal: txn.Withdrawal,
		Reference:  txn.Reference,
	}
}

func (r *Runner) acquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[key]; busy {
		return false
	}
	r.active[key] = struct{}{}
	return true
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}
