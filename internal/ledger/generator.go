package ledger

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evghenin/moldova-banking/internal/model"
	"github.com/evghenin/moldova-banking/internal/party"
	"github.com/evghenin/moldova-banking/internal/rules"
)

// CompanyDefaults carries per-company fallbacks used when a rule does
// not configure its own.
type CompanyDefaults struct {
	CostCenter        string
	ReceivableAccount string
	PayableAccount    string
}

// Generator builds ledger postings for transactions matched by an
// automation rule. Creation and finalization failures are logged with
// the source transaction id and leave the transaction without a
// posting; only rule configuration problems surface as errors.
type Generator struct {
	store    PostingStore
	accounts rules.AccountLookup
	resolver party.Resolver // may be nil
	defaults CompanyDefaults
	log      zerolog.Logger
}

// NewGenerator creates a Generator. resolver may be nil when no party
// registry is configured.
func NewGenerator(store PostingStore, accounts rules.AccountLookup, resolver party.Resolver, defaults CompanyDefaults, log zerolog.Logger) *Generator {
	return &Generator{
		store:    store,
		accounts: accounts,
		resolver: resolver,
		defaults: defaults,
		log:      log,
	}
}

// Generate builds, stores and (when the rule says so) submits the
// posting for a matched transaction.
//
// Returns (nil, nil) when nothing was generated: zero-amount
// transaction, posting already exists from an earlier run, or a
// creation/submission failure that was logged. A posting still in
// draft state is returned as-is; the caller must not link it.
func (g *Generator) Generate(txn model.Transaction, rule rules.Rule, bankAccount model.Account) (*model.Posting, error) {
	amount := txn.Amount()
	if amount.IsZero() {
		return nil, nil
	}
	incoming := !txn.Deposit.IsZero()

	var resolved *party.Party
	if g.resolver != nil && txn.CounterpartyTax != "" {
		direction := party.Outgoing
		if incoming {
			direction = party.Incoming
		}
		if p, ok := g.resolver.Resolve(txn.CounterpartyTax, direction); ok {
			resolved = &p
		}
	}

	counter, err := g.counterAccount(rule, bankAccount, incoming, resolved)
	if err != nil {
		return nil, err
	}

	// Re-run guard: skip generation when the posting already exists.
	q := PostingQuery{
		Company:   txn.Company,
		Reference: txn.Reference,
		Date:      txn.Date,
		Amount:    amount,
	}
	if _, exists, err := g.store.FindPosting(q); err != nil {
		return nil, fmt.Errorf("posting lookup: %w", err)
	} else if exists {
		return nil, nil
	}

	posting := g.build(txn, rule, bankAccount, counter, resolved)

	if verrs := ValidatePosting(posting); len(verrs) > 0 {
		g.log.Error().
			Str("transaction", txn.ID).
			Str("rule", rule.Name).
			Errs("violations", toErrs(verrs)).
			Msg("posting failed validation")
		return nil, nil
	}

	id, err := g.store.InsertPosting(posting)
	if err != nil {
		g.log.Error().
			Str("transaction", txn.ID).
			Str("rule", rule.Name).
			Err(err).
			Msg("posting create failed")
		return nil, nil
	}
	posting.ID = id
	posting.State = model.StateDraft

	if rule.Submit {
		submitted, err := g.store.SubmitPosting(id)
		if err != nil {
			// The posting stays in draft; reconciliation is skipped.
			g.log.Error().
				Str("transaction", txn.ID).
				Str("posting", id).
				Err(err).
				Msg("posting submit failed")
			return &posting, nil
		}
		posting = submitted
	}

	return &posting, nil
}

// counterAccount resolves the account facing the bank leg. A missing
// or currency-mismatched account on a matched rule is a configuration
// error.
func (g *Generator) counterAccount(rule rules.Rule, bankAccount model.Account, incoming bool, resolved *party.Party) (model.Account, error) {
	name := rule.CounterAccount
	if name == "" {
		if rule.Kind == model.KindJournal {
			return model.Account{}, &rules.ConfigError{Rule: rule.Name, Reason: "journal rule has no counter account"}
		}
		if resolved == nil {
			return model.Account{}, &rules.ConfigError{Rule: rule.Name, Reason: "no counter account and no resolvable party"}
		}
		if incoming {
			name = g.defaults.ReceivableAccount
		} else {
			name = g.defaults.PayableAccount
		}
		if name == "" {
			return model.Account{}, &rules.ConfigError{Rule: rule.Name, Reason: "no receivable/payable account configured for party postings"}
		}
	}

	counter, ok := g.accounts.Get(name)
	if !ok {
		return model.Account{}, &rules.ConfigError{Rule: rule.Name, Reason: fmt.Sprintf("unknown counter account %q", name)}
	}
	if counter.Currency != bankAccount.Currency {
		return model.Account{}, &rules.ConfigError{
			Rule: rule.Name,
			Reason: fmt.Sprintf("counter account currency %s does not match bank account currency %s",
				counter.Currency, bankAccount.Currency),
		}
	}
	return counter, nil
}

// build assembles the posting legs. Deposits debit the bank leg,
// withdrawals credit it; the counter leg mirrors.
func (g *Generator) build(txn model.Transaction, rule rules.Rule, bankAccount, counter model.Account, resolved *party.Party) model.Posting {
	amount := txn.Amount()
	incoming := !txn.Deposit.IsZero()

	costCenter := rule.CostCenter
	if costCenter == "" {
		costCenter = g.defaults.CostCenter
	}

	bankLeg := model.PostingLeg{
		Account:    bankAccount.Name,
		Currency:   bankAccount.Currency,
		CostCenter: costCenter,
	}
	counterLeg := model.PostingLeg{
		Account:    counter.Name,
		Currency:   counter.Currency,
		CostCenter: costCenter,
	}
	if incoming {
		bankLeg.Debit = amount
		counterLeg.Credit = amount
	} else {
		bankLeg.Credit = amount
		counterLeg.Debit = amount
	}

	p := model.Posting{
		Kind:          rule.Kind,
		Company:       txn.Company,
		Date:          txn.Date,
		Reference:     txn.Reference,
		ModeOfPayment: rule.ModeOfPayment,
		Amount:        amount,
		Currency:      bankAccount.Currency,
		State:         model.StateDraft,
	}

	switch rule.Kind {
	case model.KindPayment:
		if resolved != nil {
			p.PartyType = string(resolved.Type)
			p.Party = resolved.Name
			counterLeg.PartyType = string(resolved.Type)
			counterLeg.Party = resolved.Name
		}
	case model.KindJournal:
		p.JournalType = rule.JournalType
		// Party tracking is supported on the counter leg of bank-entry
		// journals only.
		if rule.JournalType == model.JournalTypeBankEntry && resolved != nil {
			counterLeg.PartyType = string(resolved.Type)
			counterLeg.Party = resolved.Name
		}
	}

	p.Legs = []model.PostingLeg{bankLeg, counterLeg}
	return p
}

func toErrs(verrs []ValidationError) []error {
	errs := make([]error, len(verrs))
	for i, v := range verrs {
		errs[i] = v
	}
	return errs
}
