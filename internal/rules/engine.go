package rules

import (
	"fmt"
	"strings"

	"github.com/evghenin/moldova-banking/internal/model"
)

// ConfigError means a matched rule cannot be applied because its
// configuration is inconsistent (missing account, currency mismatch).
// Posting generation is skipped for the transaction; the import goes
// on.
type ConfigError struct {
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
}

// Normalize strips spaces, carriage returns and line feeds from a
// description and lowercases it.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ToLower(s)
}

// AccountLookup is the chart capability the engine needs for its
// currency guard.
type AccountLookup interface {
	Get(name string) (model.Account, bool)
}

// Engine matches transactions against an ordered rule list.
type Engine struct {
	rules    []Rule
	accounts AccountLookup
}

// NewEngine creates an Engine. Rule order is evaluation order.
func NewEngine(rules []Rule, accounts AccountLookup) *Engine {
	return &Engine{rules: rules, accounts: accounts}
}

// Match returns the first enabled rule whose company, bank and
// normalized description prefix match the transaction. The matched
// rule is then validated: a journal rule without a counter account, an
// unknown account reference, or a counter-account currency different
// from the bank account's is a ConfigError. The rule is rejected and
// no later rule is tried.
//
// A nil rule with a nil error means no rule matched.
func (e *Engine) Match(txn model.Transaction, bank string, bankAccount model.Account) (*Rule, error) {
	normalized := Normalize(txn.Description)
	if normalized == "" {
		return nil, nil
	}

	for i := range e.rules {
		rule := &e.rules[i]
		if rule.Disabled {
			continue
		}
		if rule.Company != txn.Company || rule.Bank != bank {
			continue
		}

		pattern := Normalize(rule.Pattern)
		if pattern == "" {
			continue
		}
		if len(normalized) < len(pattern) || normalized[:len(pattern)] != pattern {
			continue
		}

		// First textual match wins; anything wrong past this point is a
		// configuration error, not a reason to try later rules.
		if err := e.validate(rule, bankAccount); err != nil {
			return nil, err
		}
		return rule, nil
	}
	return nil, nil
}

func (e *Engine) validate(rule *Rule, bankAccount model.Account) error {
	if rule.Kind != model.KindPayment && rule.Kind != model.KindJournal {
		return &ConfigError{Rule: rule.Name, Reason: fmt.Sprintf("unknown posting kind %q", rule.Kind)}
	}

	if rule.CounterAccount == "" {
		// Journal rules always need their second account.
		if rule.Kind == model.KindJournal {
			return &ConfigError{Rule: rule.Name, Reason: "journal rule has no counter account"}
		}
		return nil
	}

	counter, ok := e.accounts.Get(rule.CounterAccount)
	if !ok {
		return &ConfigError{Rule: rule.Name, Reason: fmt.Sprintf("unknown counter account %q", rule.CounterAccount)}
	}
	if counter.Currency != bankAccount.Currency {
		return &ConfigError{
			Rule: rule.Name,
			Reason: fmt.Sprintf("counter account currency %s does not match bank account currency %s",
				counter.Currency, bankAccount.Currency),
		}
	}
	return nil
}
