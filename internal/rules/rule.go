// Package rules implements the automation rule list and the
// description-matching engine that decides which ledger posting, if
// any, a bank transaction generates.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Rule is one configured automation rule. Rules are evaluated in file
// order; the first match wins.
type Rule struct {
	Name     string `yaml:"name"`
	Disabled bool   `yaml:"disabled,omitempty"`
	Company  string `yaml:"company"`
	Bank     string `yaml:"bank"`
	Pattern  string `yaml:"description_pattern"`

	Kind model.PostingKind `yaml:"posting_kind"`
	// CounterAccount is the clearing/counter account of a payment rule
	// or the second account of a journal rule. Journal rules must set
	// it; payment rules may leave it empty when a resolved party's
	// receivable/payable account should be used instead.
	CounterAccount string `yaml:"counter_account,omitempty"`
	// JournalType is the journal posting subtype; "bank-entry" enables
	// party tracking on the counter leg.
	JournalType   string `yaml:"journal_type,omitempty"`
	CostCenter    string `yaml:"cost_center,omitempty"`
	ModeOfPayment string `yaml:"mode_of_payment,omitempty"`
	Submit        bool   `yaml:"submit,omitempty"`
	AutoReconcile bool   `yaml:"auto_reconcile,omitempty"`
}

// rulesFile is the document wrapper of automation-rules.yaml.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads rules/automation-rules.yaml from a project root,
// preserving file order.
func Load(root string) ([]Rule, error) {
	path := filepath.Join(root, "rules", "automation-rules.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return f.Rules, nil
}

// Save writes the rule list to rules/automation-rules.yaml.
func Save(root string, rules []Rule) error {
	dir := filepath.Join(root, "rules")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}

	data, err := yaml.Marshal(rulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "automation-rules.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
