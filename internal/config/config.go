package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evghenin/moldova-banking/internal/party"
)

// Config represents the top-level moldbank.yaml configuration. It is
// loaded once per run and passed by reference; components never reach
// for ambient settings.
type Config struct {
	Company      CompanyConfig    `yaml:"company"`
	BankAccounts []BankAccount    `yaml:"bank_accounts,omitempty"`
	Import       ImportConfig     `yaml:"import"`
	Automation   AutomationConfig `yaml:"automation"`
	Parties      []party.Entry    `yaml:"parties,omitempty"`
	RateFeed     RateFeedConfig   `yaml:"rate_feed,omitempty"`
	Git          GitConfig        `yaml:"git"`
}

// CompanyConfig identifies the owning company and its ledger defaults.
type CompanyConfig struct {
	Name              string `yaml:"name"`
	TaxID             string `yaml:"tax_id,omitempty"`
	CostCenter        string `yaml:"cost_center,omitempty"`
	ReceivableAccount string `yaml:"receivable_account,omitempty"`
	PayableAccount    string `yaml:"payable_account,omitempty"`
}

// BankAccount maps a statement account identifier (IBAN) to a bank and
// a ledger account from the chart.
type BankAccount struct {
	Name          string `yaml:"name"`
	Bank          string `yaml:"bank"`
	IBAN          string `yaml:"iban"`
	LedgerAccount string `yaml:"ledger_account"`
}

// ImportConfig controls statement ingestion.
type ImportConfig struct {
	DBOEnabled bool `yaml:"dbo_enabled"`
	// Schedule is the cron spec used by the watch command.
	Schedule string `yaml:"schedule,omitempty"`
}

// AutomationConfig gates rule-driven posting generation.
type AutomationConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ModeOfPayment string `yaml:"mode_of_payment,omitempty"`
}

// RateFeedConfig holds the exchange-rate lookup settings. Quotes are
// MDL per unit of the keyed currency. The shared secret is never kept
// in the project file; it comes from the environment (.env or shell).
type RateFeedConfig struct {
	Quotes map[string]string `yaml:"quotes,omitempty"`
}

// RateFeedKeyEnv is the environment variable carrying the rate-feed
// shared secret.
const RateFeedKeyEnv = "MOLDBANK_RATEFEED_KEY"

// RateFeedKey returns the rate-feed shared secret from the environment.
func RateFeedKey() string {
	return os.Getenv(RateFeedKeyEnv)
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a moldbank.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(companyName string) *Config {
	return &Config{
		Company: CompanyConfig{
			Name:              companyName,
			ReceivableAccount: "221 Trade Receivables",
			PayableAccount:    "521 Trade Payables",
		},
		Import: ImportConfig{
			DBOEnabled: true,
			Schedule:   "@every 5m",
		},
		Automation: AutomationConfig{
			Enabled:       true,
			ModeOfPayment: "Bank Transfer",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Moldbank Import",
			AuthorEmail: "import@moldbank.local",
		},
	}
}

// AccountByIBAN returns the configured bank account whose IBAN matches
// the statement's account identifier.
func (c *Config) AccountByIBAN(iban string) (BankAccount, bool) {
	for _, a := range c.BankAccounts {
		if a.IBAN == iban {
			return a, true
		}
	}
	return BankAccount{}, false
}
