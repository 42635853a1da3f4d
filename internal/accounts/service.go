package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/evghenin/moldova-banking/internal/model"
)

// Service provides in-memory lookup over the ledger account chart.
type Service struct {
	accounts []model.Account
	byName   map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byName := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	return &Service{accounts: accounts, byName: byName}
}

// Load reads ledger-accounts.csv from a project root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "accounts", "ledger-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger accounts: %w", err)
	}
	return NewService(accts), nil
}

// Save writes the chart to <root>/accounts/ledger-accounts.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "ledger-accounts.csv"))
	if err != nil {
		return fmt.Errorf("creating ledger accounts: %w", err)
	}
	defer f.Close()

	return WriteAccounts(f, s.accounts)
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by name.
func (s *Service) Get(name string) (model.Account, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Exists reports whether an account name is in the chart.
func (s *Service) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}
