package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evghenin/moldova-banking/internal/accounts"
	"github.com/evghenin/moldova-banking/internal/config"
	"github.com/evghenin/moldova-banking/internal/gitops"
	"github.com/evghenin/moldova-banking/internal/rules"
)

func newInitCommand() *cobra.Command {
	var company string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new banking project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, company, currency)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("company")
	cmd.Flags().StringVar(&currency, "currency", "MDL", "base currency of the default chart")

	return cmd
}

func runInit(dir, company, currency string) error {
	dirs := []string{
		"accounts",
		"rules",
		"ledger",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(company)
	if err := config.Save(filepath.Join(dir, "moldbank.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.NewService(accounts.DefaultChart(currency))
	if err := chart.Save(dir); err != nil {
		return fmt.Errorf("writing ledger accounts: %w", err)
	}

	if err := rules.Save(dir, nil); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "*.tmp\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: "+company, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized banking project at %s (%s)\n", dir, hash)
	return nil
}
