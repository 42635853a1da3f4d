package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evghenin/moldova-banking/internal/accounts"
	"github.com/evghenin/moldova-banking/internal/config"
	"github.com/evghenin/moldova-banking/internal/gitops"
	"github.com/evghenin/moldova-banking/internal/importer"
	"github.com/evghenin/moldova-banking/internal/importlog"
	"github.com/evghenin/moldova-banking/internal/ledger"
	"github.com/evghenin/moldova-banking/internal/logger"
	"github.com/evghenin/moldova-banking/internal/party"
	"github.com/evghenin/moldova-banking/internal/reconcile"
	"github.com/evghenin/moldova-banking/internal/rules"
	"github.com/evghenin/moldova-banking/internal/store"
)

func newImportCommand() *cobra.Command {
	var dir string
	var all bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank statement files",
		Long: `Import parses DBO statement files, stores the derived bank
transactions, and runs the automation rules to generate and reconcile
ledger postings. Pass a file path, or --all to process every statement
waiting in the import directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass exactly one statement file, or --all")
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving project dir: %w", err)
			}

			log := logger.New()
			cfg, runner, err := buildRunner(absDir, log)
			if err != nil {
				return err
			}

			if all {
				return runImportAll(cmd, absDir, cfg, runner, log)
			}
			return runImportOne(cmd, absDir, cfg, runner, args[0], log)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	cmd.Flags().BoolVar(&all, "all", false, "import every statement in the import directory")

	return cmd
}

// buildRunner loads a project's config, chart and rules and wires the
// import pipeline over the CSV-backed stores.
func buildRunner(dir string, log zerolog.Logger) (*config.Config, *importer.Runner, error) {
	cfg, err := config.Load(filepath.Join(dir, "moldbank.yaml"))
	if err != nil {
		return nil, nil, err
	}
	chart, err := accounts.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	ruleList, err := rules.Load(dir)
	if err != nil {
		return nil, nil, err
	}

	txns, err := store.OpenFile(filepath.Join(dir, "ledger", "transactions.csv"))
	if err != nil {
		return nil, nil, err
	}
	postings, err := ledger.OpenFileStore(filepath.Join(dir, "ledger", "postings.csv"))
	if err != nil {
		return nil, nil, err
	}

	engine := rules.NewEngine(ruleList, chart)
	generator := ledger.NewGenerator(postings, chart, party.NewRegistry(cfg.Parties), ledger.CompanyDefaults{
		CostCenter:        cfg.Company.CostCenter,
		ReceivableAccount: cfg.Company.ReceivableAccount,
		PayableAccount:    cfg.Company.PayableAccount,
	}, log)
	linker := reconcile.NewLinker(txns, log)

	return cfg, importer.NewRunner(cfg, chart, txns, engine, generator, linker, log), nil
}

func runImportOne(cmd *cobra.Command, dir string, cfg *config.Config, runner *importer.Runner, path string, log zerolog.Logger) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving statement path: %w", err)
	}

	result, err := runner.ImportFile(path)
	if err != nil {
		logResult(dir, path, result, err)
		return err
	}
	printResult(cmd, result)
	logResult(dir, path, result, nil)

	if strings.HasPrefix(path, filepath.Join(dir, "import")+string(filepath.Separator)) {
		if err := importer.MarkProcessed(dir, filepath.Base(path)); err != nil {
			log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("could not move statement to processed")
		}
	}
	return commitImport(dir, cfg, []string{filepath.Base(path)}, log)
}

func runImportAll(cmd *cobra.Command, dir string, cfg *config.Config, runner *importer.Runner, log zerolog.Logger) error {
	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No statement files waiting for import.")
		return nil
	}

	var processed []string
	var failures int
	for _, f := range files {
		result, err := runner.ImportFile(f.Path)
		logResult(dir, f.Path, result, err)
		if err != nil {
			failures++
			log.Error().Str("file", f.Name).Err(err).Msg("import failed")
			continue
		}
		printResult(cmd, result)

		if err := importer.MarkProcessed(dir, f.Name); err != nil {
			log.Warn().Str("file", f.Name).Err(err).Msg("could not move statement to processed")
		}
		processed = append(processed, f.Name)
	}

	if err := commitImport(dir, cfg, processed, log); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d statement files failed to import", failures, len(files))
	}
	return nil
}

func printResult(cmd *cobra.Command, r *importer.Result) {
	cmd.Printf("%s: %d created, %d skipped (%s to %s)\n",
		r.File, r.Created, r.Skipped,
		r.Period.From.Format("2006-01-02"), r.Period.To.Format("2006-01-02"))
	for _, n := range r.Notices {
		cmd.Printf("  duplicate: %s\n", n.String())
	}
}

// logResult appends one audit row regardless of outcome. Audit logging
// failures are non-fatal.
func logResult(dir, path string, r *importer.Result, runErr error) {
	entry := importlog.Entry{
		Timestamp: time.Now(),
		File:      filepath.Base(path),
		Status:    "success",
	}
	if r != nil {
		entry.Created = r.Created
		entry.Skipped = r.Skipped
		if r.Skipped > 0 {
			entry.Status = "partial"
		}
		var details []string
		for _, n := range r.Notices {
			details = append(details, n.String())
		}
		entry.Details = strings.Join(details, "\n")
	}
	if runErr != nil {
		entry.Status = "error"
		entry.Details = runErr.Error()
	}
	_ = importlog.Append(dir, []importlog.Entry{entry})
}

// commitImport records the run's ledger and log changes when the
// project is a git repository with auto-commit enabled.
func commitImport(dir string, cfg *config.Config, files []string, log zerolog.Logger) error {
	if !cfg.Git.AutoCommit || !gitops.IsRepo(dir) || len(files) == 0 {
		return nil
	}

	message := "import: " + strings.Join(files, ", ")
	paths := []string{"ledger", "logs", "import"}
	if _, err := gitops.CommitPaths(dir, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail, paths); err != nil {
		log.Warn().Err(err).Msg("auto-commit failed")
	}
	return nil
}
