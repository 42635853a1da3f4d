package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/evghenin/moldova-banking/internal/config"
	"github.com/evghenin/moldova-banking/internal/ratefeed"
)

func newRatesCommand() *cobra.Command {
	var dir string
	var from, to, date string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Look up an exchange rate from the configured quote table",
		Long: `Rates computes a cross rate between two currencies from the
rate_feed.quotes table in the project config, triangulating through
MDL. The shared secret must be present in ` + config.RateFeedKeyEnv + `;
a .env file in the working directory is loaded at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving project dir: %w", err)
			}
			return runRates(cmd, absDir, from, to, date)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	cmd.Flags().StringVar(&from, "from", "", "source currency code")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "MDL", "target currency code")
	cmd.Flags().StringVar(&date, "date", "", "rate date (YYYY-MM-DD, default today)")

	return cmd
}

func runRates(cmd *cobra.Command, dir, from, to, date string) error {
	key := config.RateFeedKey()
	if key == "" {
		return fmt.Errorf("%s is not set; put the rate-feed shared secret in the environment or a .env file", config.RateFeedKeyEnv)
	}

	cfg, err := config.Load(filepath.Join(dir, "moldbank.yaml"))
	if err != nil {
		return err
	}
	if len(cfg.RateFeed.Quotes) == 0 {
		return fmt.Errorf("no rate_feed.quotes configured in moldbank.yaml")
	}

	quotes := make(map[string]decimal.Decimal, len(cfg.RateFeed.Quotes))
	for code, raw := range cfg.RateFeed.Quotes {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("bad quote for %s: %q", code, raw)
		}
		quotes[code] = rate
	}

	on := time.Now()
	if date != "" {
		if on, err = time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("bad date %q: %w", date, err)
		}
	}

	src := ratefeed.NewStaticSource(key, quotes)
	rate, err := src.Rate(ratefeed.Request{Date: on, From: from, To: to, Key: key})
	if err != nil {
		return err
	}

	cmd.Printf("%s -> %s on %s: %s\n", from, to, on.Format("2006-01-02"), rate.StringFixed(4))
	return nil
}
