// Package config provides the typed configuration consumed by the
// reconciliation pipeline. Configuration is loaded once by the CLI and
// passed in as a value so the pipeline can be re-run with different
// settings without process-level state.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/harpergrove/skein/internal/common"
	"github.com/harpergrove/skein/internal/model"
)

// Config carries everything the pipeline needs beyond the source files.
type Config struct {
	// SourceDir holds the statement documents and bank exports.
	SourceDir string `mapstructure:"source_dir"`
	// DatabasePath is where reconciled runs are persisted.
	DatabasePath string `mapstructure:"database_path"`

	// CategoryOverrides maps a case-insensitive description substring to a
	// category, checked before the built-in categorization rules.
	CategoryOverrides map[string]string `mapstructure:"category_overrides"`

	// TransactionOverrides are applied once, in order, after the merge.
	TransactionOverrides []Override `mapstructure:"transaction_overrides"`

	// ManualTransactions backstop months no parsed source covers.
	ManualTransactions []ManualTransaction `mapstructure:"manual_transactions"`

	// ExtraBoilerplate extends the set of statement lines the document
	// extractor skips, so new statement layouts don't destabilize parsing.
	ExtraBoilerplate []string `mapstructure:"extra_boilerplate"`

	// FallbackPeriod, when set, is used for documents whose period header
	// cannot be located. When unset such documents are skipped.
	FallbackPeriod *FallbackPeriod `mapstructure:"fallback_period"`
}

// FallbackPeriod supplies the statement years to assume when a document
// carries no detectable period header.
type FallbackPeriod struct {
	StartYear int `mapstructure:"start_year"`
	EndYear   int `mapstructure:"end_year"`
}

// OverrideMatch selects the transactions an override applies to. Empty
// fields match anything; set fields must all match.
type OverrideMatch struct {
	DescContains string   `mapstructure:"desc_contains"`
	Date         string   `mapstructure:"date"` // MM/DD/YYYY prefix match
	Amount       *float64 `mapstructure:"amount"`
}

// Split is one piece of a split override.
type Split struct {
	Category string  `mapstructure:"category"`
	Amount   float64 `mapstructure:"amount"`
}

// Override is a declarative correction: split one ledger line into several,
// or force a category. The first matching override wins per transaction.
type Override struct {
	Match    OverrideMatch `mapstructure:"match"`
	Action   string        `mapstructure:"action"` // "split" or "recategorize"
	Category string        `mapstructure:"category"`
	Splits   []Split       `mapstructure:"splits"`
}

// ManualTransaction is a config-declared ledger entry used for months with
// no parsed source.
type ManualTransaction struct {
	Date     string  `mapstructure:"date"` // MM/DD/YYYY
	Desc     string  `mapstructure:"desc"`
	Kind     string  `mapstructure:"kind"`
	Category string  `mapstructure:"category"`
	Amount   float64 `mapstructure:"amount"`
}

// Transaction converts the manual entry to a canonical Transaction.
func (m ManualTransaction) Transaction() (model.Transaction, error) {
	date, err := time.Parse("01/02/2006", m.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("manual transaction date %q: %w", m.Date, err)
	}
	kind := model.Kind(m.Kind)
	if !kind.Valid() {
		return model.Transaction{}, fmt.Errorf("manual transaction kind %q: %w", m.Kind, common.ErrInvalidConfig)
	}
	return model.Transaction{
		Date:           date,
		Description:    m.Desc,
		RawDescription: m.Desc,
		Category:       m.Category,
		SourceFile:     "config (manual)",
		Amount:         decimal.NewFromFloat(m.Amount),
		Kind:           kind,
	}, nil
}

// Load unmarshals and validates the pipeline configuration from viper.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SourceDir = ExpandPath(cfg.SourceDir)
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parts of the configuration that would otherwise fail
// deep inside a pipeline run.
func (c Config) Validate() error {
	for i, o := range c.TransactionOverrides {
		switch o.Action {
		case "split":
			if len(o.Splits) == 0 {
				return fmt.Errorf("transaction_overrides[%d]: split with no splits: %w", i, common.ErrInvalidConfig)
			}
		case "recategorize":
			if strings.TrimSpace(o.Category) == "" {
				return fmt.Errorf("transaction_overrides[%d]: recategorize with no category: %w", i, common.ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("transaction_overrides[%d]: unknown action %q: %w", i, o.Action, common.ErrInvalidConfig)
		}
	}
	for i, m := range c.ManualTransactions {
		if _, err := m.Transaction(); err != nil {
			return fmt.Errorf("manual_transactions[%d]: %w", i, err)
		}
	}
	if fp := c.FallbackPeriod; fp != nil {
		if fp.StartYear < 1970 || fp.EndYear < fp.StartYear {
			return fmt.Errorf("fallback_period %d-%d: %w", fp.StartYear, fp.EndYear, common.ErrInvalidConfig)
		}
	}
	return nil
}
