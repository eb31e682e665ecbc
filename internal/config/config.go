// Package config loads engine and table settings from HCL files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/tablestakes/internal/table"
)

// Config is the complete engine configuration.
type Config struct {
	Engine EngineSettings  `hcl:"engine,block"`
	Tables []TableSettings `hcl:"table,block"`
}

// EngineSettings contains service-level configuration.
type EngineSettings struct {
	AdminToken string `hcl:"admin_token,optional"`
	LogLevel   string `hcl:"log_level,optional"`
}

// TableSettings defines one table. Timeouts are durations in the
// usual Go syntax ("30s", "2m").
type TableSettings struct {
	Name          string `hcl:"name,label"`
	Seats         int    `hcl:"seats,optional"`
	SmallBlind    int64  `hcl:"small_blind"`
	BigBlind      int64  `hcl:"big_blind"`
	Ante          int64  `hcl:"ante,optional"`
	MinBuyIn      int64  `hcl:"min_buy_in,optional"`
	MaxBuyIn      int64  `hcl:"max_buy_in,optional"`
	FeeBps        int64  `hcl:"fee_bps,optional"`
	PenaltyBps    int64  `hcl:"penalty_bps,optional"`
	FeeRecipient  string `hcl:"fee_recipient,optional"`
	Straddle      bool   `hcl:"straddle,optional"`
	CommitTimeout string `hcl:"commit_timeout,optional"`
	RevealTimeout string `hcl:"reveal_timeout,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: EngineSettings{
			AdminToken: "",
			LogLevel:   "info",
		},
		Tables: []TableSettings{
			{
				Name:          "main",
				Seats:         6,
				SmallBlind:    10,
				BigBlind:      20,
				MinBuyIn:      1000,
				MaxBuyIn:      10000,
				PenaltyBps:    500,
				FeeRecipient:  "house",
				CommitTimeout: "30s",
				RevealTimeout: "30s",
				ActionTimeout: "30s",
			},
		},
	}
}

// Load reads filename, falling back to Default when it does not
// exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Engine.LogLevel == "" {
		c.Engine.LogLevel = "info"
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Seats == 0 {
			t.Seats = 6
		}
		if t.MinBuyIn == 0 {
			t.MinBuyIn = t.BigBlind * 50
		}
		if t.MaxBuyIn == 0 {
			t.MaxBuyIn = t.BigBlind * 500
		}
		if t.FeeRecipient == "" {
			t.FeeRecipient = "house"
		}
		if t.CommitTimeout == "" {
			t.CommitTimeout = "30s"
		}
		if t.RevealTimeout == "" {
			t.RevealTimeout = "30s"
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = "30s"
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	for _, t := range c.Tables {
		if t.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", t.Name)
		}
		if t.BigBlind <= t.SmallBlind {
			return fmt.Errorf("table %s: big blind must exceed small blind", t.Name)
		}
		if t.Ante < 0 {
			return fmt.Errorf("table %s: ante must not be negative", t.Name)
		}
		if t.Seats < 2 || t.Seats > 10 {
			return fmt.Errorf("table %s: seats must be between 2 and 10", t.Name)
		}
		if t.MinBuyIn >= t.MaxBuyIn {
			return fmt.Errorf("table %s: min buy-in must be below max", t.Name)
		}
		if t.FeeBps < 0 || t.FeeBps > 10000 {
			return fmt.Errorf("table %s: fee_bps must be within 0-10000", t.Name)
		}
		if t.PenaltyBps < 0 || t.PenaltyBps > 10000 {
			return fmt.Errorf("table %s: penalty_bps must be within 0-10000", t.Name)
		}
		for _, d := range []string{t.CommitTimeout, t.RevealTimeout, t.ActionTimeout} {
			if _, err := time.ParseDuration(d); err != nil {
				return fmt.Errorf("table %s: bad timeout %q: %w", t.Name, d, err)
			}
		}
	}
	return nil
}

// TableConfig converts the settings into the table package's form.
// Call Validate first; bad durations panic here.
func (s *TableSettings) TableConfig() table.Config {
	mustParse := func(d string) time.Duration {
		v, err := time.ParseDuration(d)
		if err != nil {
			panic(fmt.Sprintf("config: unvalidated duration %q", d))
		}
		return v
	}
	return table.Config{
		Seats:         s.Seats,
		SmallBlind:    s.SmallBlind,
		BigBlind:      s.BigBlind,
		Ante:          s.Ante,
		MinBuyIn:      s.MinBuyIn,
		MaxBuyIn:      s.MaxBuyIn,
		FeeBps:        s.FeeBps,
		PenaltyBps:    s.PenaltyBps,
		FeeRecipient:  s.FeeRecipient,
		Straddle:      s.Straddle,
		CommitTimeout: mustParse(s.CommitTimeout),
		RevealTimeout: mustParse(s.RevealTimeout),
		ActionTimeout: mustParse(s.ActionTimeout),
	}
}

// TableByName returns the named table's settings, nil if absent.
func (c *Config) TableByName(name string) *TableSettings {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}
