package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	api "plasmid/pkg/plasmid"
)

// runConfig mirrors the run subcommand flags as a TOML document. Explicit
// command-line flags always win over config values.
type runConfig struct {
	Population    int      `toml:"population"`
	Generations   int      `toml:"generations"`
	MaxSteps      int      `toml:"max_steps"`
	Runs          int      `toml:"runs"`
	Seed          int64    `toml:"seed"`
	SeedCodes     []string `toml:"seed_codes"`
	SeedFile      string   `toml:"seed_file"`
	Compile       bool     `toml:"compile"`
	TargetPeptide string   `toml:"target_peptide"`
	MaxAttempts   int      `toml:"max_attempts"`
	Store         string   `toml:"store"`
	DBPath        string   `toml:"db_path"`
	LogPath       string   `toml:"log_path"`
}

func loadRunConfig(path string) (*runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg runConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies config values into req and opts for every flag the user did
// not set explicitly. Zero values in the config leave the flag defaults
// untouched.
func (c *runConfig) apply(req *api.RunRequest, opts *api.Options, explicit map[string]bool) {
	if c.Population > 0 && !explicit["pop"] {
		req.Population = c.Population
	}
	if c.Generations > 0 && !explicit["gens"] {
		req.Generations = c.Generations
	}
	if c.MaxSteps > 0 && !explicit["max-steps"] {
		req.MaxSteps = c.MaxSteps
	}
	if c.Runs > 0 && !explicit["runs"] {
		req.Runs = c.Runs
	}
	if c.Seed != 0 && !explicit["seed"] {
		req.Seed = c.Seed
	}
	if len(c.SeedCodes) > 0 && !explicit["seed-codes"] {
		req.SeedCodes = append([]string{}, c.SeedCodes...)
	}
	if c.SeedFile != "" && !explicit["seed-file"] {
		req.SeedFile = c.SeedFile
	}
	if c.Compile && !explicit["compile"] {
		req.Compile = true
	}
	if c.TargetPeptide != "" && !explicit["target"] {
		req.TargetPeptide = c.TargetPeptide
	}
	if c.MaxAttempts > 0 && !explicit["max-attempts"] {
		req.MaxAttempts = c.MaxAttempts
	}
	if c.Store != "" && !explicit["store"] {
		opts.StoreKind = c.Store
	}
	if c.DBPath != "" && !explicit["db-path"] {
		opts.DBPath = c.DBPath
	}
	if c.LogPath != "" && !explicit["log"] {
		opts.LogPath = c.LogPath
	}
}
