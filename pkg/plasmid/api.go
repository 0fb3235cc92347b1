// Package plasmid is the public entry point for running genetic program
// simulations. It ties together the interpreter, the evolutionary loop,
// the run archive and the plain-text run log behind a single Client.
package plasmid

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"plasmid/internal/agent"
	"plasmid/internal/evo"
	"plasmid/internal/gene"
	"plasmid/internal/interp"
	"plasmid/internal/model"
	"plasmid/internal/peptide"
	"plasmid/internal/runlog"
	"plasmid/internal/storage"
)

var log = commonlog.GetLogger("plasmid.api")

// Options configures a Client.
type Options struct {
	// StoreKind selects the run archive backend ("memory" or "sqlite").
	// Empty means storage.DefaultStoreKind().
	StoreKind string
	// DBPath is the sqlite database path. Ignored by the memory store.
	DBPath string
	// LogPath is the plain-text run log. Empty disables the log.
	LogPath string
}

// RunRequest describes one or more simulation runs.
type RunRequest struct {
	Population    int
	Generations   int
	MaxSteps      int
	Runs          int
	Seed          int64
	SeedCodes     []string
	SeedFile      string
	Compile       bool
	TargetPeptide string
	MaxAttempts   int
}

// RunSummary is the outcome of a single completed run.
type RunSummary struct {
	RunID             string
	RunNumber         int
	Generations       int
	Extinct           bool
	BestCode          string
	BestProgeny       string
	BestPeptide       string
	BestFitness       float64
	CumulativeEntropy float64
}

// Client runs simulations and records their outcomes.
type Client struct {
	tbl         *gene.Table
	peptides    peptide.Table
	store       storage.Store
	logPath     string
	runCount    int
	initialized bool
}

// New builds a Client. The returned Client holds an open store; call
// Close when done.
func New(opts Options) (*Client, error) {
	kind := opts.StoreKind
	if kind == "" {
		kind = storage.DefaultStoreKind()
	}
	store, err := storage.NewStore(kind, opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Client{
		tbl:      gene.DefaultTable(),
		peptides: peptide.StandardTable(),
		store:    store,
		logPath:  opts.LogPath,
	}, nil
}

// Close releases the underlying store.
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Table exposes the codon table the Client simulates with.
func (c *Client) Table() *gene.Table { return c.tbl }

// init prepares the store once per Client; later calls are free.
func (c *Client) init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.initialized = true
	return nil
}

// Run executes req.Runs simulation runs (at least one) and persists each
// outcome. Runs after the first reseed the generator with Seed+i so they
// explore distinct trajectories while staying reproducible.
func (c *Client) Run(ctx context.Context, req RunRequest) ([]RunSummary, error) {
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	seeds := req.SeedCodes
	if req.SeedFile != "" {
		loaded, err := LoadSeedFile(req.SeedFile, req.Compile)
		if err != nil {
			return nil, err
		}
		seeds = append(append([]string{}, seeds...), loaded...)
	}
	runs := req.Runs
	if runs <= 0 {
		runs = 1
	}
	summaries := make([]RunSummary, 0, runs)
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		s, err := c.runOnce(ctx, req, seeds, req.Seed+int64(i))
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *Client) runOnce(ctx context.Context, req RunRequest, seeds []string, seed int64) (RunSummary, error) {
	cfg := evo.SimulationConfig{
		Table:          c.tbl,
		Peptides:       c.peptides,
		PopulationSize: req.Population,
		MaxGenerations: req.Generations,
		MaxSteps:       req.MaxSteps,
		SeedCodes:      seeds,
		TargetPeptide:  req.TargetPeptide,
		MaxAttempts:    req.MaxAttempts,
		Seed:           seed,
	}
	sim, err := evo.NewSimulation(cfg)
	if err != nil {
		return RunSummary{}, fmt.Errorf("build simulation: %w", err)
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	c.runCount++
	sum := RunSummary{
		RunID:             uuid.NewString(),
		RunNumber:         c.runCount,
		Generations:       sim.Generation(),
		Extinct:           res.Extinct,
		BestFitness:       res.BestFitness,
		CumulativeEntropy: sim.CumulativeEntropy(),
	}
	if res.Best != nil {
		sum.BestCode = res.Best.Code()
		sum.BestProgeny = res.Best.Progeny()
		sum.BestPeptide = res.Best.TranslateToPeptide(c.peptides)
	}
	if err := c.persist(ctx, req, seed, sum, res); err != nil {
		return sum, err
	}
	log.Infof("run %s finished: generations=%d best_fitness=%.3f extinct=%t",
		sum.RunID, sum.Generations, sum.BestFitness, sum.Extinct)
	return sum, nil
}

func (c *Client) persist(ctx context.Context, req RunRequest, seed int64, sum RunSummary, res *evo.RunResult) error {
	rec := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:                sum.RunID,
		CreatedAtUTC:      time.Now().UTC().Format(time.RFC3339),
		Seed:              seed,
		PopulationSize:    req.Population,
		Generations:       sum.Generations,
		MaxSteps:          req.MaxSteps,
		TargetPeptide:     req.TargetPeptide,
		Extinct:           sum.Extinct,
		BestCode:          sum.BestCode,
		BestProgeny:       sum.BestProgeny,
		BestPeptide:       sum.BestPeptide,
		BestFitness:       sum.BestFitness,
		CumulativeEntropy: sum.CumulativeEntropy,
	}
	if err := c.store.SaveRun(ctx, rec); err != nil {
		return fmt.Errorf("save run %s: %w", sum.RunID, err)
	}
	if err := c.store.SaveDiagnostics(ctx, sum.RunID, res.Diagnostics); err != nil {
		return fmt.Errorf("save diagnostics for %s: %w", sum.RunID, err)
	}
	if err := c.store.SaveLineage(ctx, sum.RunID, res.Lineage); err != nil {
		return fmt.Errorf("save lineage for %s: %w", sum.RunID, err)
	}
	if c.logPath == "" {
		return nil
	}
	entry := runlog.Entry{
		RunNumber:         sum.RunNumber,
		Generations:       sum.Generations,
		CumulativeEntropy: sum.CumulativeEntropy,
		BestCode:          sum.BestCode,
	}
	if err := runlog.Append(c.logPath, entry); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}

// Runs lists all archived runs, oldest first.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx)
}

// ErrRunNotFound reports a run id absent from the archive.
var ErrRunNotFound = errors.New("run not found")

// Diagnostics returns the per-generation statistics of an archived run.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	diags, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return diags, nil
}

// Lineage returns the parent/child records of an archived run.
func (c *Client) Lineage(ctx context.Context, runID string) ([]model.LineageRecord, error) {
	if err := c.init(ctx); err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return lineage, nil
}

// Compile turns mixed operation-name/codon source into executable code.
func (c *Client) Compile(source string) (string, error) {
	return interp.Compile(c.tbl, source)
}

// Decompile renders code as operation names where codons map to one.
func (c *Client) Decompile(code string) (string, error) {
	return interp.Decompile(c.tbl, code)
}

// Compress strips non-operation codons from code.
func (c *Client) Compress(code string) (string, error) {
	return interp.Compress(c.tbl, code)
}

// Fitness scores an arbitrary code string the way the evolutionary loop
// would: run it, translate the progeny and compare against target.
func (c *Client) Fitness(code, target string, maxSteps int) (float64, error) {
	a := agent.New(c.tbl, "fitness")
	if !a.Init(code) {
		return 0, fmt.Errorf("code %q is not a valid codon string", code)
	}
	a.Run(maxSteps)
	return a.EvaluateFitness(c.peptides, target), nil
}

// LoadSeedFile reads one seed program per line. Blank lines and lines
// starting with '#' are skipped. With compile set, each line is compiled
// from operation names; otherwise lines must already be codon strings.
func LoadSeedFile(path string, compile bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	tbl := gene.DefaultTable()
	var seeds []string
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		code := text
		if compile {
			code, err = interp.Compile(tbl, text)
			if err != nil {
				return nil, fmt.Errorf("seed file line %d: %w", line, err)
			}
		} else if !tbl.CheckCode(code) {
			return nil, fmt.Errorf("seed file line %d: %q is not a valid codon string", line, code)
		}
		seeds = append(seeds, code)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(seeds) == 0 {
		return nil, errors.New("seed file contains no programs")
	}
	return seeds, nil
}
