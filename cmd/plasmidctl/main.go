package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"plasmid/internal/storage"
	api "plasmid/pkg/plasmid"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "compile":
		return runCompile(ctx, args[1:])
	case "decompile":
		return runDecompile(ctx, args[1:])
	case "compress":
		return runCompress(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional TOML run config path")
	population := fs.Int("pop", 64, "population size")
	generations := fs.Int("gens", 100, "generation count")
	maxSteps := fs.Int("max-steps", 1000, "execution step budget per agent")
	runs := fs.Int("runs", 1, "number of runs to execute")
	seed := fs.Int64("seed", 1, "rng seed")
	seedCodes := fs.String("seed-codes", "", "comma-separated seed codon strings")
	seedFile := fs.String("seed-file", "", "file with one seed program per line")
	compile := fs.Bool("compile", false, "compile seed file lines from operation names")
	target := fs.String("target", "", "target peptide rewarded by fitness")
	maxAttempts := fs.Int("max-attempts", 0, "random seeding attempt budget (0 uses the default)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plasmid.db", "sqlite database path")
	logPath := fs.String("log", "plasmid_run.log", "plain-text run log path (empty disables)")
	jsonOut := fs.Bool("json", false, "emit run summaries as JSON")
	verbose := fs.Int("verbose", 0, "log verbosity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	commonlog.Configure(*verbose, nil)

	req := api.RunRequest{
		Population:    *population,
		Generations:   *generations,
		MaxSteps:      *maxSteps,
		Runs:          *runs,
		Seed:          *seed,
		SeedFile:      *seedFile,
		Compile:       *compile,
		TargetPeptide: *target,
		MaxAttempts:   *maxAttempts,
	}
	if *seedCodes != "" {
		for _, code := range strings.Split(*seedCodes, ",") {
			if code = strings.TrimSpace(code); code != "" {
				req.SeedCodes = append(req.SeedCodes, code)
			}
		}
	}
	opts := api.Options{StoreKind: *storeKind, DBPath: *dbPath, LogPath: *logPath}

	if *configPath != "" {
		cfg, err := loadRunConfig(*configPath)
		if err != nil {
			return err
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		cfg.apply(&req, &opts, explicit)
	}

	client, err := api.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summaries, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	for _, s := range summaries {
		if s.Extinct {
			fmt.Printf("run %d (%s): extinct after %d generations\n", s.RunNumber, s.RunID, s.Generations)
			continue
		}
		fmt.Printf("run %d (%s): generations=%d fitness=%.3f entropy=%.3f\n",
			s.RunNumber, s.RunID, s.Generations, s.BestFitness, s.CumulativeEntropy)
		fmt.Printf("  best code:    %s\n", s.BestCode)
		fmt.Printf("  best progeny: %s\n", s.BestProgeny)
		if s.BestPeptide != "" {
			fmt.Printf("  best peptide: %s\n", s.BestPeptide)
		}
	}
	return nil
}

func runCompile(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	source := strings.Join(fs.Args(), " ")
	if source == "" {
		return errors.New("compile requires source text, e.g. plasmidctl compile START COPY STOP")
	}

	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	code, err := client.Compile(source)
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

func runDecompile(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("decompile", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("decompile requires exactly one codon string")
	}

	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	source, err := client.Decompile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(source)
	return nil
}

func runCompress(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("compress requires exactly one codon string")
	}

	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	code, err := client.Compress(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(code)
	return nil
}

func runFitness(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	code := fs.String("code", "", "codon string to score")
	target := fs.String("target", "", "target peptide")
	maxSteps := fs.Int("max-steps", 1000, "execution step budget")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *code == "" {
		return errors.New("fitness requires --code")
	}

	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fitness, err := client.Fitness(*code, *target, *maxSteps)
	if err != nil {
		return err
	}
	fmt.Printf("%.3f\n", fitness)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plasmid.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(runs) > *limit {
		runs = runs[len(runs)-*limit:]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	for _, r := range runs {
		status := fmt.Sprintf("fitness=%.3f", r.BestFitness)
		if r.Extinct {
			status = "extinct"
		}
		fmt.Printf("%s  %s  seed=%d pop=%d gens=%d %s\n",
			r.ID, r.CreatedAtUTC, r.Seed, r.PopulationSize, r.Generations, status)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plasmid.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("diagnostics requires --run-id")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diags, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	if len(diags) == 0 {
		fmt.Println("no diagnostics found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	}
	for _, d := range diags {
		fmt.Printf("gen %3d: best=%.3f mean=%.3f min=%.3f entropy=%.3f survivors=%d\n",
			d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness, d.CumulativeEntropy, d.Survivors)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 0, "max records to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit lineage as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plasmid.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("lineage requires --run-id")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	lineage, err := client.Lineage(ctx, *runID)
	if err != nil {
		return err
	}
	if len(lineage) == 0 {
		fmt.Println("no lineage found")
		return nil
	}
	if *limit > 0 && len(lineage) > *limit {
		lineage = lineage[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lineage)
	}
	for _, l := range lineage {
		parent := l.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("gen %3d: %s <- %s via %s\n", l.Generation, l.AgentID, parent, l.Operation)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: plasmidctl <run|compile|decompile|compress|fitness|runs|diagnostics|lineage> [flags]", msg)
}
