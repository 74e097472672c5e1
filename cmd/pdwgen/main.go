// Command pdwgen writes a synthetic Pulse Descriptor Word dataset to CSV,
// optionally storing the run in SQLite and rendering quick-look charts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/banshee-data/pdwgen/internal/config"
	"github.com/banshee-data/pdwgen/internal/db"
	"github.com/banshee-data/pdwgen/internal/export"
	"github.com/banshee-data/pdwgen/internal/fsutil"
	"github.com/banshee-data/pdwgen/internal/generator"
	"github.com/banshee-data/pdwgen/internal/monitoring"
	"github.com/banshee-data/pdwgen/internal/report"
	"github.com/banshee-data/pdwgen/internal/timeutil"
	"github.com/banshee-data/pdwgen/internal/version"
)

type options struct {
	configPath  string
	output      string
	seed        uint64
	dbPath      string
	reportPath  string
	plotPath    string
	metricsPath string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pdwgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "JSON or YAML configuration file (built-in defaults when empty)")
	fs.StringVar(&o.output, "o", export.DefaultFilename, "Output CSV path")
	fs.Uint64Var(&o.seed, "seed", 0, "Random seed; 0 draws a fresh seed and logs it")
	fs.StringVar(&o.dbPath, "db", "", "Also store the run in this SQLite database")
	fs.StringVar(&o.reportPath, "report", "", "Write an RF/PRI scatter chart (HTML) to this path")
	fs.StringVar(&o.plotPath, "plot", "", "Write a PRI histogram image (.png, .svg, .pdf) to this path")
	fs.StringVar(&o.metricsPath, "metrics", "", "Write Prometheus text-format run metrics to this path")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.output == "" {
		return nil, errors.New("output path is required")
	}
	return o, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, timeutil.RealClock{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("pdwgen: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, clock timeutil.Clock) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	cfg := config.Default()
	if o.configPath != "" {
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
		monitoring.Logf("Loaded configuration from %s", o.configPath)
	}

	seed := o.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	monitoring.Logf("Using seed %d", seed)
	rng := rand.New(rand.NewPCG(seed, seed))

	metrics, err := monitoring.NewRunCollector(nil)
	if err != nil {
		return err
	}
	gen, err := generator.New(cfg, generator.WithMetrics(metrics))
	if err != nil {
		return err
	}

	started := clock.Now()
	res, err := gen.Run(rng)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := export.WriteCSV(fsutil.OSFileSystem{}, o.output, res.Records); err != nil {
		return err
	}

	if o.dbPath != "" {
		if err := saveRun(ctx, o.dbPath, seed, started, cfg.NumSystems, res); err != nil {
			return err
		}
	}

	if o.reportPath != "" {
		if err := writeScatter(o.reportPath, res); err != nil {
			return err
		}
		monitoring.Logf("Scatter chart written to %s", o.reportPath)
	}
	if o.plotPath != "" {
		if err := report.SavePRIHistogram(o.plotPath, res.Records); err != nil {
			return err
		}
		monitoring.Logf("PRI histogram written to %s", o.plotPath)
	}

	metrics.ObserveRun(seed, clock.Since(started))
	if o.metricsPath != "" {
		if err := metrics.WriteTextfile(o.metricsPath); err != nil {
			return err
		}
	}

	monitoring.Logf("Final dataset contains %d rows.", len(res.Records))
	monitoring.Logf("  - %d rows contain at least one missing value.", len(res.Corruptions))
	monitoring.Logf("File saved as %s", o.output)
	return nil
}

func saveRun(ctx context.Context, path string, seed uint64, started time.Time, numSystems int, res *generator.Result) error {
	store, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", path, err)
	}
	defer store.Close()

	run := db.NewRun(seed, started)
	run.NumSystems = numSystems
	run.BaseRows = res.BaseRows
	run.DuplicateRows = res.Duplicates
	run.CorruptedRows = len(res.Corruptions)
	if err := store.SaveRun(ctx, run, res.Records); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	monitoring.Logf("Stored run %s in %s", run.ID, path)
	return nil
}

func writeScatter(path string, res *generator.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteScatterHTML(f, res.Records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
