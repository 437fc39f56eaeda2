package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/basket/pkg/basket/config"
	"github.com/cognicore/basket/pkg/basket/corpus"
	"github.com/cognicore/basket/pkg/basket/logging"
	"github.com/cognicore/basket/pkg/basket/normalize"
	"github.com/cognicore/basket/pkg/basket/sweep"
	"github.com/cognicore/basket/pkg/basket/txn"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Params YAML file (optional)")
		domain      = flag.String("domain", "", "Item domain: emoji or words")
		dataDir     = flag.String("data", "russian_troll_dataset", "Directory holding IRAhandle_tweets_{1..13}.csv")
		files       = flag.String("files", "", "Comma-separated CSV files (overrides -data)")
		column      = flag.String("column", corpus.DefaultColumn, "Text column")
		sample      = flag.Int("sample", 0, "Analyze only the first N posts (0 = all)")
		supports    = flag.String("supports", "0.00005,0.0001,0.0005,0.001", "Itemset supports to try")
		confidences = flag.String("confidences", "0.05,0.1,0.2", "Confidences to try")
		distances   = flag.String("lift-distances", "0.1,0.2,0.5", "Lift distances to try")
		negative    = flag.Bool("negative", true, "Keep negatively correlated rules")
		target      = flag.Float64("target", sweep.DefaultTargetRatio, "Target rules per itemset")
		concurrency = flag.Int("concurrency", runtime.NumCPU(), "Supports mined in parallel")
		logLevel    = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log := logging.NewLogger(*logLevel, false)

	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "sample" {
			o.SampleLimit = sample
		}
	})
	loader := config.Loader{ParamsPath: *configPath, Domain: *domain, Overrides: o}
	params, err := loader.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load params")
	}

	grid := sweep.Grid{IncludeNegative: *negative}
	for _, g := range []struct {
		name string
		raw  string
		dst  *[]float64
	}{
		{"supports", *supports, &grid.Supports},
		{"confidences", *confidences, &grid.Confidences},
		{"lift-distances", *distances, &grid.LiftDistances},
	} {
		vals, err := parseFloats(g.raw)
		if err != nil {
			log.WithError(err).Fatalf("Invalid -%s", g.name)
		}
		*g.dst = vals
	}

	paths := corpus.TrollFiles(*dataDir)
	if *files != "" {
		paths = strings.Split(*files, ",")
	}
	records, err := corpus.LoadFiles(paths, corpus.Options{Column: *column, Limit: params.SampleLimit})
	if err != nil {
		log.WithError(err).Fatal("Failed to load corpus")
	}

	d, _ := normalize.ParseDomain(string(params.Domain))
	set := txn.Build(d, normalize.All(d, corpus.Texts(records)), params.MinItemSupport)
	log.WithFields(logrus.Fields{
		"posts":        set.Matrix.NumRows(),
		"items":        set.Matrix.NumCols(),
		"combinations": grid.Size(),
	}).Info("Sweeping")

	outcomes, err := sweep.Run(context.Background(), set.Matrix, grid, *concurrency)
	if err != nil {
		log.WithError(err).Fatal("Sweep failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		log.WithError(err).Fatal("Failed to write outcomes")
	}

	best, ok := sweep.Closest(outcomes, *target)
	if !ok {
		log.Warn("No combination produced frequent itemsets")
		return
	}
	log.WithFields(logrus.Fields{
		"min_itemset_support": best.MinSupport,
		"min_confidence":      best.MinConfidence,
		"lift_distance":       best.LiftDistance,
		"itemsets":            best.Itemsets,
		"rules":               best.Rules,
		"ratio":               best.Ratio,
	}).Infof("Closest to %.2f rules per itemset", *target)
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
