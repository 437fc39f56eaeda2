package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/basket/pkg/basket"
	"github.com/cognicore/basket/pkg/basket/config"
	"github.com/cognicore/basket/pkg/basket/corpus"
	"github.com/cognicore/basket/pkg/basket/export"
	"github.com/cognicore/basket/pkg/basket/logging"
	"github.com/cognicore/basket/pkg/basket/store/sqlite"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Params YAML file (optional)")
		domain      = flag.String("domain", "", "Item domain: emoji or words (default from config, else emoji)")
		dataDir     = flag.String("data", "russian_troll_dataset", "Directory holding IRAhandle_tweets_{1..13}.csv")
		files       = flag.String("files", "", "Comma-separated CSV files (overrides -data)")
		column      = flag.String("column", corpus.DefaultColumn, "Text column")
		dropMissing = flag.Bool("drop-missing", false, "Skip empty posts instead of keeping them as empty transactions")
		outDir      = flag.String("out", ".", "Directory for result CSV files (empty disables)")
		prefix      = flag.String("prefix", "", "Result file prefix (default emoji_only or emoji_word)")
		dbPath      = flag.String("db", "", "SQLite database to store the run in (optional)")
		logLevel    = flag.String("log-level", "info", "Log level")
		logJSON     = flag.Bool("log-json", false, "Log as JSON")

		sample        = flag.Int("sample", 0, "Analyze only the first N posts (0 = all)")
		minItem       = flag.Float64("min-item-support", 0, "Minimum item support (words domain)")
		minSupport    = flag.Float64("min-support", 0, "Minimum itemset support")
		minConfidence = flag.Float64("min-confidence", 0, "Minimum rule confidence")
		liftDistance  = flag.Float64("lift-distance", 0, "Required distance of lift from 1")
		negative      = flag.Bool("negative", true, "Keep negatively correlated rules")
	)
	flag.Parse()

	log := logging.NewLogger(*logLevel, *logJSON)

	// only flags given on the command line override the params file
	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sample":
			o.SampleLimit = sample
		case "min-item-support":
			o.MinItemSupport = minItem
		case "min-support":
			o.MinItemsetSupport = minSupport
		case "min-confidence":
			o.MinConfidence = minConfidence
		case "lift-distance":
			o.LiftDistance = liftDistance
		case "negative":
			o.IncludeNegativeCorrelations = negative
		}
	})

	loader := config.Loader{ParamsPath: *configPath, Domain: *domain, Overrides: o}
	params, err := loader.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load params")
	}

	paths := corpus.TrollFiles(*dataDir)
	if *files != "" {
		paths = splitList(*files)
	}

	records, err := corpus.LoadFiles(paths, corpus.Options{
		Column:      *column,
		DropMissing: *dropMissing,
		Limit:       params.SampleLimit,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to load corpus")
	}

	analyzer := basket.New(basket.Options{
		Params:   *params,
		Observer: logging.StageObserver(log),
	})
	res, err := analyzer.Run(records)
	if err != nil {
		log.WithError(err).Fatal("Analysis failed")
	}

	ctx := context.Background()
	var sinks basket.Sinks
	if *outDir != "" {
		sinks = append(sinks, export.CSVSink{Dir: *outDir, Prefix: *prefix})
	}
	if *dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to open database")
		}
		defer st.Close()
		sinks = append(sinks, basket.StoreSink{Store: st})
	}
	if err := sinks.Write(ctx, res); err != nil {
		log.WithError(err).Error("Failed to write results")
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"run":      res.RunID,
		"domain":   res.Params.Domain,
		"posts":    res.Records,
		"items":    res.Set.Matrix.NumCols(),
		"itemsets": len(res.Itemsets),
		"rules":    len(res.Rules),
		"duration": res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("Analysis complete")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
