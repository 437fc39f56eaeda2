package export

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/cognicore/basket/pkg/basket"
)

// File name suffixes of the two result tables.
const (
	ItemsetsSuffix = "_frequent_itemsets.csv"
	RulesSuffix    = "_association_rules.csv"
)

// CSVSink writes <Prefix>_frequent_itemsets.csv and
// <Prefix>_association_rules.csv into Dir.
type CSVSink struct {
	Dir    string
	Prefix string // defaults to the run's domain prefix, see DefaultPrefix
}

// DefaultPrefix is the file prefix used for a run of the given domain.
func DefaultPrefix(domain string) string {
	if domain == "words" {
		return "emoji_word"
	}
	return "emoji_only"
}

// Paths returns the itemsets and rules file paths for prefix.
func (s CSVSink) Paths(prefix string) (itemsets, rules string) {
	return filepath.Join(s.Dir, prefix+ItemsetsSuffix), filepath.Join(s.Dir, prefix+RulesSuffix)
}

// Write implements basket.Sink.
func (s CSVSink) Write(ctx context.Context, res *basket.Result) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix(string(res.Params.Domain))
	}
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	itemsetsPath, rulesPath := s.Paths(prefix)

	sets, err := ItemsetsFrame(res)
	if err != nil {
		return err
	}
	if err := writeFrame(itemsetsPath, sets); err != nil {
		return err
	}
	rules, err := RulesFrame(res)
	if err != nil {
		return err
	}
	return writeFrame(rulesPath, rules)
}

// ItemsetsFrame lays the itemsets out as columns support, itemsets.
func ItemsetsFrame(res *basket.Result) (dataframe.DataFrame, error) {
	support := make([]string, len(res.Itemsets))
	items := make([]string, len(res.Itemsets))
	for i, s := range res.Itemsets {
		support[i] = formatFloat(s.Support)
		enc, err := encodeItems(s.Items)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		items[i] = enc
	}
	df := dataframe.New(
		series.New(support, series.String, "support"),
		series.New(items, series.String, "itemsets"),
	)
	return df, df.Err
}

// RulesFrame lays the rules out in generation order.
func RulesFrame(res *basket.Result) (dataframe.DataFrame, error) {
	n := len(res.Rules)
	cols := map[string][]string{}
	names := []string{
		"antecedents", "consequents", "antecedent support", "consequent support",
		"support", "confidence", "lift", "leverage", "conviction",
	}
	for _, name := range names {
		cols[name] = make([]string, n)
	}
	for i, r := range res.Rules {
		ante, err := encodeItems(r.Antecedent)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		cons, err := encodeItems(r.Consequent)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		cols["antecedents"][i] = ante
		cols["consequents"][i] = cons
		cols["antecedent support"][i] = formatFloat(r.AntecedentSupport)
		cols["consequent support"][i] = formatFloat(r.ConsequentSupport)
		cols["support"][i] = formatFloat(r.Support)
		cols["confidence"][i] = formatFloat(r.Confidence)
		cols["lift"][i] = formatFloat(r.Lift)
		cols["leverage"][i] = formatFloat(r.Leverage)
		cols["conviction"][i] = formatFloat(r.Conviction)
	}

	ss := make([]series.Series, len(names))
	for i, name := range names {
		ss[i] = series.New(cols[name], series.String, name)
	}
	df := dataframe.New(ss...)
	return df, df.Err
}

func writeFrame(path string, df dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func encodeItems(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
