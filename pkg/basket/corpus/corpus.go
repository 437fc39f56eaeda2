package corpus

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/cognicore/basket/pkg/basket/internalerr"
)

// DefaultColumn is the post text column of the troll-tweet dataset.
const DefaultColumn = "content"

// TrollFileCount is the number of CSV shards in the troll-tweet dataset.
const TrollFileCount = 13

// nullValues are the cell values read as missing, the same set pandas uses.
var nullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null", "<nil>",
}

// Record is one post. Missing is set when the source cell was null.
type Record struct {
	Text    string
	Missing bool
}

// Options controls loading.
type Options struct {
	Column      string // defaults to DefaultColumn
	DropMissing bool   // skip null cells instead of returning Missing records
	Limit       int    // keep at most Limit records overall; 0 = no limit
}

// ReadCSV reads the given text column of a CSV stream.
func ReadCSV(r io.Reader, column string) ([]Record, error) {
	if column == "" {
		column = DefaultColumn
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nullValues),
	)
	if df.Err != nil {
		// gota refuses a header without rows; that is an empty shard
		if header, ok := headerOnly(data); ok {
			for _, name := range header {
				if name == column {
					return []Record{}, nil
				}
			}
			return nil, fmt.Errorf("%w: column %q not found", internalerr.ErrInvalidInput, column)
		}
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	if !hasColumn(df, column) {
		return nil, fmt.Errorf("%w: column %q not found", internalerr.ErrInvalidInput, column)
	}

	col := df.Col(column)
	values := col.Records()
	missing := col.IsNaN()

	out := make([]Record, len(values))
	for i, v := range values {
		if missing[i] {
			out[i] = Record{Missing: true}
			continue
		}
		out[i] = Record{Text: v}
	}
	return out, nil
}

// headerOnly reports whether data holds a header record and nothing else.
func headerOnly(data []byte) ([]string, bool) {
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil || len(recs) != 1 {
		return nil, false
	}
	return recs[0], true
}

func hasColumn(df dataframe.DataFrame, column string) bool {
	for _, name := range df.Names() {
		if name == column {
			return true
		}
	}
	return false
}

// LoadFiles reads and concatenates the files in order.
func LoadFiles(paths []string, opts Options) ([]Record, error) {
	var out []Record
	for _, path := range paths {
		recs, err := loadFile(path, opts.Column)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if opts.DropMissing && rec.Missing {
				continue
			}
			out = append(out, rec)
			if opts.Limit > 0 && len(out) >= opts.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func loadFile(path, column string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := ReadCSV(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// TrollFiles lists the dataset shards IRAhandle_tweets_1.csv .. _13.csv in dir.
func TrollFiles(dir string) []string {
	paths := make([]string, TrollFileCount)
	for i := range paths {
		paths[i] = filepath.Join(dir, TrollFileName(i+1))
	}
	return paths
}

// TrollFileName returns the name of shard n (1-based).
func TrollFileName(n int) string {
	return fmt.Sprintf("IRAhandle_tweets_%d.csv", n)
}

// Texts flattens records into strings; missing records become "".
func Texts(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		if !r.Missing {
			out[i] = r.Text
		}
	}
	return out
}
