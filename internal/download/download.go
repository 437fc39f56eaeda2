package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/cognicore/basket/pkg/basket/corpus"
)

// DefaultBaseURL hosts the troll-tweet dataset shards.
const DefaultBaseURL = "https://raw.githubusercontent.com/fivethirtyeight/russian-troll-tweets/master/"

// Report lists what a Fetch did. Failed maps file names to their error.
type Report struct {
	Downloaded []string
	Failed     map[string]error
}

// Fetcher downloads the dataset shards.
type Fetcher struct {
	Client  *http.Client // defaults to http.DefaultClient
	BaseURL string       // defaults to DefaultBaseURL
	Log     logrus.FieldLogger
}

// Fetch downloads every shard into dir. A failed file is logged and recorded
// in the report and the remaining files are still attempted; the returned
// error covers only setup problems and cancellation.
func (f *Fetcher) Fetch(ctx context.Context, dir string) (*Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	base := f.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	log := f.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	rep := &Report{Failed: make(map[string]error)}
	for n := 1; n <= corpus.TrollFileCount; n++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		name := corpus.TrollFileName(n)
		fileURL, err := url.JoinPath(base, name)
		if err != nil {
			return rep, fmt.Errorf("build url for %s: %w", name, err)
		}

		log.WithField("file", name).Info("downloading")
		if err := f.fetchOne(ctx, fileURL, filepath.Join(dir, name)); err != nil {
			log.WithField("file", name).WithError(err).Warn("download failed")
			rep.Failed[name] = err
			continue
		}
		rep.Downloaded = append(rep.Downloaded, name)
	}
	return rep, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, fileURL, path string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	// the CSV reader expects UTF-8
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
