package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cognicore/basket/internal/download"
	"github.com/cognicore/basket/pkg/basket/logging"
)

func main() {
	var (
		dir      = flag.String("dir", "russian_troll_dataset", "Output directory")
		baseURL  = flag.String("base-url", download.DefaultBaseURL, "Dataset base URL")
		timeout  = flag.Duration("timeout", 10*time.Minute, "Per-file HTTP timeout")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log := logging.NewLogger(*logLevel, false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Starting download of the troll-tweet dataset")
	f := &download.Fetcher{
		Client:  &http.Client{Timeout: *timeout},
		BaseURL: *baseURL,
		Log:     log,
	}
	rep, err := f.Fetch(ctx, *dir)
	if err != nil {
		log.WithError(err).Fatal("Download aborted")
	}

	log.WithField("downloaded", len(rep.Downloaded)).WithField("failed", len(rep.Failed)).Info("Download complete")
	if len(rep.Failed) > 0 {
		os.Exit(1)
	}
}
