package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/basket/pkg/basket"
)

// Fields represents structured logging fields
type Fields = logrus.Fields

// NewLogger creates a logger writing to stderr at the given level. An unknown
// level falls back to info.
func NewLogger(level string, json bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// StageObserver logs every stage event at info level.
func StageObserver(log logrus.FieldLogger) basket.Observer {
	return basket.ObserverFunc(func(e basket.StageEvent) {
		fields := Fields{
			"run":     e.RunID,
			"stage":   string(e.Stage),
			"count":   e.Count,
			"elapsed": e.Elapsed.String(),
		}
		for k, v := range e.Counts {
			fields[k] = v
		}
		log.WithFields(fields).Info("stage complete")
	})
}
