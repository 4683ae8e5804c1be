package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/rs/zerolog"
)

const defaultDataDogTimeout = 5 * time.Second

// DataDogWriter is a zerolog.LevelWriter sending warn and above to DataDog.
// Each entry is submitted on its own goroutine so logging never blocks a request.
type DataDogWriter struct {
	ctx      context.Context //nolint:containedctx // carries the datadog api keys
	cfg      DataDog
	hostname string
	api      *datadogV2.LogsApi

	// ship is replaced in tests.
	ship func(message string)
}

// NewDataDogWriter creates a DataDogWriter from the log config.
func NewDataDogWriter(cfg Log) (*DataDogWriter, error) {
	if cfg.DataDog.APIKey == "" {
		return nil, ErrDataDogAPIKeyIsEmpty
	}

	if cfg.DataDog.ServiceName == "" {
		cfg.DataDog.ServiceName = cfg.ServiceName
	}

	if cfg.DataDog.Timeout == 0 {
		cfg.DataDog.Timeout = defaultDataDogTimeout
	}

	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{
			"apiKeyAuth": {Key: cfg.DataDog.APIKey},
		},
	)

	if cfg.DataDog.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": cfg.DataDog.Site,
		})
	}

	hostname, _ := os.Hostname()

	w := &DataDogWriter{
		ctx:      ctx,
		cfg:      cfg.DataDog,
		hostname: hostname,
		api:      datadogV2.NewLogsApi(datadog.NewAPIClient(datadog.NewConfiguration())),
	}
	w.ship = w.submit

	return w, nil
}

// Write implements io.Writer. Entries without level are not shipped.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *DataDogWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel || l == zerolog.NoLevel || l == zerolog.Disabled {
		return len(p), nil
	}

	// zerolog reuses p after the call returns
	message := string(bytes.TrimSpace(p))

	go w.ship(message)

	return len(p), nil
}

func (w *DataDogWriter) submit(message string) {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.Timeout)
	defer cancel()

	item := datadogV2.NewHTTPLogItem(message)
	item.SetDdsource("go")
	item.SetService(w.cfg.ServiceName)

	if w.hostname != "" {
		item.SetHostname(w.hostname)
	}

	if tags := strings.TrimSpace(w.cfg.Tags); tags != "" {
		item.SetDdtags(tags)
	}

	if _, _, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{*item}); err != nil {
		ErrorHandler(err)
	}
}
