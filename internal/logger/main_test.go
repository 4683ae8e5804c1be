package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/logger"
)

func TestLevelWriter(t *testing.T) {
	var info, warn, errs, trace bytes.Buffer

	lw := &logger.LevelWriter{Info: &info, Warn: &warn, Error: &errs, Trace: &trace}

	tests := []struct {
		level zerolog.Level
		want  *bytes.Buffer
	}{
		{zerolog.DebugLevel, &info},
		{zerolog.InfoLevel, &info},
		{zerolog.NoLevel, &info},
		{zerolog.WarnLevel, &warn},
		{zerolog.ErrorLevel, &errs},
		{zerolog.FatalLevel, &errs},
		{zerolog.PanicLevel, &errs},
		{zerolog.TraceLevel, &trace},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			for _, b := range []*bytes.Buffer{&info, &warn, &errs, &trace} {
				b.Reset()
			}

			n, err := lw.WriteLevel(tt.level, []byte("line\n"))
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "line\n", tt.want.String())
		})
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("dropped"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logger.Log
		wantErr error
	}{
		{
			name: "unknown level",
			cfg:  logger.Log{LogLevel: "loud", ServiceName: "test", AppName: "test"},
		},
		{
			name:    "service name missing",
			cfg:     logger.Log{LogLevel: "info", AppName: "test"},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name:    "app name missing",
			cfg:     logger.Log{LogLevel: "info", ServiceName: "test"},
			wantErr: logger.ErrAppNameIsEmpty,
		},
		{
			name: "datadog without api key",
			cfg: logger.Log{
				LogLevel: "info", ServiceName: "test", AppName: "test",
				DataDog: logger.DataDog{Enabled: true},
			},
			wantErr: logger.ErrDataDogAPIKeyIsEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logger.Init(tt.cfg)
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestInitFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		LogEnv:      "test",
		ServiceName: "jdeb-test",
		AppName:     "jdeb",
		File: logger.LogFile{
			Enabled:  true,
			Path:     dir,
			InfoLog:  "info.log",
			WarnLog:  "warn.log",
			ErrorLog: "error.log",
			TraceLog: "trace.log",
		},
	})
	require.NoError(t, err)

	log.Info().Msg("settings saved")
	log.Warn().Msg("corrupt record")
	log.Error().Err(errors.New("db down")).Msg("load failed")
	log.Debug().Msg("below the level")

	read := func(name string) string {
		b, rErr := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(rErr) {
			return ""
		}

		require.NoError(t, rErr)

		return string(b)
	}

	info := read("info.log")
	assert.Contains(t, info, "settings saved")
	assert.NotContains(t, info, "below the level")
	assert.Contains(t, read("warn.log"), "corrupt record")
	assert.Contains(t, read("error.log"), "db down")
	assert.Empty(t, read("trace.log"))

	var line struct {
		App     string `json:"app"`
		Env     string `json:"env"`
		Level   string `json:"level"`
		Message string `json:"message"`
	}

	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(info)), &line))
	assert.Equal(t, "jdeb", line.App)
	assert.Equal(t, "test", line.Env)
	assert.Equal(t, "info", line.Level)
	assert.Equal(t, "settings saved", line.Message)
}

func TestInitBadFilePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	err := logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File:        logger.LogFile{Enabled: true, Path: file, InfoLog: "info.log"},
	})
	require.Error(t, err)
}

func TestInitWithoutWriters(t *testing.T) {
	require.NoError(t, logger.Init(logger.Log{LogLevel: "trace", ServiceName: "test", AppName: "test"}))

	// nothing configured, nothing written, nothing panics
	log.Trace().Err(errors.New("with stack")).Msg("dropped")
	log.Info().Msg("dropped")
}
