package root

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OCAP2/osu-parsers/internal/config"
	"github.com/OCAP2/osu-parsers/internal/files"
	"github.com/OCAP2/osu-parsers/internal/influx"
	"github.com/OCAP2/osu-parsers/internal/library"
	"github.com/OCAP2/osu-parsers/internal/logging"
	intOtel "github.com/OCAP2/osu-parsers/internal/otel"
)

const configFileHint = config.FileName

// app is what every command runs with: configuration loaded, logging set up,
// metrics and decode statistics wired into a library over the OS filesystem.
type app struct {
	start   time.Time
	logs    *logging.SlogManager
	logger  *slog.Logger
	zlog    zerolog.Logger
	logFile *os.File

	otel   *intOtel.Provider
	influx *influx.Manager

	files files.Source
	lib   *library.Library
}

func newApp(cmd *cobra.Command) (*app, error) {
	a := &app{start: time.Now(), files: files.OS()}

	a.logs = logging.NewSlogManager()
	a.logs.Setup(nil, "info", nil)
	a.logger = a.logs.Logger()

	if err := config.Load(flags.configDir); err != nil {
		config.LoadDefaults()
		a.logger.Debug("No config file, using defaults", "dir", flags.configDir, "error", err)
	}
	level := viper.GetString("logLevel")
	if flags.logLevel != "" {
		level = flags.logLevel
	}

	logPath := logging.LogFilePath(viper.GetString("logsDir"), cmd.Name(), a.start)
	logFile, err := logging.OpenLogFile(logPath)
	if err != nil {
		a.logger.Warn("Failed to open log file, logging to stdout", "path", logPath, "error", err)
	} else {
		a.logFile = logFile
	}

	var sink io.Writer
	if viper.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(viper.GetString("graylog.address"))
		if err != nil {
			a.logger.Warn("Failed to connect to Graylog", "address", viper.GetString("graylog.address"), "error", err)
		} else {
			sink = w
		}
	}

	var out io.Writer
	if a.logFile != nil {
		out = a.logFile
	}
	a.logs.Setup(out, level, sink)
	a.logger = a.logs.Logger()
	slog.SetDefault(a.logger)

	zout := io.Writer(os.Stderr)
	if a.logFile != nil {
		zout = a.logFile
	}
	a.zlog = logging.NewZerolog(zout, level)

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(intOtel.Config{Enabled: otelCfg.Enabled, ServiceName: otelCfg.ServiceName})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	opts := []library.Option{
		library.WithLogger(a.logger),
		library.WithDecodeOptions(config.DecodeOptions()),
		library.WithScoreOptions(config.ScoreOptions()),
	}
	if viper.GetBool("influx.enabled") {
		backup := filepath.Join(viper.GetString("logsDir"), fmt.Sprintf("decode_stats_%s.lp.gz", a.start.Format("20060102_150405")))
		m := influx.NewManager(a.zlog, backup)
		if err := m.Connect(); err != nil {
			a.logger.Warn("InfluxDB unavailable, decode stats disabled", "error", err)
		} else {
			a.influx = m
			opts = append(opts, library.WithStats(m))
		}
	}

	a.lib, err = library.New(a.files, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create library: %w", err)
	}
	return a, nil
}

// metricTotals returns the summed counters when metrics are enabled.
func (a *app) metricTotals(ctx context.Context) map[string]float64 {
	if !a.otel.Enabled() {
		return nil
	}
	totals, err := a.otel.Totals(ctx)
	if err != nil {
		a.logger.Warn("Failed to collect metrics", "error", err)
		return nil
	}
	return totals
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down metrics", "error", err)
	}
	a.logger.Debug("Done", "duration", time.Since(a.start))
	if err := a.logs.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to close Graylog writer:", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// withApp runs fn with a ready app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}
