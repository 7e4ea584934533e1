package config

import (
	"fmt"
	"time"

	"github.com/OCAP2/osu-parsers/internal/beatmap"
	"github.com/OCAP2/osu-parsers/internal/score"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "osu_parsers.cfg.json"

// MemoryConfig holds in-memory/JSON catalog backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite catalog backend settings. An empty Path keeps the
// catalog in memory only.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the catalog backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds metrics settings.
type OTelConfig struct {
	Enabled     bool
	ServiceName string
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./osulogs")

	viper.SetDefault("decode.parseGeneral", true)
	viper.SetDefault("decode.parseEditor", true)
	viper.SetDefault("decode.parseMetadata", true)
	viper.SetDefault("decode.parseDifficulty", true)
	viper.SetDefault("decode.parseEvents", true)
	viper.SetDefault("decode.parseTimingPoints", true)
	viper.SetDefault("decode.parseHitObjects", true)
	viper.SetDefault("decode.parseColours", true)
	viper.SetDefault("decode.parseStoryboard", true)

	viper.SetDefault("score.parseReplay", true)

	viper.SetDefault("index.workers", 4)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./catalog")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./catalog.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "osu")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "osu-metrics")
	viper.SetDefault("influx.bucket", "decode-stats")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "osu-parsers")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// LoadDefaults sets the default values without reading a file.
func LoadDefaults() {
	setDefaults()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// DecodeOptions returns the beatmap sections enabled under "decode".
func DecodeOptions() beatmap.Options {
	return beatmap.Options{
		ParseGeneral:      viper.GetBool("decode.parseGeneral"),
		ParseEditor:       viper.GetBool("decode.parseEditor"),
		ParseMetadata:     viper.GetBool("decode.parseMetadata"),
		ParseDifficulty:   viper.GetBool("decode.parseDifficulty"),
		ParseEvents:       viper.GetBool("decode.parseEvents"),
		ParseTimingPoints: viper.GetBool("decode.parseTimingPoints"),
		ParseHitObjects:   viper.GetBool("decode.parseHitObjects"),
		ParseColours:      viper.GetBool("decode.parseColours"),
		ParseStoryboard:   viper.GetBool("decode.parseStoryboard"),
	}
}

func ScoreOptions() score.Options {
	return score.Options{ParseReplay: viper.GetBool("score.parseReplay")}
}

// GetStorageConfig returns the catalog backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:     viper.GetBool("otel.enabled"),
		ServiceName: viper.GetString("otel.serviceName"),
	}
}
