package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/osu-parsers/internal/beatmap"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./osulogs", viper.GetString("logsDir"))
	assert.Equal(t, true, viper.GetBool("score.parseReplay"))
	assert.Equal(t, 4, viper.GetInt("index.workers"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "postgres", viper.GetString("db.password"))
	assert.Equal(t, "osu", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "decode-stats", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./catalog", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	LoadDefaults()
	assert.Equal(t, "memory", GetString("storage.type"))
	assert.Equal(t, beatmap.DefaultOptions(), DecodeOptions())
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestDecodeOptions(t *testing.T) {
	tests := []struct {
		name  string
		cfg   string
		check func(t *testing.T, o beatmap.Options)
	}{
		{"defaults decode everything", `{}`, func(t *testing.T, o beatmap.Options) {
			assert.Equal(t, beatmap.DefaultOptions(), o)
		}},
		{"sections switched off", `{"decode": {"parseStoryboard": false, "parseColours": false}}`, func(t *testing.T, o beatmap.Options) {
			assert.False(t, o.ParseStoryboard)
			assert.False(t, o.ParseColours)
			assert.True(t, o.ParseHitObjects)
			assert.True(t, o.ParseEvents)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			require.NoError(t, Load(writeConfig(t, tt.cfg)))
			tt.check(t, DecodeOptions())
		})
	}
}

func TestScoreOptions(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"score": {"parseReplay": false}}`)))
	assert.False(t, ScoreOptions().ParseReplay)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./catalog", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, "./catalog.db", cfg.SQLite.Path)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "", "dumpInterval": "10m" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "", sc.SQLite.Path)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
}

func TestGetOTelConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"otel": {"enabled": true}}`)))

	oc := GetOTelConfig()
	assert.True(t, oc.Enabled)
	assert.Equal(t, "osu-parsers", oc.ServiceName)
}
