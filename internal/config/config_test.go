package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// chdir runs the test in an empty directory so no stray .env is loaded
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "ACADEMIC ANALYTICS SUITE", cfg.Report.ProductLabel)
	assert.True(t, cfg.Report.Compress)
	assert.False(t, cfg.Storage.ArchiveEnabled())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := chdir(t)

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"report": {"attribution": "From file", "compress": false},
		"storage": {"s3_bucket": "file-bucket"}
	}`), 0o644))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("S3_PREFIX", "env-prefix")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "From file", cfg.Report.Attribution)
	assert.False(t, cfg.Report.Compress)
	assert.Equal(t, "file-bucket", cfg.Storage.S3Bucket)
	assert.Equal(t, "env-prefix", cfg.Storage.S3Prefix)
	assert.Equal(t, "http://minio:9000", cfg.Storage.S3Endpoint)
	assert.True(t, cfg.Storage.S3UsePathStyle)
	assert.True(t, cfg.Storage.ArchiveEnabled())
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REPORT_ATTRIBUTION=From dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("REPORT_ATTRIBUTION") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "From dotenv", cfg.Report.Attribution)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := (&LoggingConfig{Level: "warn"}).NewLogger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = (&LoggingConfig{Level: "DEBUG"}).NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = (&LoggingConfig{Level: "loud"}).NewLogger()
	assert.Error(t, err)
}
