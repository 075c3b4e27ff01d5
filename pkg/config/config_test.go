package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"S3_BUCKET", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_ENDPOINT",
		"YTD_STORAGE_BUCKET", "YTD_STORAGE_REGION", "YTD_STORAGE_ACCESS_KEY_ID",
		"YTD_STORAGE_SECRET_ACCESS_KEY", "YTD_STORAGE_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearStorageEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultBinaryPath, cfg.Download.BinaryPath)
	assert.Equal(t, DefaultOutputDir, cfg.Download.OutputDir)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Download.MaxFileSize)
	assert.Zero(t, cfg.Download.Timeout)
	assert.Equal(t, time.Hour, cfg.Storage.LinkExpiry)
	assert.ElementsMatch(t, []string{"bucket", "region", "access_key_id", "secret_access_key"}, cfg.Storage.Missing())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearStorageEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("YTD_DOWNLOAD_MAX_FILE_SIZE", "1024")
	t.Setenv("YTD_DOWNLOAD_TIMEOUT", "10m")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.Equal(t, "eu-central-1", cfg.Storage.Region)
	assert.Equal(t, int64(1024), cfg.Download.MaxFileSize)
	assert.Equal(t, 10*time.Minute, cfg.Download.Timeout)
	assert.NoError(t, cfg.Storage.Validate())
}

func TestLoadFromFile(t *testing.T) {
	clearStorageEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
log:
  level: debug
  format: json
server:
  port: 9090
storage:
  bucket: cache
  region: us-east-1
  endpoint: http://localhost:9000
  use_path_style: true
  link_expiry: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, 30*time.Minute, cfg.Storage.LinkExpiry)
	assert.ElementsMatch(t, []string{"access_key_id", "secret_access_key"}, cfg.Storage.Missing())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStorageValidate(t *testing.T) {
	err := StorageConfig{Bucket: "b"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageConfigMissing))
	assert.Contains(t, err.Error(), "region")
	assert.NotContains(t, err.Error(), "bucket")

	ok := StorageConfig{Bucket: "b", Region: "r", AccessKeyID: "a", SecretAccessKey: "s"}
	assert.NoError(t, ok.Validate())
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
