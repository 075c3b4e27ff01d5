// Package config loads service configuration from defaults, an optional
// config file, the environment and CLI flags (in increasing precedence).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigName  = "yt-downloader"
	DefaultEnvPrefix   = "YTD"
	DefaultPort        = 8080
	DefaultBinaryPath  = "yt-dlp"
	DefaultFFmpegPath  = "ffmpeg"
	DefaultOutputDir   = "./downloads"
	DefaultMaxFileSize = 100 << 20 // 100 MiB
	DefaultLinkExpiry  = time.Hour
)

// ErrStorageConfigMissing is returned by StorageConfig.Validate.
var ErrStorageConfigMissing = errors.New("storage configuration missing")

// Config is the root configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Download DownloadConfig `mapstructure:"download"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Source bool   `mapstructure:"source"`
}

type ServerConfig struct {
	Port int  `mapstructure:"port"`
	Web  bool `mapstructure:"web"`
}

// DownloadConfig controls the yt-dlp invocation and local artifacts.
type DownloadConfig struct {
	// BinaryPath is the yt-dlp executable.
	BinaryPath string `mapstructure:"binary_path"`
	// FFmpegPath is probed at startup; yt-dlp needs it for audio extraction and merging.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// OutputDir holds artifacts between download and upload.
	OutputDir string `mapstructure:"output_dir"`
	// MaxFileSize is the upload ceiling in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size"`
	// Timeout bounds one yt-dlp run. Zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
	// AutoInstall fetches a yt-dlp release when BinaryPath is not runnable.
	AutoInstall bool `mapstructure:"auto_install"`
}

// StorageConfig describes the S3-compatible bucket.
type StorageConfig struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	LinkExpiry      time.Duration `mapstructure:"link_expiry"`
}

// Missing lists the required storage settings that are empty.
func (s StorageConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.Bucket) == "" {
		missing = append(missing, "bucket")
	}
	if strings.TrimSpace(s.Region) == "" {
		missing = append(missing, "region")
	}
	if strings.TrimSpace(s.AccessKeyID) == "" {
		missing = append(missing, "access_key_id")
	}
	if strings.TrimSpace(s.SecretAccessKey) == "" {
		missing = append(missing, "secret_access_key")
	}
	return missing
}

// Validate fails with ErrStorageConfigMissing when a required setting is empty.
func (s StorageConfig) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrStorageConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.source", false)

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.web", false)

	v.SetDefault("download.binary_path", DefaultBinaryPath)
	v.SetDefault("download.ffmpeg_path", DefaultFFmpegPath)
	v.SetDefault("download.output_dir", DefaultOutputDir)
	v.SetDefault("download.max_file_size", DefaultMaxFileSize)
	v.SetDefault("download.timeout", time.Duration(0))
	v.SetDefault("download.auto_install", true)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.link_expiry", DefaultLinkExpiry)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by AWS tooling and container setups.
	_ = v.BindEnv("storage.bucket", "YTD_STORAGE_BUCKET", "S3_BUCKET")
	_ = v.BindEnv("storage.region", "YTD_STORAGE_REGION", "AWS_REGION")
	_ = v.BindEnv("storage.access_key_id", "YTD_STORAGE_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("storage.secret_access_key", "YTD_STORAGE_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("storage.endpoint", "YTD_STORAGE_ENDPOINT", "S3_ENDPOINT")

	return v
}

// Load reads configFile (or searches for yt-downloader.{yaml,json,toml} in
// the working and home directories when empty) and decodes the result. A
// missing config file is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = DefaultPort
	}
	if c.Download.BinaryPath == "" {
		c.Download.BinaryPath = DefaultBinaryPath
	}
	if c.Download.OutputDir == "" {
		c.Download.OutputDir = DefaultOutputDir
	}
	if c.Download.MaxFileSize <= 0 {
		c.Download.MaxFileSize = DefaultMaxFileSize
	}
	if c.Download.Timeout < 0 {
		c.Download.Timeout = 0
	}
	if c.Storage.LinkExpiry <= 0 {
		c.Storage.LinkExpiry = DefaultLinkExpiry
	}
}
