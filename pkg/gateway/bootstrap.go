package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Raman-79/yt-downloader/pkg/client"
	"github.com/Raman-79/yt-downloader/pkg/config"
	"github.com/Raman-79/yt-downloader/pkg/downloader"
	"github.com/Raman-79/yt-downloader/pkg/metadata"
	"github.com/Raman-79/yt-downloader/pkg/metrics"
	"github.com/Raman-79/yt-downloader/pkg/storage"
	"github.com/Raman-79/yt-downloader/pkg/ytdlp"
)

// Options carries process-level wiring that is not part of Config.
type Options struct {
	// Registerer receives the collectors (prometheus.DefaultRegisterer when nil).
	Registerer prometheus.Registerer
	// Progress receives yt-dlp output lines (for CLI usage).
	Progress *downloader.ProgressPrinter
}

// New creates a ready-to-use Service from cfg. Incomplete storage settings
// are not fatal here: every request then fails with ConfigurationMissing.
func New(ctx context.Context, cfg config.Config, opts Options) (*Service, error) {
	absOutDir, err := filepath.Abs(cfg.Download.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("invalid output dir: %w", err)
	}
	if err := os.MkdirAll(absOutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	infoClient, err := client.NewHttpClient(client.Options{TimeoutSeconds: 15, FollowRedirects: true})
	if err != nil {
		return nil, fmt.Errorf("failed to init http client: %w", err)
	}

	binary := cfg.Download.BinaryPath
	if cfg.Download.AutoInstall {
		installClient, err := client.NewHttpClient(client.Options{TimeoutSeconds: 600, FollowRedirects: true})
		if err != nil {
			return nil, fmt.Errorf("failed to init http client: %w", err)
		}
		installer := &ytdlp.Installer{Client: installClient}
		if binary, err = installer.EnsureBinary(ctx, binary); err != nil {
			return nil, fmt.Errorf("yt-dlp check failed: %w", err)
		}
	}

	if !ytdlp.IsWorking(ctx, cfg.Download.FFmpegPath, "-version") {
		slog.Warn("ffmpeg not found; audio extraction and format merging will fail", "path", cfg.Download.FFmpegPath)
	}

	m, err := metrics.New(metrics.DefaultNamespace, opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	var store storage.ObjectStore
	if missing := cfg.Storage.Missing(); len(missing) > 0 {
		slog.Warn("Object storage not configured; download requests will fail", "missing", strings.Join(missing, ","))
	} else {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage, m)
		if err != nil {
			return nil, fmt.Errorf("failed to init object storage: %w", err)
		}
		store = s3Store
	}

	runner := &ytdlp.ExecRunner{}
	if opts.Progress != nil {
		runner.OnLine = opts.Progress.Line
	}

	dl := &downloader.Downloader{
		Runner:     runner,
		BinaryPath: binary,
		OutputDir:  absOutDir,
		Timeout:    cfg.Download.Timeout,
		Observer:   m,
	}

	expiry := cfg.Storage.LinkExpiry
	if expiry <= 0 {
		expiry = config.DefaultLinkExpiry
	}

	return &Service{
		Storage:     cfg.Storage,
		Store:       store,
		Downloader:  dl,
		Info:        &metadata.Resolver{Client: infoClient},
		Metrics:     m,
		MaxFileSize: cfg.Download.MaxFileSize,
		LinkExpiry:  expiry,
	}, nil
}
