// Package downloader produces a local artifact for a request by running
// yt-dlp and recovering the file it wrote.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Raman-79/yt-downloader/pkg/logger"
	"github.com/Raman-79/yt-downloader/pkg/models"
	"github.com/Raman-79/yt-downloader/pkg/ytdlp"
)

// Observer receives the duration and outcome of each yt-dlp run.
type Observer interface {
	ObserveDownload(d time.Duration, err error)
}

type Downloader struct {
	Runner     ytdlp.Runner
	BinaryPath string
	// OutputDir holds one work directory per run. It should be absolute;
	// yt-dlp echoes the template path back.
	OutputDir string
	// Timeout bounds a run. Zero means no limit.
	Timeout  time.Duration
	Observer Observer
}

// Artifact is a file produced for one request. It lives in a work
// directory of its own, so concurrent requests never share files.
type Artifact struct {
	Path    string
	workDir string
}

// Remove deletes the artifact together with any intermediate files.
func (a *Artifact) Remove() error {
	if a == nil || a.workDir == "" {
		return nil
	}
	return os.RemoveAll(a.workDir)
}

// Download runs yt-dlp for req and returns the produced file. On failure
// every file this request may have left behind is removed.
func (d *Downloader) Download(ctx context.Context, req models.DownloadRequest) (*Artifact, error) {
	log := logger.FromContext(ctx).With("id", req.Identifier, "format", string(req.Format))

	workDir, err := os.MkdirTemp(d.OutputDir, "dl-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	art := &Artifact{workDir: workDir}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := ytdlp.Args(req.Format, ytdlp.OutputTemplate(workDir, req.Identifier), req.SourceURL)
	log.Debug("Starting yt-dlp", "binary", d.BinaryPath, "args", args)

	start := time.Now()
	output, err := d.Runner.Run(ctx, d.BinaryPath, args)
	if err != nil {
		d.observe(start, err)
		d.discard(log, art)
		log.Error("yt-dlp failed", "err", err, "output", tail(output, 2048))
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	path, err := ytdlp.ParseDestination(output, req.Format)
	if err == nil {
		err = within(workDir, path)
	}
	if err != nil {
		d.observe(start, err)
		d.discard(log, art)
		log.Error("Could not locate yt-dlp artifact", "err", err, "output", tail(output, 2048))
		return nil, fmt.Errorf("locate artifact: %w", err)
	}

	d.observe(start, nil)
	art.Path = path
	log.Info("yt-dlp finished", "path", path, "elapsed", time.Since(start).Round(time.Millisecond))
	return art, nil
}

func (d *Downloader) observe(start time.Time, err error) {
	if d.Observer != nil {
		d.Observer.ObserveDownload(time.Since(start), err)
	}
}

func (d *Downloader) discard(log *slog.Logger, art *Artifact) {
	if err := art.Remove(); err != nil {
		log.Warn("Error removing work dir", "dir", art.workDir, "err", err)
	}
}

// within fails unless path is inside dir.
func within(dir, path string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("artifact %q outside work dir", path)
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
