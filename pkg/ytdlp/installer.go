package ytdlp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Raman-79/yt-downloader/pkg/client"
)

const DefaultReleaseBaseURL = "https://github.com/yt-dlp/yt-dlp/releases/latest/download"

const probeTimeout = 30 * time.Second

// Installer makes sure a runnable yt-dlp exists, downloading the official
// standalone release when the requested binary is not usable.
type Installer struct {
	Client client.HTTPClient
	// Dir receives the downloaded binary. Defaults to the working directory.
	Dir string
	// ReleaseBaseURL defaults to DefaultReleaseBaseURL.
	ReleaseBaseURL string
}

// EnsureBinary returns a path to a working yt-dlp.
func (i *Installer) EnsureBinary(ctx context.Context, requestedPath string) (string, error) {
	if IsWorking(ctx, requestedPath, "--version") {
		slog.Debug("yt-dlp found and working", "path", requestedPath)
		return requestedPath, nil
	}

	slog.Warn("yt-dlp not found or invalid, attempting to download release binary", "path", requestedPath)

	asset, err := AssetName(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}

	dir := i.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("resolve install dir: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}

	localPath := filepath.Join(dir, asset)

	if _, err := os.Stat(localPath); err == nil {
		if IsWorking(ctx, localPath, "--version") {
			slog.Info("Found local yt-dlp", "path", localPath)
			return localPath, nil
		}
		if rmErr := os.Remove(localPath); rmErr != nil {
			slog.Warn("Failed to delete a broken yt-dlp binary", "path", localPath, "err", rmErr)
		}
	}

	base := i.ReleaseBaseURL
	if base == "" {
		base = DefaultReleaseBaseURL
	}
	downloadURL := base + "/" + asset

	slog.Info("Downloading yt-dlp", "url", downloadURL)
	if err := i.download(ctx, downloadURL, localPath); err != nil {
		_ = os.Remove(localPath)
		return "", fmt.Errorf("failed to download yt-dlp: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(localPath, 0o755); err != nil {
			return "", fmt.Errorf("failed to chmod yt-dlp: %w", err)
		}
	}

	if IsWorking(ctx, localPath, "--version") {
		slog.Info("yt-dlp installed successfully", "path", localPath)
		return localPath, nil
	}

	return "", fmt.Errorf("downloaded yt-dlp is not working")
}

// AssetName maps a platform to the standalone yt-dlp release asset.
func AssetName(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		return "yt-dlp.exe", nil
	case "darwin":
		return "yt-dlp_macos", nil
	case "linux":
		switch goarch {
		case "amd64":
			return "yt-dlp_linux", nil
		case "arm64":
			return "yt-dlp_linux_aarch64", nil
		}
	}
	return "", fmt.Errorf("auto-install not supported for %s/%s", goos, goarch)
}

// IsWorking runs path with a version flag and reports whether it exits cleanly.
func IsWorking(ctx context.Context, path, versionFlag string) bool {
	if path == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return exec.CommandContext(ctx, path, versionFlag).Run() == nil
}

func (i *Installer) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := i.Client.Do(req)
	if err != nil {
		return err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			slog.Warn("Failed to close response body", "err", cerr)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
