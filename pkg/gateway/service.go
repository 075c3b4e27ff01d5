package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Raman-79/yt-downloader/pkg/config"
	"github.com/Raman-79/yt-downloader/pkg/downloader"
	"github.com/Raman-79/yt-downloader/pkg/logger"
	"github.com/Raman-79/yt-downloader/pkg/metadata"
	"github.com/Raman-79/yt-downloader/pkg/metrics"
	"github.com/Raman-79/yt-downloader/pkg/models"
	"github.com/Raman-79/yt-downloader/pkg/storage"
	"github.com/Raman-79/yt-downloader/pkg/utils"
)

// ArtifactDownloader produces a local file for a request.
type ArtifactDownloader interface {
	Download(ctx context.Context, req models.DownloadRequest) (*downloader.Artifact, error)
}

type Service struct {
	// Storage is checked on every request; Store is nil when it was incomplete at startup.
	Storage     config.StorageConfig
	Store       storage.ObjectStore
	Downloader  ArtifactDownloader
	Info        *metadata.Resolver
	Metrics     *metrics.Metrics
	MaxFileSize int64
	LinkExpiry  time.Duration
}

// NewRequest validates and sanitizes raw inbound fields.
func NewRequest(rawURL, format, identifier string) (models.DownloadRequest, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !utils.ValidateURL(rawURL) {
		return models.DownloadRequest{}, newError(KindInvalidInput, "validate", "Invalid YouTube URL", nil)
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	id := utils.SanitizeIdentifier(identifier)
	if id == "" {
		return models.DownloadRequest{}, newError(KindInvalidInput, "validate", "Invalid identifier", nil)
	}
	if len(id) > utils.MaxIdentifierLength {
		return models.DownloadRequest{}, newError(KindInvalidInput, "validate",
			fmt.Sprintf("Identifier longer than %d characters", utils.MaxIdentifierLength), nil)
	}

	return models.DownloadRequest{
		SourceURL:  rawURL,
		Format:     models.ParseFormat(format),
		Identifier: id,
	}, nil
}

// Fetch serves the artifact for (rawURL, format, identifier) from the cache,
// downloading and uploading it first on a miss.
func (s *Service) Fetch(ctx context.Context, rawURL, format, identifier string) (*models.FetchResult, error) {
	res, err := s.fetch(ctx, rawURL, format, identifier)
	s.Metrics.RecordRequest(outcome(res, err))
	return res, err
}

func (s *Service) fetch(ctx context.Context, rawURL, format, identifier string) (*models.FetchResult, error) {
	if err := s.Storage.Validate(); err != nil {
		return nil, newError(KindConfigurationMissing, "validate env", "", err)
	}
	if s.Store == nil {
		return nil, newError(KindConfigurationMissing, "validate env", "", errors.New("object store not initialized"))
	}

	req, err := NewRequest(rawURL, format, identifier)
	if err != nil {
		return nil, err
	}
	key := req.Key()
	log := logger.FromContext(ctx).With("key", key)

	exists, err := s.Store.Exists(ctx, key)
	switch {
	case err != nil:
		s.Metrics.RecordCacheLookup(metrics.LookupError)
		log.Warn("Cache check failed, downloading anyway", "err", err)
	case exists:
		s.Metrics.RecordCacheLookup(metrics.LookupHit)
		log.Info("Cache hit")
		link, err := s.presign(ctx, key)
		if err != nil {
			return nil, err
		}
		return &models.FetchResult{Key: key, PresignedURL: link, CacheHit: true}, nil
	default:
		s.Metrics.RecordCacheLookup(metrics.LookupMiss)
		log.Info("Cache miss")
	}

	art, err := s.Downloader.Download(ctx, req)
	if err != nil {
		return nil, newError(KindDownloadFailed, "download", "", err)
	}
	defer func() {
		if rmErr := art.Remove(); rmErr != nil {
			log.Warn("Error removing local artifact", "path", art.Path, "err", rmErr)
		}
	}()
	path := art.Path

	size, err := s.checkSize(path)
	if err != nil {
		log.Warn("Artifact rejected", "path", path, "err", err)
		return nil, err
	}

	if err := s.upload(ctx, key, path, size, req.Format.ContentType()); err != nil {
		return nil, err
	}
	s.Metrics.AddUploadedBytes(size)
	log.Info("Artifact uploaded", "bytes", size)

	link, err := s.presign(ctx, key)
	if err != nil {
		return nil, err
	}
	return &models.FetchResult{Key: key, PresignedURL: link, SizeBytes: size}, nil
}

func (s *Service) maxFileSize() int64 {
	if s.MaxFileSize > 0 {
		return s.MaxFileSize
	}
	return config.DefaultMaxFileSize
}

func (s *Service) checkSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, newError(KindDownloadFailed, "stat artifact", "", err)
	}
	limit := s.maxFileSize()
	if info.Size() > limit {
		msg := fmt.Sprintf("File size exceeds the %d MB limit", limit>>20)
		return 0, newError(KindSizeExceeded, "check size", msg, fmt.Errorf("%d > %d bytes", info.Size(), limit))
	}
	return info.Size(), nil
}

func (s *Service) upload(ctx context.Context, key, path string, size int64, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return newError(KindInternal, "open artifact", "", err)
	}
	defer f.Close()

	if err := s.Store.Put(ctx, key, f, size, contentType); err != nil {
		return newError(KindStorage, "upload", "", err)
	}
	return nil
}

func (s *Service) presign(ctx context.Context, key string) (string, error) {
	expiry := s.LinkExpiry
	if expiry <= 0 {
		expiry = config.DefaultLinkExpiry
	}
	link, err := s.Store.PresignGet(ctx, key, expiry)
	if err != nil {
		return "", newError(KindStorage, "presign", "", err)
	}
	return link, nil
}

// VideoInfo resolves preview metadata for a link or bare video ID.
func (s *Service) VideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error) {
	id := utils.ExtractVideoID(rawURL)
	if id == "" {
		return nil, newError(KindInvalidInput, "info", "Invalid YouTube URL", nil)
	}
	if s.Info == nil {
		return &models.VideoInfo{VideoID: id}, nil
	}

	info, err := s.Info.Lookup(ctx, id)
	if err != nil {
		// Lookup still returns the ID and thumbnail.
		logger.FromContext(ctx).Warn("Metadata lookup failed", "id", id, "err", err)
	}
	return info, nil
}

func outcome(res *models.FetchResult, err error) string {
	switch {
	case err == nil && res.CacheHit:
		return metrics.OutcomeCacheHit
	case err == nil:
		return metrics.OutcomeDownloaded
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return metrics.OutcomeInvalidInput
	case KindSizeExceeded:
		return metrics.OutcomeTooLarge
	default:
		return metrics.OutcomeError
	}
}
