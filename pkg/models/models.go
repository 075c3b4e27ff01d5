package models

import "strings"

// Format selects what the downloader produces.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// ParseFormat treats "audio" (case-insensitive) as audio and anything else as video.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatAudio)) {
		return FormatAudio
	}
	return FormatVideo
}

// Extension is the file extension of the stored artifact.
func (f Format) Extension() string {
	if f == FormatAudio {
		return "mp3"
	}
	return "mp4"
}

// ContentType is the MIME type used when storing the artifact.
func (f Format) ContentType() string {
	if f == FormatAudio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// CacheKey derives the object key for an identifier. The identifier must
// already be sanitized.
func CacheKey(identifier string, f Format) string {
	return identifier + "." + f.Extension()
}

// DownloadRequest is a validated, sanitized request for one artifact.
type DownloadRequest struct {
	SourceURL  string
	Format     Format
	Identifier string
}

// Key returns the cache key of the request.
func (r DownloadRequest) Key() string {
	return CacheKey(r.Identifier, r.Format)
}

// FetchResult is what the orchestrator hands back on success.
type FetchResult struct {
	Key          string
	PresignedURL string
	CacheHit     bool
	SizeBytes    int64
}

// VideoInfo is the metadata shown by the front-end preview.
type VideoInfo struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Author       string `json:"author,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// DownloadBody is the inbound JSON of POST /api/download.
type DownloadBody struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	ID     string `json:"id"`
}

// APIResponse is returned with 200 on a cache hit or a fresh download.
type APIResponse struct {
	Message      string `json:"message"`
	PresignedURL string `json:"presignedUrl"`
}

// ErrorResponse is returned on any failure; ErrorID is only set for 500s.
type ErrorResponse struct {
	Error   string `json:"error"`
	ErrorID string `json:"errorId,omitempty"`
}
