// Package metadata looks up title, author and thumbnail of a video for the
// front-end preview: the official oEmbed endpoint first, then a partial
// scrape of the watch page.
package metadata

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"github.com/Raman-79/yt-downloader/pkg/client"
	"github.com/Raman-79/yt-downloader/pkg/models"
	"github.com/Raman-79/yt-downloader/pkg/utils"
)

const (
	DefaultBaseURL      = "https://www.youtube.com"
	thumbnailURLPattern = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
	maxScrapeBytes      = 1024 * 1024
)

var titleRe = regexp.MustCompile(`<title>(.*?)(?: - YouTube)?</title>`)

// Resolver fetches VideoInfo.
type Resolver struct {
	Client client.HTTPClient
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
}

// Lookup resolves metadata for videoID. The thumbnail URL is always set;
// an error is returned only when no title could be found.
func (r *Resolver) Lookup(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	info := &models.VideoInfo{
		VideoID:      videoID,
		ThumbnailURL: fmt.Sprintf(thumbnailURLPattern, videoID),
	}

	oe, err := r.fetchOembed(ctx, videoID)
	if err == nil && oe.Title != "" {
		info.Title = oe.Title
		info.Author = oe.AuthorName
		if oe.ThumbnailURL != "" {
			info.ThumbnailURL = oe.ThumbnailURL
		}
		return info, nil
	}
	slog.Debug("oEmbed lookup failed, falling back to scraping", "vid", videoID, "err", err)

	title, err := r.fetchScrapedTitle(ctx, videoID)
	if err != nil {
		return info, err
	}
	info.Title = title
	return info, nil
}

func (r *Resolver) baseURL() string {
	if r.BaseURL != "" {
		return r.BaseURL
	}
	return DefaultBaseURL
}

type oembed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// fetchOembed requests the official JSON for an iframe embed of the video.
func (r *Resolver) fetchOembed(ctx context.Context, videoID string) (*oembed, error) {
	q := url.Values{}
	q.Set("url", utils.CanonicalURL(videoID))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL()+"/oembed?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data oembed
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// fetchScrapedTitle reads at most the first MiB of the watch page looking for <title>.
func (r *Resolver) fetchScrapedTitle(ctx context.Context, videoID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL()+"/watch?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return "", err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(io.LimitReader(resp.Body, maxScrapeBytes))
	scanner.Buffer(make([]byte, 64*1024), maxScrapeBytes)

	for scanner.Scan() {
		if m := titleRe.FindStringSubmatch(scanner.Text()); len(m) >= 2 && m[1] != "" {
			return html.UnescapeString(m[1]), nil
		}
	}

	return "", fmt.Errorf("title not found in first %d bytes", maxScrapeBytes)
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		slog.Warn("failed to close response body", "err", err)
	}
}
