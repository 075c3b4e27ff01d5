package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupUsesOembed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oembed", r.URL.Path)
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Never Gonna Give You Up","author_name":"Rick Astley","thumbnail_url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}`))
	}))
	defer srv.Close()

	r := &Resolver{Client: srv.Client(), BaseURL: srv.URL}
	info, err := r.Lookup(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, "Rick Astley", info.Author)
	assert.Equal(t, "dQw4w9WgXcQ", info.VideoID)
}

func TestLookupFallsBackToScraping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oembed":
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case "/watch":
			assert.Equal(t, "abcdefghijk", r.URL.Query().Get("v"))
			_, _ = w.Write([]byte("<html><head>\n<title>Tom &amp; Jerry - YouTube</title>\n</head></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := &Resolver{Client: srv.Client(), BaseURL: srv.URL}
	info, err := r.Lookup(context.Background(), "abcdefghijk")
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", info.Title)
	assert.Equal(t, "https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg", info.ThumbnailURL)
}

func TestLookupNoTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/watch" {
			_, _ = w.Write([]byte("<html>nothing here</html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := &Resolver{Client: srv.Client(), BaseURL: srv.URL}
	info, err := r.Lookup(context.Background(), "abcdefghijk")
	require.Error(t, err)
	require.NotNil(t, info)
	assert.NotEmpty(t, info.ThumbnailURL)
	assert.Empty(t, info.Title)
}
