package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raman-79/yt-downloader/pkg/config"
)

type recordedOp struct {
	op  string
	err error
}

type fakeObserver struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeObserver) RecordStorage(op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{op: op, err: err})
}

type fakeS3 struct {
	mu          sync.Mutex
	puts        int
	body        []byte
	contentType string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/media/present.mp4":
		w.Header().Set("Content-Length", "10")
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead && r.URL.Path == "/media/forbidden.mp4":
		w.WriteHeader(http.StatusForbidden)
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/media/new.mp3":
		f.puts++
		f.body, _ = io.ReadAll(r.Body)
		f.contentType = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestStore(t *testing.T, handler http.Handler, obs Observer) *S3Store {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_PROFILE", "")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:          "media",
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
	}, obs)
	require.NoError(t, err)
	return store
}

func TestNewS3StoreRequiresConfig(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.StorageConfig{Bucket: "media"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrStorageConfigMissing)
}

func TestS3StoreExists(t *testing.T) {
	obs := &fakeObserver{}
	store := newTestStore(t, &fakeS3{}, obs)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "present.mp4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "missing.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Exists(ctx, "forbidden.mp4")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))

	require.Len(t, obs.ops, 3)
	assert.NoError(t, obs.ops[1].err)
	assert.Error(t, obs.ops[2].err)
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake, nil)

	payload := []byte("ID3 fake mp3 payload")
	err := store.Put(context.Background(), "new.mp3", bytes.NewReader(payload), int64(len(payload)), "audio/mpeg")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.puts)
	assert.Equal(t, "audio/mpeg", fake.contentType)
	assert.Contains(t, string(fake.body), string(payload))
}

func TestS3StorePresignGet(t *testing.T) {
	store := newTestStore(t, &fakeS3{}, nil)

	raw, err := store.PresignGet(context.Background(), "present.mp4", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/media/present.mp4", u.Path)
	q := u.Query()
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Contains(t, q.Get("X-Amz-Credential"), "AKIDEXAMPLE")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.True(t, IsNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, IsNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, IsNotFound(errors.New("dial tcp: connection refused")))
}
