package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raman-79/yt-downloader/pkg/config"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCommand(&app{v: config.NewViper()})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "yt-downloader dev\n", out.String())
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("YTD_SERVER_PORT", "7070")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("YTD_DOWNLOAD_TIMEOUT", "90s")

	a := &app{v: config.NewViper()}
	root := newRootCommand(a)
	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)

	require.NoError(t, root.PersistentFlags().Set("out", "/tmp/yt-out"))
	require.NoError(t, serve.Flags().Set("port", "9090"))
	require.NoError(t, serve.Flags().Set("onweb", "true"))
	require.NoError(t, root.PersistentPreRunE(serve, nil))

	assert.Equal(t, 9090, a.cfg.Server.Port)
	assert.True(t, a.cfg.Server.Web)
	assert.Equal(t, "/tmp/yt-out", a.cfg.Download.OutputDir)
	assert.Equal(t, 90*time.Second, a.cfg.Download.Timeout)
	assert.Equal(t, "media", a.cfg.Storage.Bucket)
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
