// Package ytdlp wraps the yt-dlp command line tool: argument vectors,
// process execution with incremental output capture, and recovery of the
// produced file path from the tool's output.
package ytdlp

import (
	"path/filepath"

	"github.com/Raman-79/yt-downloader/pkg/models"
)

// VideoSelector prefers an mp4 video with an m4a audio track so the merged
// file matches the mp4 cache key, falling back to the best single file.
const VideoSelector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// VideoContainer is forced for merged and single-file downloads alike, so
// the stored object always matches its .mp4 key.
const VideoContainer = "mp4"

// AudioCodec is the target of audio extraction.
const AudioCodec = "mp3"

// OutputTemplate places the artifact in dir, named after the identifier
// with the extension chosen by yt-dlp.
func OutputTemplate(dir, identifier string) string {
	return filepath.Join(dir, identifier+".%(ext)s")
}

// Args builds the argument vector for one download. It is never passed
// through a shell.
func Args(format models.Format, outputTemplate, sourceURL string) []string {
	if format == models.FormatAudio {
		return []string{
			"-x",
			"--audio-format", AudioCodec,
			"-o", outputTemplate,
			sourceURL,
		}
	}
	return []string{
		"-f", VideoSelector,
		"--merge-output-format", VideoContainer,
		"--remux-video", VideoContainer,
		"-o", outputTemplate,
		sourceURL,
	}
}
