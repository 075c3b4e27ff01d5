package ytdlp

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Raman-79/yt-downloader/pkg/models"
)

// ErrNoDestination means the output carried no recognizable destination line.
var ErrNoDestination = errors.New("no destination line in yt-dlp output")

// Destination announcements, most specific first. These mirror yt-dlp's
// console messages; a change there must be reflected here.
var destinationPatterns = map[models.Format][]*regexp.Regexp{
	models.FormatAudio: {
		regexp.MustCompile(`(?m)^\[ExtractAudio\] Destination: (.+)$`),
		regexp.MustCompile(`(?m)^\[ExtractAudio\] Not converting audio (.+?); file is already in target format`),
	},
	models.FormatVideo: {
		regexp.MustCompile(`(?m)^\[VideoRemuxer\] Remuxing video from \S+ to \S+; Destination: (.+)$`),
		regexp.MustCompile(`(?m)^\[VideoRemuxer\] Not remuxing media file "(.+)"; already is in target format`),
		regexp.MustCompile(`(?m)^\[Merger\] Merging formats into "(.+)"$`),
		regexp.MustCompile(`(?m)^\[download\] Destination: (.+)$`),
		regexp.MustCompile(`(?m)^\[download\] (.+) has already been downloaded`),
	},
}

// ParseDestination returns the artifact path announced in output for the
// given format. Within a pattern the first match wins.
func ParseDestination(output string, format models.Format) (string, error) {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	for _, re := range destinationPatterns[format] {
		m := re.FindStringSubmatch(output)
		if len(m) < 2 {
			continue
		}
		if p := strings.TrimSpace(m[1]); p != "" {
			return p, nil
		}
	}
	return "", ErrNoDestination
}
