package utils

import (
	"regexp"
	"strings"
)

var (
	// youtube.com and youtube-nocookie.com: watch, shorts, embed, live and legacy /v/ links.
	longURLRe = regexp.MustCompile(`^(?:https?://)?(?:(?:www|m|music)\.)?(?:youtube\.com|youtube-nocookie\.com)/(?:watch\?(?:[^#\s]*&)?v=|shorts/|embed/|live/|v/)([A-Za-z0-9_-]{11})(?:[?&#/]\S*)?$`)
	// youtu.be/<id>
	shortURLRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})(?:[?&#/]\S*)?$`)
	bareIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ValidateURL reports whether input has the shape of a supported YouTube
// video link. A bare video ID is not a URL and is rejected.
func ValidateURL(input string) bool {
	return matchVideoURL(input) != ""
}

// ExtractVideoID returns the 11-character video ID from a supported link or
// from a bare ID, or "" when none is found.
func ExtractVideoID(input string) string {
	input = strings.TrimSpace(input)
	if id := matchVideoURL(input); id != "" {
		return id
	}
	if bareIDRe.MatchString(input) {
		return input
	}
	return ""
}

func matchVideoURL(input string) string {
	if input == "" || strings.ContainsAny(input, " \t\r\n") {
		return ""
	}
	for _, re := range []*regexp.Regexp{longURLRe, shortURLRe} {
		if m := re.FindStringSubmatch(input); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// CanonicalURL returns the watch URL for a video ID.
func CanonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
