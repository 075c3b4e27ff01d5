package downloader

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"sync"
	"time"
)

var progressRe = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%(?:\s+of\s+~?\s*(\S+))?`)

// ProgressPrinter renders yt-dlp progress lines as a single console line.
// Its Line method fits ytdlp.ExecRunner.OnLine.
type ProgressPrinter struct {
	Out   io.Writer
	Label string // "Audio", "Video"
	// Interval throttles redraws.
	Interval time.Duration

	mu        sync.Mutex
	lastPrint time.Time
	printed   bool
}

func (p *ProgressPrinter) Line(stream, line string) {
	if stream != "stdout" {
		return
	}
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if percent < 100 && time.Since(p.lastPrint) < p.Interval {
		return
	}
	p.lastPrint = time.Now()
	p.printed = true

	if m[2] != "" {
		fmt.Fprintf(p.Out, "\r[%s] %.2f%% of %s   ", p.Label, percent, m[2])
	} else {
		fmt.Fprintf(p.Out, "\r[%s] %.2f%%   ", p.Label, percent)
	}
}

// Finish ends the progress line if anything was printed.
func (p *ProgressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed {
		fmt.Fprintln(p.Out)
		p.printed = false
	}
}
