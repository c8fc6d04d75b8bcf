package main

import (
	"fmt"
	"io"
	"time"

	"github.com/poiesic/corpusit/ingest"
)

// consoleRenderer prints pipeline progress one line per stage.
// Throttle countdowns overwrite their own line so a long wait doesn't
// scroll the terminal.
type consoleRenderer struct {
	out       io.Writer
	throttled bool
}

func (r *consoleRenderer) Report(p ingest.Progress) {
	if p.Stage == ingest.StageThrottle {
		fmt.Fprintf(r.out, "\r[%d/%d] %s: waiting %s   ", p.Current, p.Total, p.FileName, p.Info)
		r.throttled = true
		return
	}

	// End the countdown line before the next regular stage line.
	if r.throttled {
		fmt.Fprintln(r.out)
		r.throttled = false
	}

	switch p.Stage {
	case ingest.StageStart:
		fmt.Fprintf(r.out, "[%d/%d] %s\n", p.Current, p.Total, p.FileName)
	case ingest.StageError:
		fmt.Fprintf(r.out, "  %-10s %s\n", p.Stage, p.Info)
	default:
		line := fmt.Sprintf("  %-10s", p.Stage)
		if p.Info != "" {
			line += " " + p.Info
		}
		if p.StageElapsed > 0 {
			line += fmt.Sprintf(" (%s)", p.StageElapsed.Round(time.Millisecond))
		}
		fmt.Fprintln(r.out, line)
	}
}
