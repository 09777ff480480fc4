package interactive

import (
	"fmt"
	"io"
	"sync"
)

// ProgressLine redraws a single download status line on a terminal.
type ProgressLine struct {
	mu       sync.Mutex
	out      io.Writer
	label    string
	received int64
	lastPct  int
}

// NewProgressLine creates a progress line labelled with the artifact name.
func NewProgressLine(out io.Writer, label string) *ProgressLine {
	return &ProgressLine{out: out, label: label, lastPct: -1}
}

// Chunk records n more bytes of total and redraws when the percentage moves.
// A negative total prints a byte count instead.
func (p *ProgressLine) Chunk(n, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.received += n

	if total <= 0 {
		_, _ = fmt.Fprintf(p.out, "\rDownloading %s... %s", p.label, formatBytes(p.received))
		return
	}

	pct := int(p.received * 100 / total)
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct
	_, _ = fmt.Fprintf(p.out, "\rDownloading %s... %3d%% (%s/%s)", p.label, pct, formatBytes(p.received), formatBytes(total))
}

// Done ends the line.
func (p *ProgressLine) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
