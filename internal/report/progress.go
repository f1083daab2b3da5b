package report

import (
	"fmt"
	"io"

	"github.com/san-kum/gravsim/internal/gravity"
)

// Progress is a sim.Observer that redraws a progress bar on w roughly
// every percent of the run.
type Progress struct {
	w     io.Writer
	total int
	width int
	last  int
}

func NewProgress(w io.Writer, total int) *Progress {
	return &Progress{w: w, total: total, width: 30, last: -1}
}

func (p *Progress) OnStep(sys *gravity.System, step int, t float64) {
	if p.total <= 0 {
		return
	}
	pct := step * 100 / p.total
	if pct == p.last {
		return
	}
	p.last = pct

	fmt.Fprintf(p.w, "\r%s %3d%%  t=%-12.6g", ProgressBar(float64(step)/float64(p.total), p.width), pct, t)
	if step >= p.total {
		fmt.Fprintln(p.w)
	}
}
