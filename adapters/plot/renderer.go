// Package plot renders the QA figures: distribution histograms and
// per-session time-courses before/after normalization. The figures are
// visual checks only; nothing downstream consumes them.
package plot

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sync"

	"neuropipe/domain/recording"
	"neuropipe/internal/errors"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Renderer writes PNG figures into one output directory.
type Renderer struct {
	dir     string
	workers *semaphore.Weighted
}

// NewRenderer creates a renderer writing into dir, rendering at most
// workers session figures concurrently.
func NewRenderer(dir string, workers int64) *Renderer {
	if workers < 1 {
		workers = 1
	}
	return &Renderer{
		dir:     dir,
		workers: semaphore.NewWeighted(workers),
	}
}

// Histograms renders the rate and z-score distributions side by side as
// two panels, returning the written file paths.
func (r *Renderer) Histograms(ds *recording.Dataset) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create figure directory")
	}

	var rates, scores []float64
	for _, rec := range ds.Records {
		if rec.HasRate() {
			rates = append(rates, rec.MUARate)
		}
		if rec.HasScore() {
			scores = append(scores, rec.MUAZScore)
		}
	}

	ratePath := filepath.Join(r.dir, "mua_rate_hist.png")
	if err := r.histogram(rates, "MUA rate distribution", "rate (Hz)", ratePath); err != nil {
		return nil, err
	}
	scorePath := filepath.Join(r.dir, "mua_zscore_hist.png")
	if err := r.histogram(scores, "MUA z-score distribution", "z-score", scorePath); err != nil {
		return nil, err
	}

	return []string{ratePath, scorePath}, nil
}

func (r *Renderer) histogram(values []float64, title, xlabel, path string) error {
	if len(values) == 0 {
		return errors.PlotError(fmt.Sprintf("no values to plot for %q", title))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), 40)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	h.FillColor = color.NRGBA{R: 70, G: 130, B: 180, A: 200}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "failed to save histogram")
	}
	log.Printf("[Renderer] Wrote %s", path)
	return nil
}

// SessionTimeCourse renders one session's rate and z-score traces over
// time as two stacked files, returning the written paths.
func (r *Renderer) SessionTimeCourse(ds *recording.Dataset, session recording.SessionID) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create figure directory")
	}

	rows := ds.SessionRows(session)
	if len(rows) == 0 {
		return nil, errors.PlotError(fmt.Sprintf("session %q has no rows", session))
	}

	var raw, scored plotter.XYs
	for _, i := range rows {
		rec := ds.Records[i]
		if rec.HasRate() {
			raw = append(raw, plotter.XY{X: rec.TimeMin, Y: rec.MUARate})
		}
		if rec.HasScore() {
			scored = append(scored, plotter.XY{X: rec.TimeMin, Y: rec.MUAZScore})
		}
	}

	rawPath := filepath.Join(r.dir, fmt.Sprintf("timecourse_%s_rate.png", session))
	if err := r.line(raw, fmt.Sprintf("Session %s MUA rate", session), "rate (Hz)", rawPath); err != nil {
		return nil, err
	}
	zPath := filepath.Join(r.dir, fmt.Sprintf("timecourse_%s_zscore.png", session))
	if err := r.line(scored, fmt.Sprintf("Session %s MUA z-score", session), "z-score", zPath); err != nil {
		return nil, err
	}
	return []string{rawPath, zPath}, nil
}

func (r *Renderer) line(points plotter.XYs, title, ylabel, path string) error {
	if len(points) == 0 {
		return errors.PlotError(fmt.Sprintf("no points to plot for %q", title))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (min)"
	p.Y.Label.Text = ylabel

	l, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "failed to build line plot")
	}
	l.Color = color.NRGBA{R: 178, G: 34, B: 34, A: 255}
	p.Add(l)

	if err := p.Save(8*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.Wrap(err, "failed to save line plot")
	}
	log.Printf("[Renderer] Wrote %s", path)
	return nil
}

// AllSessionTimeCourses renders the time-course pair for every session,
// bounded by the renderer's worker limit. Individual session failures are
// collected, not fatal.
func (r *Renderer) AllSessionTimeCourses(ctx context.Context, ds *recording.Dataset) error {
	sessions := ds.Sessions()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []string

	for _, session := range sessions {
		if err := r.workers.Acquire(ctx, 1); err != nil {
			return errors.Wrap(err, "figure rendering cancelled")
		}
		wg.Add(1)
		go func(session recording.SessionID) {
			defer wg.Done()
			defer r.workers.Release(1)
			if _, err := r.SessionTimeCourse(ds, session); err != nil {
				mu.Lock()
				failed = append(failed, string(session))
				mu.Unlock()
				log.Printf("WARNING: time-course for session %s failed: %v", session, err)
			}
		}(session)
	}
	wg.Wait()

	if len(failed) == len(sessions) && len(sessions) > 0 {
		return errors.PlotError("all session time-courses failed to render")
	}
	return nil
}
