// Package app wires the pipeline stages together: load, normalize,
// analyze, report, plot, save.
package app

import (
	"context"
	"log"
	"sort"
	"time"

	"neuropipe/adapters/plot"
	"neuropipe/domain/recording"
	"neuropipe/domain/run"
	"neuropipe/internal/analyze"
	"neuropipe/internal/config"
	"neuropipe/internal/errors"
	"neuropipe/internal/normalize"
	"neuropipe/internal/report"
	"neuropipe/ports"
)

// Pipeline is the sequential batch job over one dataset file. Stages run
// in order; only a failed dataset load aborts the run.
type Pipeline struct {
	cfg      *config.Config
	tables   ports.TableStore
	runs     ports.RunStore // nil disables the run store
	renderer *plot.Renderer
	sink     normalize.Sink

	// RenderAllSessions renders a time-course pair per session instead of
	// just the example session.
	RenderAllSessions bool
}

// NewPipeline assembles a pipeline from its adapters. runs may be nil.
func NewPipeline(cfg *config.Config, tables ports.TableStore, runs ports.RunStore, renderer *plot.Renderer, sink normalize.Sink) *Pipeline {
	if sink == nil {
		sink = normalize.LogSink{}
	}
	return &Pipeline{
		cfg:      cfg,
		tables:   tables,
		runs:     runs,
		renderer: renderer,
		sink:     sink,
	}
}

// Run executes the full pipeline and returns the run report.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	summary := run.NewSummary(p.cfg.Data.File)

	ds, err := p.tables.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline aborted")
	}
	log.Printf("[Pipeline] Loaded %d rows from %s", ds.RowCount(), p.cfg.Data.File)

	res := normalize.GroupedZScores(ds.Records, p.sink)
	scored := normalize.Apply(ds, res)
	log.Printf("[Pipeline] Normalized %d groups, %d rows scored, %d warnings",
		len(res.Groups), scored, res.Warnings)

	rep := p.analyze(ds, res)
	rep.PrintConsole()

	if p.renderer != nil {
		p.renderFigures(ctx, ds, rep)
	}

	if _, err := rep.Write(p.cfg.Plots.Dir); err != nil {
		log.Printf("WARNING: report not written: %v", err)
	}

	if err := p.tables.Save(ctx, ds); err != nil {
		return rep, errors.Wrap(err, "failed to save dataset")
	}

	p.recordRun(ctx, summary, rep)
	return rep, nil
}

// Analyze runs the read-only half of the pipeline: normalize in memory,
// report, but never write anything back.
func (p *Pipeline) Analyze(ctx context.Context) (*report.Report, error) {
	ds, err := p.tables.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "analysis aborted")
	}

	res := normalize.GroupedZScores(ds.Records, p.sink)
	normalize.Apply(ds, res)

	rep := p.analyze(ds, res)
	rep.PrintConsole()
	return rep, nil
}

func (p *Pipeline) analyze(ds *recording.Dataset, res normalize.Result) *report.Report {
	rep := &report.Report{
		DatasetPath: p.cfg.Data.File,
		GeneratedAt: time.Now(),
		Summary:     analyze.Summarize(ds, res),
		Groups:      report.GroupsInOrder(res),
	}

	arenas := distinctArenas(ds)
	if len(arenas) >= 2 {
		welch, err := analyze.CompareArenas(ds, arenas[0], arenas[1])
		if err != nil {
			log.Printf("WARNING: arena comparison skipped: %v", err)
		} else {
			rep.Welch = welch
		}
	}

	rep.Fits = analyze.SessionTimeCourses(ds, 5)
	rep.PooledSlopeMean, rep.PooledSlopeStd = analyze.PooledSlope(rep.Fits)
	return rep
}

func (p *Pipeline) renderFigures(ctx context.Context, ds *recording.Dataset, rep *report.Report) {
	figures, err := p.renderer.Histograms(ds)
	if err != nil {
		log.Printf("WARNING: histograms not rendered: %v", err)
	} else {
		rep.Figures = append(rep.Figures, figures...)
	}

	if p.RenderAllSessions {
		if err := p.renderer.AllSessionTimeCourses(ctx, ds); err != nil {
			log.Printf("WARNING: session figures incomplete: %v", err)
		}
		return
	}

	session := p.exampleSession(ds)
	if session == "" {
		return
	}
	figures, err = p.renderer.SessionTimeCourse(ds, session)
	if err != nil {
		log.Printf("WARNING: time-course for session %s not rendered: %v", session, err)
		return
	}
	rep.Figures = append(rep.Figures, figures...)
}

// exampleSession picks the configured session, or the first one present.
func (p *Pipeline) exampleSession(ds *recording.Dataset) recording.SessionID {
	if p.cfg.Data.ExampleSession != "" {
		return recording.SessionID(p.cfg.Data.ExampleSession)
	}
	sessions := ds.Sessions()
	if len(sessions) == 0 {
		return ""
	}
	return sessions[0]
}

func (p *Pipeline) recordRun(ctx context.Context, summary *run.Summary, rep *report.Report) {
	if p.runs == nil {
		return
	}

	s := rep.Summary
	summary.TotalRows = s.TotalRows
	summary.ValidArenaRows = s.ValidArenaRows
	summary.ScoredRows = s.ScoredRows
	summary.GroupCount = s.GroupCount
	summary.DegenerateGrps = s.DegenerateCount
	summary.GlobalScoreMean = s.GlobalScoreMean
	summary.GlobalScoreStd = s.GlobalScoreStd
	summary.FinishedAt = time.Now()

	if err := p.runs.SaveSummary(ctx, summary); err != nil {
		log.Printf("WARNING: run summary not stored: %v", err)
		return
	}
	log.Printf("[Pipeline] Run %s stored (%.1fs)", summary.ID, summary.Duration().Seconds())
}

func distinctArenas(ds *recording.Dataset) []recording.ArenaType {
	seen := make(map[recording.ArenaType]bool)
	var arenas []recording.ArenaType
	for _, rec := range ds.Records {
		if rec.HasArena() && !seen[rec.ArenaType] {
			seen[rec.ArenaType] = true
			arenas = append(arenas, rec.ArenaType)
		}
	}
	sort.Slice(arenas, func(i, j int) bool { return arenas[i] < arenas[j] })
	return arenas
}
