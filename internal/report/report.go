// Package report renders the run summary for humans: a console digest and
// a markdown file the viewer can serve.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"neuropipe/domain/recording"
	"neuropipe/internal/analyze"
	"neuropipe/internal/errors"
	"neuropipe/internal/normalize"
)

// Filename is the markdown report written into the figure directory.
const Filename = "report.md"

// Report collects everything one pipeline run produced.
type Report struct {
	DatasetPath string
	GeneratedAt time.Time

	Summary analyze.Summary
	Groups  []normalize.GroupStats
	Welch   *analyze.WelchResult
	Fits    []analyze.SessionFit

	PooledSlopeMean float64
	PooledSlopeStd  float64

	Figures []string
}

// PrintConsole writes the human-readable digest to the standard logger.
func (r *Report) PrintConsole() {
	s := r.Summary
	log.Printf("=== Run summary for %s ===", r.DatasetPath)
	log.Printf("Rows: %d total, %d with arena label, %d scored", s.TotalRows, s.ValidArenaRows, s.ScoredRows)
	log.Printf("Groups: %d (%d degenerate), sizes mean=%.1f median=%.1f min=%d max=%d",
		s.GroupCount, s.DegenerateCount,
		s.GroupSizes.Mean, s.GroupSizes.Median, s.GroupSizes.Min, s.GroupSizes.Max)
	log.Printf("Derived column: mean=%.4f std=%.4f (aggregate-of-groups, informational)",
		s.GlobalScoreMean, s.GlobalScoreStd)
	if r.Welch != nil {
		log.Printf("Arena %s vs %s: t=%.3f df=%.1f p=%.4g",
			r.Welch.ArenaA, r.Welch.ArenaB, r.Welch.T, r.Welch.DF, r.Welch.P)
	}
	if len(r.Fits) > 0 {
		log.Printf("Session slopes: %d sessions, pooled %.4f ± %.4f z/min",
			len(r.Fits), r.PooledSlopeMean, r.PooledSlopeStd)
	}
}

// Markdown renders the full report document.
func (r *Report) Markdown() string {
	var b strings.Builder
	s := r.Summary

	fmt.Fprintf(&b, "# Pipeline run report\n\n")
	fmt.Fprintf(&b, "Dataset: `%s`  \nGenerated: %s\n\n", r.DatasetPath, r.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## Dataset\n\n")
	fmt.Fprintf(&b, "| metric | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| total rows | %d |\n", s.TotalRows)
	fmt.Fprintf(&b, "| rows with arena label | %d |\n", s.ValidArenaRows)
	fmt.Fprintf(&b, "| rows with z-score | %d |\n", s.ScoredRows)
	fmt.Fprintf(&b, "| groups | %d |\n", s.GroupCount)
	fmt.Fprintf(&b, "| degenerate groups | %d |\n", s.DegenerateCount)
	fmt.Fprintf(&b, "| group size mean / median | %.1f / %.1f |\n", s.GroupSizes.Mean, s.GroupSizes.Median)
	fmt.Fprintf(&b, "| group size min / max | %d / %d |\n", s.GroupSizes.Min, s.GroupSizes.Max)
	fmt.Fprintf(&b, "| derived column mean / std | %.4f / %.4f |\n\n", s.GlobalScoreMean, s.GlobalScoreStd)

	if len(r.Groups) > 0 {
		fmt.Fprintf(&b, "## Groups\n\n")
		fmt.Fprintf(&b, "| session | arena | size | valid | mean | std | note |\n|---|---|---|---|---|---|---|\n")
		for _, g := range r.Groups {
			note := ""
			if g.Degenerate {
				note = "degenerate, scores left missing"
			} else if g.ZeroVariance {
				note = "zero variance, scores set to 0"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %.3f | %.3f | %s |\n",
				g.Key.Session, g.Key.Arena, g.Size, g.Valid, g.Mean, g.Std, note)
		}
		b.WriteString("\n")
	}

	if r.Welch != nil {
		w := r.Welch
		fmt.Fprintf(&b, "## Arena comparison\n\n")
		fmt.Fprintf(&b, "Welch's t-test on z-scored MUA, %s (n=%d, mean=%.3f) vs %s (n=%d, mean=%.3f): ",
			w.ArenaA, w.NA, w.MeanA, w.ArenaB, w.NB, w.MeanB)
		fmt.Fprintf(&b, "t=%.3f, df=%.1f, p=%.4g\n\n", w.T, w.DF, w.P)
	}

	if len(r.Fits) > 0 {
		fmt.Fprintf(&b, "## Session time-courses\n\n")
		fmt.Fprintf(&b, "| session | n | intercept | slope (z/min) |\n|---|---|---|---|\n")
		for _, f := range r.Fits {
			fmt.Fprintf(&b, "| %s | %d | %.3f | %.4f |\n", f.Session, f.N, f.Intercept, f.Slope)
		}
		fmt.Fprintf(&b, "\nPooled slope: %.4f ± %.4f z/min across %d sessions.\n\n",
			r.PooledSlopeMean, r.PooledSlopeStd, len(r.Fits))
	}

	if len(r.Figures) > 0 {
		fmt.Fprintf(&b, "## Figures\n\n")
		for _, fig := range r.Figures {
			name := filepath.Base(fig)
			fmt.Fprintf(&b, "![%s](figures/%s)\n\n", name, name)
		}
	}

	return b.String()
}

// Write saves the markdown report into dir.
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create report directory")
	}
	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, []byte(r.Markdown()), 0644); err != nil {
		return "", errors.Wrap(err, "failed to write report")
	}
	log.Printf("[Report] Wrote %s", path)
	return path, nil
}

// GroupsInOrder flattens the normalizer's group map deterministically.
func GroupsInOrder(res normalize.Result) []normalize.GroupStats {
	index := make(map[recording.GroupKey][]int, len(res.Groups))
	for k := range res.Groups {
		index[k] = nil
	}
	keys := recording.SortedGroupKeys(index)
	out := make([]normalize.GroupStats, 0, len(keys))
	for _, k := range keys {
		out = append(out, res.Groups[k])
	}
	return out
}
