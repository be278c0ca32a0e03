// Package regions merges raw OCR word regions into visual lines and
// filters out page chrome and noise before evidence selection.
package regions

import (
	"sort"
	"strings"

	"github.com/redpenlabs/teardown/internal/config"
	"github.com/redpenlabs/teardown/internal/ocr"
)

// FilteredLine is a merged visual line of text. Its box is the minimal
// bounding box of the constituent word regions and its text the
// space-joined concatenation in left-to-right order.
type FilteredLine struct {
	Text   string     `json:"text"`
	Bounds ocr.Bounds `json:"bounds"`
}

// Grouper merges word regions into lines. It is a pure function of its
// input: identical regions always yield identical lines.
type Grouper struct {
	cfg config.RegionsConfig
}

// NewGrouper creates a grouper with the given thresholds.
func NewGrouper(cfg config.RegionsConfig) *Grouper {
	return &Grouper{cfg: cfg}
}

// Lines groups regions into visual lines and drops chrome and noise.
//
// Words whose vertical centers lie within the tolerance band of the
// group's running-average center are merged into one line. After
// merging, lines wholly above the header cutoff and lines smaller than
// the minimum line size are dropped. The result is ordered top-to-bottom
// by box top edge.
func (g *Grouper) Lines(regions []ocr.TextRegion) []FilteredLine {
	if len(regions) == 0 {
		return nil
	}

	sorted := make([]ocr.TextRegion, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Bounds.Y1 != sorted[j].Bounds.Y1 {
			return sorted[i].Bounds.Y1 < sorted[j].Bounds.Y1
		}
		return sorted[i].Bounds.X1 < sorted[j].Bounds.X1
	})

	var groups [][]ocr.TextRegion
	var current []ocr.TextRegion
	var centerSum float64

	for _, r := range sorted {
		center := float64(r.Bounds.Y1+r.Bounds.Y2) / 2

		if len(current) > 0 {
			avg := centerSum / float64(len(current))
			if center-avg > float64(g.cfg.LineTolerance) || avg-center > float64(g.cfg.LineTolerance) {
				groups = append(groups, current)
				current = nil
				centerSum = 0
			}
		}

		current = append(current, r)
		centerSum += center
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	lines := make([]FilteredLine, 0, len(groups))
	for _, group := range groups {
		line := mergeGroup(group)
		if g.isChrome(line) || g.isNoise(line) {
			continue
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Bounds.Y1 < lines[j].Bounds.Y1
	})
	return lines
}

// mergeGroup builds one line from the words of a group, left to right.
func mergeGroup(group []ocr.TextRegion) FilteredLine {
	ordered := make([]ocr.TextRegion, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Bounds.X1 < ordered[j].Bounds.X1
	})

	box := ordered[0].Bounds
	texts := make([]string, 0, len(ordered))
	for _, r := range ordered {
		box = box.Union(r.Bounds)
		texts = append(texts, r.Text)
	}

	return FilteredLine{
		Text:   strings.Join(texts, " "),
		Bounds: box,
	}
}

// isChrome reports whether the line lies wholly inside the configured
// header exclusion zone.
func (g *Grouper) isChrome(line FilteredLine) bool {
	return line.Bounds.Y2 <= g.cfg.HeaderCutoff
}

// isNoise reports whether the line's box is below the minimum size.
func (g *Grouper) isNoise(line FilteredLine) bool {
	return line.Bounds.Width() < g.cfg.MinLineWidth ||
		line.Bounds.Height() < g.cfg.MinLineHeight
}
