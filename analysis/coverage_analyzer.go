package analysis

import (
	"path"

	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
)

type CoverageDataset struct {
	Timesteps   []int `json:"timesteps"`
	UniqueCells []int `json:"unique_cells"`
}

func (c *CoverageDataset) Copy() *CoverageDataset {
	return &CoverageDataset{
		Timesteps:   util.CopyIntSlice(c.Timesteps),
		UniqueCells: util.CopyIntSlice(c.UniqueCells),
	}
}

// CoverageAnalyzer counts the distinct cells visited so far against the
// cumulative number of steps.
type CoverageAnalyzer struct {
	cells   map[core.Cell]bool
	dataset *CoverageDataset
}

var _ core.Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	c := &CoverageAnalyzer{}
	c.Reset()
	return c
}

func (c *CoverageAnalyzer) Reset() {
	c.cells = make(map[core.Cell]bool)
	c.dataset = &CoverageDataset{
		Timesteps:   make([]int, 0),
		UniqueCells: make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(rec *core.EpisodeRecord) {
	for _, cell := range rec.Trace.Cells() {
		c.cells[cell] = true
	}
	lastTimeStep := 0
	if len(c.dataset.Timesteps) > 0 {
		lastTimeStep = c.dataset.Timesteps[len(c.dataset.Timesteps)-1]
	}
	c.dataset.Timesteps = append(c.dataset.Timesteps, lastTimeStep+rec.Trace.Len())
	c.dataset.UniqueCells = append(c.dataset.UniqueCells, len(c.cells))
}

func (c *CoverageAnalyzer) DataSet() core.DataSet {
	return c.dataset.Copy()
}

type CoverageAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &CoverageAnalyzerConstructor{}

func NewCoverageAnalyzerConstructor() *CoverageAnalyzerConstructor {
	return &CoverageAnalyzerConstructor{}
}

func (c *CoverageAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewCoverageAnalyzer()
}

// JSONComparator writes the datasets of every run, keyed by run name, to a
// single file.
type JSONComparator struct {
	savePath string
}

var _ core.Comparator = &JSONComparator{}

func NewJSONComparator(savePath, file string) *JSONComparator {
	return &JSONComparator{
		savePath: path.Join(savePath, file),
	}
}

func (c *JSONComparator) Compare(names []string, datasets []core.DataSet) {
	out := make(map[string]core.DataSet)
	for i, name := range names {
		out[name] = datasets[i]
	}
	reportErr("saving "+c.savePath, util.SaveJson(c.savePath, out))
}
