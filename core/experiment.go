package core

import (
	"io"
	"time"
)

type DataSet interface{}

type Analyzer interface {
	Analyze(*EpisodeRecord)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type RunConfig struct {
	Episodes int
	// MaxSteps caps the steps of a single episode. Zero means episodes only
	// end on a terminal cell.
	MaxSteps int
}

// Experiment is a single training run of one agent on one board.
type Experiment struct {
	Name        string
	RunID       string
	RunNumber   int
	Environment Environment
	Agent       Agent
	// Schedule is consulted after every episode. A nil schedule keeps the
	// agent's epsilon unchanged.
	Schedule  Schedule
	Analyzers map[string]Analyzer

	// Writer receives one progress line per episode. Nil discards them.
	Writer io.Writer
}

// ParallelExperiment describes runs that each get a fresh agent. The
// environment and schedule are read-only and shared between runs.
type ParallelExperiment struct {
	Name        string
	Environment Environment
	Agent       AgentConstructor
	Schedule    Schedule
}

type ParallelRuns struct {
	Experiment  *ParallelExperiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]Comparator

	// Out is where the live progress display is drawn. Nil discards it.
	Out             io.Writer
	RefreshInterval time.Duration
}

func NewParallelRuns(e *ParallelExperiment) *ParallelRuns {
	return &ParallelRuns{
		Experiment:      e,
		Analyzers:       make(map[string]AnalyzerConstructor),
		Comparators:     make(map[string]Comparator),
		RefreshInterval: 100 * time.Millisecond,
	}
}

func (p *ParallelRuns) AddAnalysis(name string, a AnalyzerConstructor, cmp Comparator) {
	p.Analyzers[name] = a
	if cmp != nil {
		p.Comparators[name] = cmp
	}
}
