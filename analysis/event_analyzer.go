package analysis

import (
	"fmt"
	"os"
	"path"

	"github.com/zeu5/ladders-rl/core"
)

// EventSpec names a condition on a finished episode.
type EventSpec struct {
	Name  string
	Check func(*core.EpisodeRecord) bool
}

var (
	TruncatedEvent = EventSpec{
		Name:  "truncated",
		Check: func(r *core.EpisodeRecord) bool { return r.Truncated },
	}
	LostEvent = EventSpec{
		Name:  "lost",
		Check: func(r *core.EpisodeRecord) bool { return r.Outcome == core.OutcomeLost },
	}
)

// EventAnalyzer counts matching episodes and, with a save path, writes their
// traces to <savePath>/events.
type EventAnalyzer struct {
	events   []EventSpec
	savePath string
	exp      string
	counts   map[string]int
}

var _ core.Analyzer = &EventAnalyzer{}

func NewEventAnalyzer(savePath string, events ...EventSpec) *EventAnalyzer {
	a := &EventAnalyzer{
		events: events,
		counts: make(map[string]int),
	}
	if savePath != "" {
		a.savePath = path.Join(savePath, "events")
		reportErr("creating "+a.savePath, os.MkdirAll(a.savePath, 0755))
	}
	return a
}

func (a *EventAnalyzer) Analyze(rec *core.EpisodeRecord) {
	for _, event := range a.events {
		if !event.Check(rec) {
			continue
		}
		a.counts[event.Name]++
		if a.savePath == "" {
			continue
		}
		fileName := fmt.Sprintf("%d_%s_%d.txt", rec.Run, event.Name, rec.Episode)
		if a.exp != "" {
			fileName = fmt.Sprintf("%d_%s_%s_%d.txt", rec.Run, a.exp, event.Name, rec.Episode)
		}
		p := path.Join(a.savePath, fileName)
		reportErr("writing "+p, os.WriteFile(p, []byte(traceToString(rec)), 0644))
	}
}

// DataSet returns the number of matching episodes per event.
func (a *EventAnalyzer) DataSet() core.DataSet {
	out := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

func (a *EventAnalyzer) Reset() {
	a.counts = make(map[string]int)
}

type EventAnalyzerConstructor struct {
	SavePath string
	Events   []EventSpec
}

var _ core.AnalyzerConstructor = &EventAnalyzerConstructor{}

func NewEventAnalyzerConstructor(savePath string, events ...EventSpec) *EventAnalyzerConstructor {
	return &EventAnalyzerConstructor{
		SavePath: savePath,
		Events:   events,
	}
}

func (c *EventAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewEventAnalyzer(c.SavePath, c.Events...)
	a.exp = exp
	return a
}
