package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/zeu5/ladders-rl/core"
)

type TrajectoryDataset struct {
	Episode int          `json:"episode"`
	Outcome core.Outcome `json:"outcome"`
	Cells   []core.Cell  `json:"cells"`
}

// TrajectoryAnalyzer keeps the trajectory of the latest episode. With a save
// path it also writes every trace from thresholdEpisode on to
// <savePath>/traces.
type TrajectoryAnalyzer struct {
	savePath         string
	exp              string
	thresholdEpisode int

	last *TrajectoryDataset
}

var _ core.Analyzer = &TrajectoryAnalyzer{}

func NewTrajectoryAnalyzer(savePath string, threshold int) *TrajectoryAnalyzer {
	a := &TrajectoryAnalyzer{thresholdEpisode: threshold}
	if savePath != "" {
		a.savePath = path.Join(savePath, "traces")
		reportErr("creating "+a.savePath, os.MkdirAll(a.savePath, 0755))
	}
	return a
}

func (a *TrajectoryAnalyzer) Analyze(rec *core.EpisodeRecord) {
	a.last = &TrajectoryDataset{
		Episode: rec.Episode,
		Outcome: rec.Outcome,
		Cells:   rec.Trace.Cells(),
	}
	if a.savePath == "" || rec.Episode < a.thresholdEpisode {
		return
	}
	fileName := fmt.Sprintf("%d_trace_%d.txt", rec.Run, rec.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_trace_%d.txt", rec.Run, a.exp, rec.Episode)
	}
	p := path.Join(a.savePath, fileName)
	reportErr("writing "+p, os.WriteFile(p, []byte(traceToString(rec)), 0644))
}

func (a *TrajectoryAnalyzer) DataSet() core.DataSet {
	if a.last == nil {
		return nil
	}
	return &TrajectoryDataset{
		Episode: a.last.Episode,
		Outcome: a.last.Outcome,
		Cells:   append([]core.Cell(nil), a.last.Cells...),
	}
}

func (a *TrajectoryAnalyzer) Reset() {
	a.last = nil
}

func traceToString(rec *core.EpisodeRecord) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Episode %d, Outcome: %s, Steps: %d, Reward: %.2f, Epsilon: %.4f\n",
		rec.Episode, rec.Outcome, rec.Steps, rec.Reward, rec.Epsilon)
	if rec.Truncated {
		buf.WriteString("Truncated\n")
	}
	for i := 0; i < rec.Trace.Len(); i++ {
		step := rec.Trace.Step(i)
		fmt.Fprintf(buf, "Step %d: %d --%s--> %d (%.1f)\n", i, step.State, step.Action, step.NextState, step.Reward)
	}
	return buf.String()
}

type TrajectoryAnalyzerConstructor struct {
	SavePath         string
	ThresholdEpisode int
}

var _ core.AnalyzerConstructor = &TrajectoryAnalyzerConstructor{}

func NewTrajectoryAnalyzerConstructor(savePath string, thresholdEpisode int) *TrajectoryAnalyzerConstructor {
	return &TrajectoryAnalyzerConstructor{
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
	}
}

func (c *TrajectoryAnalyzerConstructor) NewAnalyzer(exp string, _ int) core.Analyzer {
	a := NewTrajectoryAnalyzer(c.SavePath, c.ThresholdEpisode)
	a.exp = exp
	return a
}
