package core

// EpisodeRecord is what an analyzer sees after every episode.
type EpisodeRecord struct {
	Name    string
	Run     int
	Episode int
	Trace   *Trace

	Reward  float64
	Steps   int
	Epsilon float64
	Outcome Outcome
	// Truncated is set when the episode hit RunConfig.MaxSteps.
	Truncated bool
}

type HistoryRecord struct {
	Episode int              `json:"episode"`
	Reward  float64          `json:"reward"`
	Steps   int              `json:"steps"`
	Epsilon float64          `json:"epsilon"`
	Outcome Outcome          `json:"outcome"`
	MaxQ    map[Cell]float64 `json:"max_q"`
}

type TrainingHistory struct {
	Records []HistoryRecord `json:"records"`
}

func NewTrainingHistory() *TrainingHistory {
	return &TrainingHistory{
		Records: make([]HistoryRecord, 0),
	}
}

func (h *TrainingHistory) Append(r HistoryRecord) {
	h.Records = append(h.Records, r)
}

func (h *TrainingHistory) Len() int {
	return len(h.Records)
}

func (h *TrainingHistory) Rewards() []float64 {
	out := make([]float64, len(h.Records))
	for i, r := range h.Records {
		out[i] = r.Reward
	}
	return out
}

func (h *TrainingHistory) Steps() []float64 {
	out := make([]float64, len(h.Records))
	for i, r := range h.Records {
		out[i] = float64(r.Steps)
	}
	return out
}

func (h *TrainingHistory) Epsilons() []float64 {
	out := make([]float64, len(h.Records))
	for i, r := range h.Records {
		out[i] = r.Epsilon
	}
	return out
}

// Last returns the most recent record, or false for an empty history.
func (h *TrainingHistory) Last() (HistoryRecord, bool) {
	if len(h.Records) == 0 {
		return HistoryRecord{}, false
	}
	return h.Records[len(h.Records)-1], true
}
