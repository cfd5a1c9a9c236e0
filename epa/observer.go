package epa

import (
	"context"
	"log/slog"
	"slices"
)

// Trace describes the quantities fixed for a whole sampling call.
type Trace struct {
	Permutation []int   // allocation order
	D2          float64 // average similarity of cyclically adjacent items
}

// Step describes one allocation.
type Step struct {
	Index       int       // position in the permutation
	Item        int       // item being placed
	JumpDensity float64   // d2 over the similarity to the previous item
	Occupied    int       // clusters occupied before this step
	Kt          float64   // scale applied to existing-cluster weights
	Candidates  []int     // labels offered, the last one opens a new cluster
	Weights     []float64 // weight of each candidate
	Label       int       // label the item was allocated to
	NewCluster  bool
}

// Observer receives the sampler's intermediate quantities. Methods are
// called synchronously from Sample.
type Observer interface {
	OnStart(Trace)
	OnStep(Step)
}

// Recorder is an Observer that keeps everything it is shown.
type Recorder struct {
	Trace Trace
	Steps []Step
}

// OnStart implements Observer.
func (r *Recorder) OnStart(t Trace) {
	r.Trace = t
	r.Steps = r.Steps[:0]
}

// OnStep implements Observer.
func (r *Recorder) OnStep(s Step) {
	r.Steps = append(r.Steps, s)
}

// Occupied returns the number of occupied clusters after each step.
func (r *Recorder) Occupied() []int {
	out := make([]int, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Occupied
		if s.NewCluster {
			out[i]++
		}
	}
	return out
}

type logObserver struct {
	logger *slog.Logger
}

// LogObserver returns an Observer that writes the trace to logger at debug level.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &logObserver{logger: logger}
}

func (l *logObserver) OnStart(t Trace) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "epa sample start",
		slog.Any("permutation", slices.Clone(t.Permutation)),
		slog.Float64("d2", t.D2),
	)
}

func (l *logObserver) OnStep(s Step) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "epa step",
		slog.Int("index", s.Index),
		slog.Int("item", s.Item),
		slog.Float64("jump_density", s.JumpDensity),
		slog.Int("occupied", s.Occupied),
		slog.Float64("kt", s.Kt),
		slog.Int("label", s.Label),
		slog.Bool("new_cluster", s.NewCluster),
	)
}
