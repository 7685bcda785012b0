package voice

import "expvar"

// Metrics holds pipeline performance counters. Values are expvar types so a
// debug handler can expose them without extra plumbing; instances are not
// globally registered, which keeps tests isolated.
type Metrics struct {
	TurnsStarted      *expvar.Int
	TurnsCompleted    *expvar.Int
	TurnsCancelled    *expvar.Int
	TurnErrors        *expvar.Int
	Interruptions     *expvar.Int
	ChunksEmitted     *expvar.Int
	FirstAudioLatency *expvar.Float // milliseconds, most recent turn
	StageDurations    *expvar.Map   // milliseconds by stage name
	CompressionsRun   *expvar.Int
}

// NewMetrics creates an unregistered metrics set.
func NewMetrics() *Metrics {
	stages := &expvar.Map{}
	stages.Init()
	return &Metrics{
		TurnsStarted:      &expvar.Int{},
		TurnsCompleted:    &expvar.Int{},
		TurnsCancelled:    &expvar.Int{},
		TurnErrors:        &expvar.Int{},
		Interruptions:     &expvar.Int{},
		ChunksEmitted:     &expvar.Int{},
		FirstAudioLatency: &expvar.Float{},
		StageDurations:    stages,
		CompressionsRun:   &expvar.Int{},
	}
}

// recordStage accumulates milliseconds spent in a named pipeline stage.
func (m *Metrics) recordStage(stage string, ms int64) {
	if v := m.StageDurations.Get(stage); v != nil {
		v.(*expvar.Int).Add(ms)
		return
	}
	counter := &expvar.Int{}
	counter.Set(ms)
	m.StageDurations.Set(stage, counter)
}
