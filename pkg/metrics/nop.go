package metrics

// NopMetrics discards every metric. Used in tests and by the CLI.
type NopMetrics struct{}

var _ Recorder = (*NopMetrics)(nil)

func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) ObserveGeneration(_ /* siteID */, _ /* outcome */ string, _ /* seconds */ float64) {
	// No-op
}

func (n *NopMetrics) RecordRuns(_ /* siteID */ string, _ /* runs */ int) {
	// No-op
}

func (n *NopMetrics) RecordConflicts(_ /* siteID */ string, _ /* unfilled */, _ /* forced */ int) {
	// No-op
}

func (n *NopMetrics) RecordScore(_ /* siteID */ string, _ /* score */ int) {
	// No-op
}

func (n *NopMetrics) IncrementCommit(_ /* result */ string) {
	// No-op
}
