package metrics

// Recorder receives schedule generation metrics
type Recorder interface {
	// ObserveGeneration records one generate call and how it ended (committed, conflicts, dry_run, error)
	ObserveGeneration(siteID, outcome string, seconds float64)

	// RecordRuns records how many greedy runs a search evaluated
	RecordRuns(siteID string, runs int)

	// RecordConflicts records the unfilled and forced slots of the winning run
	RecordConflicts(siteID string, unfilled, forced int)

	// RecordScore records the aggregate score of the winning run
	RecordScore(siteID string, score int)

	// IncrementCommit counts commit attempts by result (success, failure)
	IncrementCommit(result string)
}

// Generation outcomes
const (
	OutcomeCommitted = "committed"
	OutcomeConflicts = "conflicts"
	OutcomeDryRun    = "dry_run"
	OutcomeError     = "error"
)
