package engine

// Weights is the score table used to rank valid candidates and compare runs.
// Negative values are penalties.
type Weights struct {
	// RequestedWork is added when the worker asked to work the date
	RequestedWork int `yaml:"requestedWork"`

	// RankStep is multiplied by (ranking length - rank index) when the shift is in the worker's ranking
	RankStep int `yaml:"rankStep"`

	// TargetPull is multiplied by (target shifts - shifts assigned so far)
	TargetPull int `yaml:"targetPull"`

	// BlockContinue is added when extending a same-shift block shorter than the preferred length
	BlockContinue int `yaml:"blockContinue"`

	// BlockExceeded is added when the same-shift block has already reached the preferred length
	BlockExceeded int `yaml:"blockExceeded"`

	// MarginalRest is added for a night to day transition within MarginalRestDays
	MarginalRest     int     `yaml:"marginalRest"`
	MarginalRestDays float64 `yaml:"marginalRestDays"`

	// InsufficientRest is added when the worker has rested but not for their minimum days off
	InsufficientRest int `yaml:"insufficientRest"`

	// ForcedAssignment is added to the run score for each forced placement
	ForcedAssignment int `yaml:"forcedAssignment"`

	// UnfilledSlot is added to the run score for each slot left empty
	UnfilledSlot int `yaml:"unfilledSlot"`
}

// DefaultWeights returns the built-in score table
func DefaultWeights() Weights {
	return Weights{
		RequestedWork:    1000,
		RankStep:         50,
		TargetPull:       10,
		BlockContinue:    200,
		BlockExceeded:    -100,
		MarginalRest:     -500,
		MarginalRestDays: 3,
		InsufficientRest: -2000,
		ForcedAssignment: -5000,
		UnfilledSlot:     -10000,
	}
}
