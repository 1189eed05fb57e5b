package engine

import "github.com/jakechorley/shift-rota/pkg/core/model"

// Scorer calculates the soft score of a constraint-valid candidate.
// Score has no side effects and depends only on its inputs.
type Scorer struct {
	Weights Weights
}

// Score returns the sum of all preference terms for the candidate
func (s Scorer) Score(c *Candidate) int {
	w := s.Weights
	score := 0

	if c.Request == model.RequestWork {
		score += w.RequestedWork
	}

	if rank := c.Settings.RankOf(c.Shift.Name); rank >= 0 {
		score += (len(c.Settings.ShiftRanking) - rank) * w.RankStep
	}

	score += (c.Settings.TargetShifts - c.State.TotalAssigned) * w.TargetPull

	if c.State.BlockShiftID != "" && c.State.BlockShiftID == c.Shift.ID {
		if c.State.BlockLength < c.Settings.PreferredBlockLength {
			score += w.BlockContinue
		} else {
			score += w.BlockExceeded
		}
	}

	if c.State.lastWasNight() && !c.Shift.IsNight() {
		if gap, _ := c.State.GapDays(c.Date); gap <= w.MarginalRestDays {
			score += w.MarginalRest
		}
	}

	if c.State.DaysOff > 0 && c.State.DaysOff < c.Settings.MinDaysOff {
		score += w.InsufficientRest
	}

	return score
}
