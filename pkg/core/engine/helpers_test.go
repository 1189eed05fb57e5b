package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	dayShift = model.Shift{
		ID:            "day",
		Name:          "Day",
		Start:         model.MustParseTimeOfDay("08:00"),
		End:           model.MustParseTimeOfDay("16:00"),
		RequiredStaff: 1,
	}
	nightShift = model.Shift{
		ID:            "night",
		Name:          "Night",
		Start:         model.MustParseTimeOfDay("22:00"),
		End:           model.MustParseTimeOfDay("06:00"),
		RequiredStaff: 1,
	}
)

func workers(ids ...string) []model.Worker {
	result := make([]model.Worker, len(ids))
	for i, id := range ids {
		result[i] = model.Worker{ID: id, Name: id, CategoryPriority: model.DefaultCategoryPriority}
	}
	return result
}

func newTestInput(t *testing.T, cfg InputConfig) *Input {
	t.Helper()
	if cfg.Defaults.MaxConsecutive == 0 {
		cfg.Defaults = model.DefaultWorkerSettings()
	}
	in, err := NewInput(cfg)
	require.NoError(t, err)
	return in
}
