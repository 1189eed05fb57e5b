package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

func TestDecodeAvailability(t *testing.T) {
	a, err := DecodeAvailability([]byte(`{"blockedDays":[0,6],"blockedShifts":["night"]}`))
	require.NoError(t, err)
	assert.True(t, a.BlocksDay(time.Sunday))
	assert.True(t, a.BlocksDay(time.Saturday))
	assert.False(t, a.BlocksDay(time.Monday))
	assert.True(t, a.BlocksShift("night"))

	empty, err := DecodeAvailability(nil)
	require.NoError(t, err)
	assert.Equal(t, model.Availability{}, empty)

	_, err = DecodeAvailability([]byte(`{"blockedDays":[7]}`))
	assert.Error(t, err)

	_, err = DecodeAvailability([]byte(`{"blockedDays":"mon"}`))
	assert.Error(t, err)
}

func TestEncodeAvailability_RoundTrips(t *testing.T) {
	in := model.Availability{
		BlockedDays:   model.NewWeekdayMask(time.Wednesday, time.Friday),
		BlockedShifts: []string{"late"},
	}
	raw, err := EncodeAvailability(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"blockedDays":[3,5],"blockedShifts":["late"]}`, string(raw))

	out, err := DecodeAvailability(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeShiftRanking(t *testing.T) {
	ranking, err := DecodeShiftRanking([]byte(`["Night","Day"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Night", "Day"}, ranking)

	_, err = DecodeShiftRanking([]byte(`["Night",""]`))
	assert.Error(t, err)

	_, err = DecodeShiftRanking([]byte(`{"a":1}`))
	assert.Error(t, err)
}

func TestDecodeGlobalSettings(t *testing.T) {
	o, err := DecodeGlobalSettings(map[string]string{
		KeyMaxConsecutive:  "4",
		KeyNightPreference: "0.5",
		"unrelated_key":    "x",
	})
	require.NoError(t, err)
	require.NotNil(t, o.MaxConsecutive)
	assert.Equal(t, 4, *o.MaxConsecutive)
	require.NotNil(t, o.NightPreference)
	assert.Equal(t, 0.5, *o.NightPreference)
	assert.Nil(t, o.MinDaysOff)

	resolved := o.Apply(model.DefaultWorkerSettings())
	assert.Equal(t, 4, resolved.MaxConsecutive)
	assert.Equal(t, 2, resolved.MinDaysOff)

	_, err = DecodeGlobalSettings(map[string]string{KeyMinDaysOff: "two"})
	assert.Error(t, err)

	_, err = DecodeGlobalSettings(map[string]string{KeyMaxConsecutive: "0"})
	assert.Error(t, err)
}

func TestEncodeGlobalSettings(t *testing.T) {
	four, half := 4, 0.5
	values := EncodeGlobalSettings(model.SettingsOverride{MaxConsecutive: &four, NightPreference: &half})
	assert.Equal(t, map[string]string{KeyMaxConsecutive: "4", KeyNightPreference: "0.5"}, values)
}
