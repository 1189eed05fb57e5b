package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// Keys of the global_settings table
const (
	KeyMaxConsecutive       = "max_consecutive_shifts"
	KeyMinDaysOff           = "min_days_off"
	KeyNightPreference      = "night_preference"
	KeyTargetShifts         = "target_shifts"
	KeyTargetVariance       = "target_shifts_variance"
	KeyPreferredBlockLength = "preferred_block_size"
)

var validate = validator.New()

// availabilityDoc is the stored shape of a worker's availability rules
type availabilityDoc struct {
	BlockedDays   []int    `json:"blockedDays,omitempty" validate:"dive,min=0,max=6"`
	BlockedShifts []string `json:"blockedShifts,omitempty" validate:"dive,required"`
}

// DecodeAvailability parses stored availability JSON. Empty input means no restrictions.
func DecodeAvailability(raw []byte) (model.Availability, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.Availability{}, nil
	}

	var doc availabilityDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Availability{}, fmt.Errorf("failed to parse availability: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return model.Availability{}, fmt.Errorf("invalid availability: %w", err)
	}

	days := make([]time.Weekday, 0, len(doc.BlockedDays))
	for _, d := range doc.BlockedDays {
		days = append(days, time.Weekday(d))
	}
	return model.Availability{
		BlockedDays:   model.NewWeekdayMask(days...),
		BlockedShifts: doc.BlockedShifts,
	}, nil
}

// EncodeAvailability is the inverse of DecodeAvailability
func EncodeAvailability(a model.Availability) ([]byte, error) {
	doc := availabilityDoc{BlockedShifts: a.BlockedShifts}
	for _, d := range a.BlockedDays.Weekdays() {
		doc.BlockedDays = append(doc.BlockedDays, int(d))
	}
	return json.Marshal(doc)
}

// DecodeShiftRanking parses a stored JSON array of shift names
func DecodeShiftRanking(raw []byte) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var ranking []string
	if err := json.Unmarshal(raw, &ranking); err != nil {
		return nil, fmt.Errorf("failed to parse shift ranking: %w", err)
	}
	if err := validate.Var(ranking, "dive,required"); err != nil {
		return nil, fmt.Errorf("invalid shift ranking: %w", err)
	}
	return ranking, nil
}

// ValidateOverride checks every set field of a settings override
func ValidateOverride(o model.SettingsOverride) error {
	check := func(name string, v *int, min int) error {
		if v != nil && *v < min {
			return fmt.Errorf("%s must be at least %d, got %d", name, min, *v)
		}
		return nil
	}

	if err := check("max consecutive", o.MaxConsecutive, 1); err != nil {
		return err
	}
	if err := check("min days off", o.MinDaysOff, 0); err != nil {
		return err
	}
	if err := check("target shifts", o.TargetShifts, 0); err != nil {
		return err
	}
	if err := check("target variance", o.TargetVariance, 0); err != nil {
		return err
	}
	if err := check("preferred block length", o.PreferredBlockLength, 1); err != nil {
		return err
	}
	if o.NightPreference != nil && *o.NightPreference < 0 {
		return fmt.Errorf("night preference must not be negative, got %v", *o.NightPreference)
	}
	if err := validate.Var(o.ShiftRanking, "dive,required"); err != nil {
		return fmt.Errorf("invalid shift ranking: %w", err)
	}
	return nil
}

// DecodeGlobalSettings converts global_settings rows into a partial override.
// Unknown keys are ignored.
func DecodeGlobalSettings(values map[string]string) (*model.SettingsOverride, error) {
	var o model.SettingsOverride

	ints := map[string]**int{
		KeyMaxConsecutive:       &o.MaxConsecutive,
		KeyMinDaysOff:           &o.MinDaysOff,
		KeyTargetShifts:         &o.TargetShifts,
		KeyTargetVariance:       &o.TargetVariance,
		KeyPreferredBlockLength: &o.PreferredBlockLength,
	}
	for key, dst := range ints {
		raw, ok := values[key]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid global setting %s=%q: %w", key, raw, err)
		}
		*dst = &v
	}

	if raw, ok := values[KeyNightPreference]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid global setting %s=%q: %w", KeyNightPreference, raw, err)
		}
		o.NightPreference = &v
	}

	if err := ValidateOverride(o); err != nil {
		return nil, fmt.Errorf("invalid global settings: %w", err)
	}
	return &o, nil
}

// EncodeGlobalSettings converts the set fields of an override into global_settings rows
func EncodeGlobalSettings(o model.SettingsOverride) map[string]string {
	values := make(map[string]string)
	put := func(key string, v *int) {
		if v != nil {
			values[key] = strconv.Itoa(*v)
		}
	}
	put(KeyMaxConsecutive, o.MaxConsecutive)
	put(KeyMinDaysOff, o.MinDaysOff)
	put(KeyTargetShifts, o.TargetShifts)
	put(KeyTargetVariance, o.TargetVariance)
	put(KeyPreferredBlockLength, o.PreferredBlockLength)
	if o.NightPreference != nil {
		values[KeyNightPreference] = strconv.FormatFloat(*o.NightPreference, 'f', -1, 64)
	}
	return values
}
