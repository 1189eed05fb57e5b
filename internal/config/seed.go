package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// Seed is a site definition loaded by `seed <file.yaml>`
type Seed struct {
	Site       SiteSeed       `yaml:"site"`
	Categories []CategorySeed `yaml:"categories" validate:"dive"`
	Shifts     []ShiftSeed    `yaml:"shifts" validate:"required,min=1,dive"`
	Workers    []WorkerSeed   `yaml:"workers" validate:"dive"`
	Defaults   *SettingsSeed  `yaml:"defaults,omitempty"`
	Requests   []RequestSeed  `yaml:"requests" validate:"dive"`
	Locked     []LockedSeed   `yaml:"locked" validate:"dive"`
}

type SiteSeed struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

type CategorySeed struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	Priority int    `yaml:"priority"`
}

type ShiftSeed struct {
	ID            string `yaml:"id" validate:"required"`
	Name          string `yaml:"name" validate:"required"`
	Start         string `yaml:"start" validate:"required"`
	End           string `yaml:"end" validate:"required"`
	RequiredStaff int    `yaml:"requiredStaff" validate:"min=0"`
	// ActiveDays is an RRULE such as FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR. Empty means every day.
	ActiveDays string `yaml:"activeDays,omitempty"`
}

type WorkerSeed struct {
	ID       string        `yaml:"id" validate:"required"`
	Name     string        `yaml:"name" validate:"required"`
	Category string        `yaml:"category,omitempty"`
	Settings *SettingsSeed `yaml:"settings,omitempty"`
}

// SettingsSeed mirrors model.SettingsOverride; unset fields fall back to the defaults
type SettingsSeed struct {
	MaxConsecutive       *int     `yaml:"maxConsecutive,omitempty" validate:"omitempty,min=1"`
	MinDaysOff           *int     `yaml:"minDaysOff,omitempty" validate:"omitempty,min=0"`
	NightPreference      *float64 `yaml:"nightPreference,omitempty" validate:"omitempty,gte=0"`
	TargetShifts         *int     `yaml:"targetShifts,omitempty" validate:"omitempty,min=0"`
	TargetVariance       *int     `yaml:"targetVariance,omitempty" validate:"omitempty,min=0"`
	PreferredBlockLength *int     `yaml:"preferredBlockLength,omitempty" validate:"omitempty,min=1"`
	ShiftRanking         []string `yaml:"shiftRanking,omitempty" validate:"dive,required"`
	BlockedDays          []int    `yaml:"blockedDays,omitempty" validate:"dive,min=0,max=6"`
	BlockedShifts        []string `yaml:"blockedShifts,omitempty" validate:"dive,required"`
}

type RequestSeed struct {
	Worker string `yaml:"worker" validate:"required"`
	Date   string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Type   string `yaml:"type" validate:"required,oneof=work off"`
}

type LockedSeed struct {
	Worker string `yaml:"worker" validate:"required"`
	Date   string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Shift  string `yaml:"shift" validate:"required"`
}

// LoadSeed loads and validates a site seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := ValidateSeed(&seed); err != nil {
		return nil, err
	}

	return &seed, nil
}

// ValidateSeed checks field rules, shift times and RRULEs, and that every reference resolves
func ValidateSeed(seed *Seed) error {
	if err := validate.Struct(seed); err != nil {
		return fmt.Errorf("seed validation failed: %w", err)
	}

	categories := make(map[string]bool)
	for _, c := range seed.Categories {
		categories[c.ID] = true
	}

	shifts := make(map[string]bool)
	for _, s := range seed.Shifts {
		if shifts[s.ID] {
			return fmt.Errorf("seed validation failed: duplicate shift %s", s.ID)
		}
		shifts[s.ID] = true
		if _, err := s.Shift(seed.Site.ID); err != nil {
			return fmt.Errorf("seed validation failed: %w", err)
		}
	}

	workers := make(map[string]bool)
	for _, w := range seed.Workers {
		if workers[w.ID] {
			return fmt.Errorf("seed validation failed: duplicate worker %s", w.ID)
		}
		workers[w.ID] = true
		if w.Category != "" && !categories[w.Category] {
			return fmt.Errorf("seed validation failed: worker %s has unknown category %s", w.ID, w.Category)
		}
		if w.Settings != nil {
			for _, name := range w.Settings.BlockedShifts {
				if !shifts[name] {
					return fmt.Errorf("seed validation failed: worker %s blocks unknown shift %s", w.ID, name)
				}
			}
		}
	}

	for _, r := range seed.Requests {
		if !workers[r.Worker] {
			return fmt.Errorf("seed validation failed: request for unknown worker %s", r.Worker)
		}
	}
	for _, l := range seed.Locked {
		if !workers[l.Worker] {
			return fmt.Errorf("seed validation failed: locked assignment for unknown worker %s", l.Worker)
		}
		if !shifts[l.Shift] {
			return fmt.Errorf("seed validation failed: locked assignment for unknown shift %s", l.Shift)
		}
	}

	return nil
}

// Shift converts the seed entry to a model shift for the site
func (s ShiftSeed) Shift(siteID string) (model.Shift, error) {
	start, err := model.ParseTimeOfDay(s.Start)
	if err != nil {
		return model.Shift{}, fmt.Errorf("shift %s: %w", s.ID, err)
	}
	end, err := model.ParseTimeOfDay(s.End)
	if err != nil {
		return model.Shift{}, fmt.Errorf("shift %s: %w", s.ID, err)
	}

	activeDays := model.AllWeekdays
	if s.ActiveDays != "" {
		if activeDays, err = model.WeekdayMaskFromRRule(s.ActiveDays); err != nil {
			return model.Shift{}, fmt.Errorf("shift %s: %w", s.ID, err)
		}
	}

	return model.Shift{
		ID:            s.ID,
		SiteID:        siteID,
		Name:          s.Name,
		Start:         start,
		End:           end,
		RequiredStaff: s.RequiredStaff,
		ActiveDays:    activeDays,
	}, nil
}

// Override converts the seed settings to a model override
func (s *SettingsSeed) Override() model.SettingsOverride {
	if s == nil {
		return model.SettingsOverride{}
	}

	days := make([]time.Weekday, len(s.BlockedDays))
	for i, d := range s.BlockedDays {
		days[i] = time.Weekday(d)
	}

	return model.SettingsOverride{
		MaxConsecutive:       s.MaxConsecutive,
		MinDaysOff:           s.MinDaysOff,
		NightPreference:      s.NightPreference,
		TargetShifts:         s.TargetShifts,
		TargetVariance:       s.TargetVariance,
		PreferredBlockLength: s.PreferredBlockLength,
		ShiftRanking:         s.ShiftRanking,
		Availability: model.Availability{
			BlockedDays:   model.NewWeekdayMask(days...),
			BlockedShifts: s.BlockedShifts,
		},
	}
}
