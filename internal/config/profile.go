package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/color"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/schedule"
)

// IntervalConfig is one review step in the profile file.
type IntervalConfig struct {
	OffsetDays int    `yaml:"offset_days"`
	Label      string `yaml:"label"`
}

// SubjectColorConfig maps a subject name (or alias) to a calendar color.
type SubjectColorConfig struct {
	Subject string `yaml:"subject"`
	ColorID string `yaml:"color_id"`
}

// Profile is the user-editable study profile: review cadence, subject
// colors and slot search behavior.
type Profile struct {
	Intervals []IntervalConfig `yaml:"intervals"`

	SubjectColors   []SubjectColorConfig `yaml:"subject_colors"`
	FallbackColorID string               `yaml:"fallback_color_id"`
	DoneColorID     string               `yaml:"done_color_id"`

	// DefaultDurationMinutes is the session length used when a request
	// does not specify one.
	DefaultDurationMinutes int `yaml:"default_duration_minutes"`

	SlotStepMinutes int `yaml:"slot_step_minutes"`
	SlotCap         int `yaml:"slot_cap"`

	// HorizonPolicy is "clamp" or "drop".
	HorizonPolicy string `yaml:"horizon_policy"`
}

// DefaultProfile returns an in-memory default profile.
func DefaultProfile() *Profile {
	var intervals []IntervalConfig
	for _, iv := range schedule.DefaultIntervals {
		intervals = append(intervals, IntervalConfig{OffsetDays: iv.OffsetDays, Label: iv.Label})
	}
	return &Profile{
		Intervals: intervals,
		SubjectColors: []SubjectColorConfig{
			{Subject: "physics", ColorID: string(color.Peacock)},
			{Subject: "p6", ColorID: string(color.Peacock)},
			{Subject: "chemistry", ColorID: string(color.Tangerine)},
			{Subject: "chem", ColorID: string(color.Tangerine)},
			{Subject: "combined maths", ColorID: string(color.Basil)},
			{Subject: "c.m.", ColorID: string(color.Basil)},
		},
		FallbackColorID:        string(color.Lavender),
		DoneColorID:            string(color.Graphite),
		DefaultDurationMinutes: 60,
		SlotStepMinutes:        15,
		SlotCap:                schedule.DefaultSlotCap,
		HorizonPolicy:          "clamp",
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled profiles still behave correctly.
func (p *Profile) Normalize() {
	def := DefaultProfile()
	if len(p.Intervals) == 0 {
		p.Intervals = def.Intervals
	}
	if len(p.SubjectColors) == 0 {
		p.SubjectColors = def.SubjectColors
	}
	if p.FallbackColorID == "" {
		p.FallbackColorID = def.FallbackColorID
	}
	if p.DoneColorID == "" {
		p.DoneColorID = def.DoneColorID
	}
	if p.DefaultDurationMinutes <= 0 {
		p.DefaultDurationMinutes = def.DefaultDurationMinutes
	}
	if p.SlotStepMinutes <= 0 {
		p.SlotStepMinutes = def.SlotStepMinutes
	}
	if p.SlotCap <= 0 {
		p.SlotCap = def.SlotCap
	}
	switch p.HorizonPolicy {
	case "clamp", "drop":
	default:
		p.HorizonPolicy = "clamp"
	}
}

// ReviewTable builds the validated review cadence from the profile.
func (p *Profile) ReviewTable() (schedule.ReviewTable, error) {
	intervals := make([]model.ReviewInterval, 0, len(p.Intervals))
	for _, iv := range p.Intervals {
		intervals = append(intervals, model.ReviewInterval{OffsetDays: iv.OffsetDays, Label: iv.Label})
	}
	return schedule.NewReviewTable(intervals)
}

// ColorPolicy builds the subject color policy from the profile.
func (p *Profile) ColorPolicy() color.Policy {
	subjects := make(map[string]model.ColorID, len(p.SubjectColors))
	for _, sc := range p.SubjectColors {
		subjects[sc.Subject] = model.ColorID(sc.ColorID)
	}
	return color.NewPolicy(subjects, model.ColorID(p.FallbackColorID), model.ColorID(p.DoneColorID))
}

// DefaultDuration returns the session length for requests without one.
func (p *Profile) DefaultDuration() time.Duration {
	return time.Duration(p.DefaultDurationMinutes) * time.Minute
}

// SlotStep returns the cursor advance used when a candidate slot is busy.
func (p *Profile) SlotStep() time.Duration {
	return time.Duration(p.SlotStepMinutes) * time.Minute
}

// Horizon returns the series horizon policy.
func (p *Profile) Horizon() schedule.HorizonPolicy {
	if p.HorizonPolicy == "drop" {
		return schedule.HorizonDrop
	}
	return schedule.HorizonClamp
}

// LoadProfile loads the study profile from the given YAML path. A missing
// file is first run: the default profile is written there and returned.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return nil, errors.New("profile path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p := DefaultProfile()
			if err := SaveProfile(path, p); err != nil {
				return p, err
			}
			return p, nil
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// SaveProfile writes the profile atomically with 0600 permissions.
func SaveProfile(path string, p *Profile) error {
	if path == "" {
		return errors.New("profile path is empty")
	}
	if p == nil {
		return errors.New("profile is nil")
	}

	p.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".scheduler-profile-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
