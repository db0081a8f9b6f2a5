// Package color maps study subjects to remote calendar color ids.
package color

import (
	"strings"

	"github.com/JatheeshaMirihana/Spaced-Repetition/internal/model"
)

// Well-known Google Calendar palette entries used by the defaults.
const (
	Lavender  model.ColorID = "1"
	Tangerine model.ColorID = "6"
	Peacock   model.ColorID = "7"
	Graphite  model.ColorID = "8"
	Basil     model.ColorID = "10"
)

// Policy is a pure subject-to-color lookup plus the fixed color applied to
// completed events. Subject matching is case-insensitive.
type Policy struct {
	subjects map[string]model.ColorID
	fallback model.ColorID
	done     model.ColorID
}

// NewPolicy builds a policy from a subject map. Keys are lowercased; aliases
// for the same subject are just extra keys.
func NewPolicy(subjects map[string]model.ColorID, fallback, done model.ColorID) Policy {
	m := make(map[string]model.ColorID, len(subjects))
	for k, v := range subjects {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return Policy{subjects: m, fallback: fallback, done: done}
}

// DefaultPolicy returns the built-in mapping: physics gets Peacock,
// chemistry Tangerine, combined maths Basil, anything else Lavender.
// Completed events turn Graphite.
func DefaultPolicy() Policy {
	return NewPolicy(map[string]model.ColorID{
		"physics":        Peacock,
		"p6":             Peacock,
		"chemistry":      Tangerine,
		"chem":           Tangerine,
		"combined maths": Basil,
		"c.m.":           Basil,
	}, Lavender, Graphite)
}

// ColorFor returns the color for a subject, or the fallback for unknown ones.
func (p Policy) ColorFor(subject string) model.ColorID {
	if c, ok := p.subjects[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return c
	}
	return p.fallback
}

// Done returns the color applied to completed events.
func (p Policy) Done() model.ColorID { return p.done }

// Fallback returns the color for subjects with no mapping.
func (p Policy) Fallback() model.ColorID { return p.fallback }
