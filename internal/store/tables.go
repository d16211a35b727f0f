package store

import (
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// LoadTable builds the validated classification table of mode from the
// stored bindings and pinch rules.
func (s *Store) LoadTable(mode gesture.Mode) (*gesture.Table, error) {
	bindings, err := s.Bindings().List(string(mode))
	if err != nil {
		return nil, fmt.Errorf("load bindings: %w", err)
	}
	pinches, err := s.Pinches().List(string(mode))
	if err != nil {
		return nil, fmt.Errorf("load pinch rules: %w", err)
	}

	t := &gesture.Table{Mode: mode}
	for _, b := range bindings {
		f, err := gesture.ParseFingers(b.Pattern)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.ID, err)
		}
		t.Entries = append(t.Entries, gesture.Entry{Pattern: f, Label: gesture.Label(b.Label)})
	}
	for _, p := range pinches {
		mask, err := gesture.ParseFingers(p.RequireUp)
		if err != nil {
			return nil, fmt.Errorf("pinch rule %s: %w", p.ID, err)
		}
		t.Pinches = append(t.Pinches, gesture.PinchRule{
			A:           p.PointA,
			B:           p.PointB,
			MaxDistance: p.MaxDistance,
			Label:       gesture.Label(p.Label),
			RequireUp:   mask.Set(),
		})
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// SeedDefaults stores tables when no binding exists yet. It reports whether
// anything was written.
func (s *Store) SeedDefaults(tables map[gesture.Mode]*gesture.Table) (bool, error) {
	n, err := s.Bindings().Count()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	var bindings []*Binding
	var pinches []*PinchRule
	for _, mode := range gesture.Modes() {
		t, ok := tables[mode]
		if !ok {
			continue
		}
		for i, e := range t.Entries {
			bindings = append(bindings, &Binding{
				Mode:     string(mode),
				Pattern:  e.Pattern.String(),
				Label:    string(e.Label),
				Priority: i,
			})
		}
		for i, p := range t.Pinches {
			pinches = append(pinches, &PinchRule{
				Mode:        string(mode),
				PointA:      p.A,
				PointB:      p.B,
				MaxDistance: p.MaxDistance,
				Label:       string(p.Label),
				RequireUp:   gesture.Mask(p.RequireUp...).String(),
				Priority:    i,
			})
		}
	}

	if err := s.Bindings().Seed(bindings); err != nil {
		return false, fmt.Errorf("seed bindings: %w", err)
	}
	if err := s.Pinches().Seed(pinches); err != nil {
		return false, fmt.Errorf("seed pinch rules: %w", err)
	}
	return true, nil
}
