package model

import (
	"encoding/json"
	"fmt"
)

// overviewWire defers section decoding so that a type error in one section
// does not reject the whole overview.
type overviewWire struct {
	ActorID    string          `json:"actor_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	IsPartOf   string          `json:"is_part_of"`
	Emissions  json.RawMessage `json:"emissions"`
	Population json.RawMessage `json:"population"`
	GDP        json.RawMessage `json:"gdp"`
	Targets    json.RawMessage `json:"targets"`
}

// UnmarshalJSON decodes the actor header strictly and each section on its
// own. A section that does not decode is left empty and its error is kept
// for SectionErr.
func (o *Overview) UnmarshalJSON(b []byte) error {
	var w overviewWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*o = Overview{
		ActorID:  w.ActorID,
		Name:     w.Name,
		Type:     w.Type,
		IsPartOf: w.IsPartOf,
	}
	o.decodeSection(SectionEmissions, w.Emissions, &o.Emissions)
	o.decodeSection(SectionPopulation, w.Population, &o.Population)
	o.decodeSection(SectionGDP, w.GDP, &o.GDP)
	o.decodeSection(SectionTargets, w.Targets, &o.Targets)
	return nil
}

func (o *Overview) decodeSection(s Section, raw json.RawMessage, out any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if o.invalid == nil {
			o.invalid = make(map[Section]error, 1)
		}
		o.invalid[s] = fmt.Errorf("decode %s: %w", s, err)
		switch s {
		case SectionEmissions:
			o.Emissions = nil
		case SectionPopulation:
			o.Population = nil
		case SectionGDP:
			o.GDP = nil
		case SectionTargets:
			o.Targets = nil
		}
	}
}

// SectionErr returns the decode error of a section, or nil when the section
// decoded cleanly or was absent.
func (o *Overview) SectionErr(s Section) error {
	if o == nil {
		return nil
	}
	return o.invalid[s]
}
