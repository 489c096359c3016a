// Package model defines the typed payloads returned by the OpenClimate API.
// Optional fields are pointers so that absent values stay absent through
// the table projection instead of turning into zeros.
package model

// Overview is the full per-actor record returned by GET /actor/{id}.
type Overview struct {
	ActorID  string `json:"actor_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPartOf string `json:"is_part_of,omitempty"`

	// Emissions maps a datasource id to the dataset it published.
	Emissions  map[string]EmissionsDataset `json:"emissions,omitempty"`
	Population []PopulationEntry           `json:"population,omitempty"`
	GDP        []GDPEntry                  `json:"gdp,omitempty"`
	Targets    []Target                    `json:"targets,omitempty"`

	invalid map[Section]error
}

// Section names one sub-part of an overview.
type Section string

const (
	SectionEmissions  Section = "emissions"
	SectionPopulation Section = "population"
	SectionGDP        Section = "gdp"
	SectionTargets    Section = "targets"
)

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionEmissions, SectionPopulation, SectionGDP, SectionTargets:
		return true
	}
	return false
}

// HasSection reports whether the section is present, decoded and non-empty.
func (o *Overview) HasSection(s Section) bool {
	if o == nil || o.invalid[s] != nil {
		return false
	}
	switch s {
	case SectionEmissions:
		return len(o.Emissions) > 0
	case SectionPopulation:
		return len(o.Population) > 0
	case SectionGDP:
		return len(o.GDP) > 0
	case SectionTargets:
		return len(o.Targets) > 0
	}
	return false
}

// EmissionsDataset is one datasource's emissions series for an actor.
type EmissionsDataset struct {
	Name      string            `json:"name,omitempty"`
	Publisher string            `json:"publisher,omitempty"`
	Published string            `json:"published,omitempty"`
	URL       string            `json:"URL,omitempty"`
	Data      []EmissionsRecord `json:"data"`
}

// EmissionsRecord is a yearly emissions value.
type EmissionsRecord struct {
	EmissionsID    string   `json:"emissions_id"`
	Year           *int     `json:"year,omitempty"`
	TotalEmissions *float64 `json:"total_emissions,omitempty"`
	Tags           []Tag    `json:"tags,omitempty"`
}

// Tag labels an emissions record.
type Tag struct {
	TagID   string `json:"tag_id"`
	TagName string `json:"tag_name,omitempty"`
}

// Datasource describes where a data series came from.
type Datasource struct {
	Name      string `json:"name,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Published string `json:"published,omitempty"`
	URL       string `json:"URL,omitempty"`
}

// Record returns the datasource as a nested record for table flattening.
// Empty fields are left out so that they surface as missing, not "".
func (d *Datasource) Record() map[string]any {
	if d == nil {
		return nil
	}
	rec := make(map[string]any, 4)
	putString(rec, "name", d.Name)
	putString(rec, "publisher", d.Publisher)
	putString(rec, "published", d.Published)
	putString(rec, "URL", d.URL)
	return rec
}

// PopulationEntry is a yearly population value.
type PopulationEntry struct {
	Year         *int        `json:"year,omitempty"`
	Population   *float64    `json:"population,omitempty"`
	DatasourceID string      `json:"datasource_id,omitempty"`
	Datasource   *Datasource `json:"datasource,omitempty"`
}

// GDPEntry is a yearly GDP value.
type GDPEntry struct {
	Year         *int        `json:"year,omitempty"`
	GDP          *float64    `json:"gdp,omitempty"`
	DatasourceID string      `json:"datasource_id,omitempty"`
	Datasource   *Datasource `json:"datasource,omitempty"`
}

// Initiative is the pledge campaign a target belongs to.
type Initiative struct {
	InitiativeID string `json:"initiative_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"URL,omitempty"`
}

// Record returns the initiative as a nested record for table flattening.
func (i *Initiative) Record() map[string]any {
	if i == nil {
		return nil
	}
	rec := make(map[string]any, 4)
	putString(rec, "initiative_id", i.InitiativeID)
	putString(rec, "name", i.Name)
	putString(rec, "description", i.Description)
	putString(rec, "URL", i.URL)
	return rec
}

// Target is an emissions reduction target.
type Target struct {
	TargetID      string      `json:"target_id,omitempty"`
	TargetType    string      `json:"target_type,omitempty"`
	BaselineYear  *int        `json:"baseline_year,omitempty"`
	BaselineValue *float64    `json:"baseline_value,omitempty"`
	TargetYear    *int        `json:"target_year,omitempty"`
	TargetValue   *float64    `json:"target_value,omitempty"`
	TargetUnit    string      `json:"target_unit,omitempty"`
	DatasourceID  string      `json:"datasource_id,omitempty"`
	Datasource    *Datasource `json:"datasource,omitempty"`
	Initiative    *Initiative `json:"initiative,omitempty"`
}

func putString(rec map[string]any, key, value string) {
	if value != "" {
		rec[key] = value
	}
}
