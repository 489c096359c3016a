package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview_MistypedSectionIsIsolated(t *testing.T) {
	var o Overview
	err := json.Unmarshal([]byte(`{
  "actor_id": "CA", "name": "Canada", "type": "country",
  "population": [{"year": 2019, "population": 37589262}],
  "gdp": [{"year": "2019", "gdp": 1.7e12}],
  "targets": [{"target_value": "40"}]
}`), &o)
	require.NoError(t, err)

	assert.Equal(t, "CA", o.ActorID)
	assert.True(t, o.HasSection(SectionPopulation))
	assert.NoError(t, o.SectionErr(SectionPopulation))

	assert.False(t, o.HasSection(SectionGDP))
	assert.Nil(t, o.GDP)
	assert.ErrorContains(t, o.SectionErr(SectionGDP), "decode gdp")

	assert.False(t, o.HasSection(SectionTargets))
	assert.Nil(t, o.Targets)
	assert.Error(t, o.SectionErr(SectionTargets))

	assert.False(t, o.HasSection(SectionEmissions))
	assert.NoError(t, o.SectionErr(SectionEmissions))
}

func TestOverview_BadHeaderFails(t *testing.T) {
	var o Overview
	assert.Error(t, json.Unmarshal([]byte(`{"actor_id": 7}`), &o))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &o))
}

func TestOverview_NullSectionsAreAbsent(t *testing.T) {
	var o Overview
	require.NoError(t, json.Unmarshal([]byte(`{"actor_id": "US", "emissions": null, "targets": null}`), &o))
	assert.False(t, o.HasSection(SectionEmissions))
	assert.NoError(t, o.SectionErr(SectionEmissions))
	assert.NoError(t, o.SectionErr(SectionTargets))
}

func TestOverview_MarshalOmitsDecodeState(t *testing.T) {
	var o Overview
	require.NoError(t, json.Unmarshal([]byte(`{"actor_id": "CA", "targets": [{"target_value": "40"}]}`), &o))

	b, err := json.Marshal(&o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actor_id": "CA", "name": "", "type": ""}`, string(b))
}
