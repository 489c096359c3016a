package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/testing/fakeapi"
)

func TestSearch_RequiresExactlyOneSelector(t *testing.T) {
	tests := []struct {
		name   string
		params SearchParams
	}{
		{"none", SearchParams{}},
		{"query and name", SearchParams{Query: "x", Name: "Minnesota"}},
		{"all three", SearchParams{Query: "x", Name: "y", Identifier: "z"}},
		{"refiner only", SearchParams{Language: "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fakeapi.Fixtures()
			_, err := newFetcher(tr, nil).Search(context.Background(), tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
			assert.Equal(t, 0, tr.Calls(), "no request before validation")
		})
	}
}

func TestSearchParams_Values(t *testing.T) {
	tests := []struct {
		params SearchParams
		want   string
	}{
		{SearchParams{Query: "Minnesota"}, "q=Minnesota"},
		{SearchParams{Identifier: "US", Namespace: "ISO-3166-1"}, "identifier=US&namespace=ISO-3166-1"},
		{SearchParams{Name: "Minnesota", Language: "en"}, "language=en&name=Minnesota"},
		{SearchParams{Name: "São Paulo"}, "name=S%C3%A3o+Paulo"},
		{SearchParams{Identifier: "US", Language: "en"}, "identifier=US"},
	}

	for _, tt := range tests {
		v, err := tt.params.Values()
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Encode())
	}
}

func TestSearch_ProjectsColumns(t *testing.T) {
	tbl, err := newFetcher(fakeapi.Fixtures(), nil).Search(context.Background(), SearchParams{Query: "Minnesota"})
	require.NoError(t, err)
	assert.Equal(t, SearchColumns, tbl.Columns())
	assert.False(t, tbl.HasColumn("has_data"))
	assert.Equal(t, "US-MN", tbl.Value(0, "actor_id"))
}

func TestSearch_MissingDataIsNotFound(t *testing.T) {
	_, err := newFetcher(fakeapi.Fixtures(), nil).Search(context.Background(), SearchParams{Name: "Atlantis"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
