package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/testing/fakeapi"
)

func TestParts_SortedByTypeThenID(t *testing.T) {
	tbl, err := newFetcher(fakeapi.Fixtures(), nil).Parts(context.Background(), "US", "")
	require.NoError(t, err)
	assert.Equal(t, []any{"US-CA", "US-MN", "US NYC"}, tbl.Column("actor_id"))
	assert.Equal(t, []any{"adm1", "adm1", "city"}, tbl.Column("type"))
}

func TestParts_TypeIsCaseInsensitive(t *testing.T) {
	tr := fakeapi.Fixtures()
	_, err := newFetcher(tr, nil).Parts(context.Background(), "EARTH", "Country")
	require.NoError(t, err)
	assert.Equal(t, []string{"/actor/EARTH/parts?type=country"}, tr.Requested())
}

func TestParts_InvalidTypeRejectedBeforeRequest(t *testing.T) {
	tr := fakeapi.Fixtures()
	_, err := newFetcher(tr, nil).Parts(context.Background(), "US", "moon")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Equal(t, 0, tr.Calls())
}

func TestParts_UnknownActor(t *testing.T) {
	sink := diag.NewCollector()
	tbl, err := newFetcher(fakeapi.Fixtures(), sink).Parts(context.Background(), "ZZ", "city")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 1, sink.Count(diag.KindNotFound))
}

func TestCountryCodes(t *testing.T) {
	tests := []struct {
		name   string
		filter CountryFilter
		want   []any
	}{
		{"all", CountryFilter{}, []any{"AE", "CA", "DE", "US"}},
		{"substring case-insensitive", CountryFilter{Like: "united"}, []any{"AE", "US"}},
		{"substring case-sensitive", CountryFilter{Like: "united", CaseSensitive: true}, nil},
		{"regex", CountryFilter{Like: "^(can|ger)", Regex: true}, []any{"CA", "DE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := newFetcher(fakeapi.Fixtures(), nil).CountryCodes(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, []string{"actor_id", "name", "type"}, tbl.Columns())
			if tt.want == nil {
				assert.Equal(t, 0, tbl.Len())
				return
			}
			assert.Equal(t, tt.want, tbl.Column("actor_id"))
		})
	}
}

func TestCountryCodes_BadPattern(t *testing.T) {
	tr := fakeapi.Fixtures()
	_, err := newFetcher(tr, nil).CountryCodes(context.Background(), CountryFilter{Like: "([", Regex: true})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Equal(t, 0, tr.Calls())
}
