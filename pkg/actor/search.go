package actor

import (
	"context"
	"net/url"

	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/table"
)

// SearchColumns is the projection applied to search results.
var SearchColumns = []string{
	"actor_id", "name", "type", "is_part_of", "datasource_id",
	"root_path_geo", "names", "identifiers",
}

// SearchParams selects actors. Exactly one of Query, Identifier or Name
// must be set; Namespace refines Identifier and Language refines Name.
type SearchParams struct {
	Query      string
	Identifier string
	Namespace  string
	Name       string
	Language   string
}

// Values validates p and builds the query string.
func (p SearchParams) Values() (url.Values, error) {
	set := 0
	for _, v := range []string{p.Query, p.Identifier, p.Name} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.InvalidArgument("exactly one of query, identifier or name must be set")
	}

	v := url.Values{}
	switch {
	case p.Query != "":
		v.Set("q", p.Query)
	case p.Identifier != "":
		v.Set("identifier", p.Identifier)
		if p.Namespace != "" {
			v.Set("namespace", p.Namespace)
		}
	default:
		v.Set("name", p.Name)
		if p.Language != "" {
			v.Set("language", p.Language)
		}
	}
	return v, nil
}

// Search queries the actor search endpoint. Parameters are validated before
// any request is made.
func (f *Fetcher) Search(ctx context.Context, p SearchParams) (*table.Table, error) {
	query, err := p.Values()
	if err != nil {
		return nil, err
	}

	rawURL := f.server + "/search/actor"
	var env envelope[[]map[string]any]
	if _, err := f.getJSON(ctx, rawURL, query, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, errors.New(errors.CodeNotFound, "search returned no data").
			WithContext("query", query.Encode())
	}

	return table.FromMaps(*env.Data).Select(SearchColumns...), nil
}
