package actor

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/table"
)

// PartTypes lists the administrative levels accepted by Parts.
var PartTypes = []string{"planet", "country", "adm1", "adm2", "city", "organization", "site"}

// Earth is the root actor of the administrative hierarchy.
const Earth = "EARTH"

// ValidPartType normalizes t and reports whether it is a known part type.
// The empty string is accepted and means "all types".
func ValidPartType(t string) (string, bool) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "", true
	}
	for _, p := range PartTypes {
		if p == t {
			return t, true
		}
	}
	return t, false
}

// Parts returns the actors contained in actorID, optionally narrowed to one
// part type, sorted by type then actor_id. An unknown actor yields a
// NotFound diagnostic and an empty table.
func (f *Fetcher) Parts(ctx context.Context, actorID, partType string) (*table.Table, error) {
	pt, ok := ValidPartType(partType)
	if !ok {
		return nil, errors.InvalidArgument("part type %q not in %v", pt, PartTypes)
	}

	var query url.Values
	if pt != "" {
		query = url.Values{"type": {pt}}
	}

	var env envelope[[]map[string]any]
	if _, err := f.getJSON(ctx, f.endpoint("actor", actorID, "parts"), query, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		f.sink.Emit(diag.NotFound("", actorID))
		return table.New("actor_id", "name", "type"), nil
	}

	return table.FromMaps(*env.Data).SortBy("type", "actor_id"), nil
}

// CountryFilter narrows CountryCodes by name.
type CountryFilter struct {
	// Like is matched against the country name. Empty matches everything.
	Like          string
	CaseSensitive bool
	// Regex treats Like as a regular expression instead of a substring.
	Regex bool
}

// CountryCodes lists the countries under EARTH as actor_id, name and type.
func (f *Fetcher) CountryCodes(ctx context.Context, filter CountryFilter) (*table.Table, error) {
	match, err := filter.matcher()
	if err != nil {
		return nil, err
	}

	parts, err := f.Parts(ctx, Earth, "country")
	if err != nil {
		return nil, err
	}

	out := parts.Select("actor_id", "name", "type")
	if match == nil {
		return out, nil
	}
	return out.Where(func(r table.Row) bool {
		name, _ := r["name"].(string)
		return match(name)
	}), nil
}

func (cf CountryFilter) matcher() (func(string) bool, error) {
	if cf.Like == "" {
		return nil, nil
	}

	if cf.Regex {
		expr := cf.Like
		if !cf.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.InvalidArgument("invalid name pattern %q: %v", cf.Like, err)
		}
		return re.MatchString, nil
	}

	if cf.CaseSensitive {
		return func(s string) bool { return strings.Contains(s, cf.Like) }, nil
	}
	like := strings.ToLower(cf.Like)
	return func(s string) bool { return strings.Contains(strings.ToLower(s), like) }, nil
}
