// Package climate turns actor overviews into analysis tables: emissions,
// population, GDP and targets.
//
// Every transformer follows the same pipeline: fetch the overviews, keep
// the actors that carry the section, build one table per actor sorted by the
// domain key, then stack the tables in actor order.
package climate

import (
	"context"
	"sort"

	"github.com/openearth/openclimate/pkg/actor"
	"github.com/openearth/openclimate/pkg/errors"
	"github.com/openearth/openclimate/pkg/model"
	"github.com/openearth/openclimate/pkg/table"
)

// Column sets of the produced tables.
var (
	EmissionsColumns = []string{"actor_id", "year", "total_emissions", "datasource_id"}

	DatasetColumns = []string{"actor_id", "datasource_id", "name", "publisher", "published", "URL"}

	PopulationColumns = []string{
		"actor_id", "year", "population", "datasource_id",
		"datasource_name", "datasource_published", "datasource_URL",
	}

	GDPColumns = []string{
		"actor_id", "year", "gdp", "datasource_id",
		"datasource_name", "datasource_published", "datasource_URL",
	}

	TargetColumns = []string{
		"actor_id", "target_type", "baseline_year", "baseline_value",
		"target_year", "target_value", "target_unit", "datasource_id",
		"datasource_name", "datasource_publisher", "datasource_published", "datasource_URL",
		"initiative_id", "initiative_name", "initiative_description", "initiative_URL",
	}
)

// Transformer runs the domain pipelines over a Fetcher.
type Transformer struct {
	fetcher *actor.Fetcher
}

// New creates a Transformer.
func New(f *actor.Fetcher) *Transformer {
	return &Transformer{fetcher: f}
}

// domain describes one section's table shape.
type domain struct {
	section model.Section
	sortKey string
	columns []string
	rename  map[string]string
	build   func(o *model.Overview) *table.Table
}

func (t *Transformer) run(ctx context.Context, d domain, ids []string) (*table.Table, error) {
	if len(ids) == 0 {
		return nil, errors.InvalidArgument("at least one actor id is required")
	}

	coll, err := t.fetcher.Overviews(ctx, ids...)
	if err != nil {
		return nil, err
	}

	kept := actor.FilterBySection(coll, d.section, t.fetcher.Sink())
	if len(kept) == 0 {
		// Every id was unknown: the NotFound diagnostics already say so.
		if coll.Present() == 0 {
			return table.New(d.columns...), nil
		}
		return nil, errors.EmptyResult(string(d.section))
	}

	perActor := make([]*table.Table, 0, len(kept))
	for _, o := range kept {
		tbl := d.build(o).Flatten()
		if d.rename != nil {
			tbl = tbl.Rename(d.rename)
		}
		if d.sortKey != "" {
			tbl = tbl.SortBy(d.sortKey)
		}
		perActor = append(perActor, tbl.Select(d.columns...))
	}

	out, err := table.Concat(perActor...)
	if err != nil {
		return nil, err
	}
	return out.Select(d.columns...), nil
}

// Run dispatches to the transformer for section.
func (t *Transformer) Run(ctx context.Context, section model.Section, ids ...string) (*table.Table, error) {
	switch section {
	case model.SectionEmissions:
		return t.Emissions(ctx, "", ids...)
	case model.SectionPopulation:
		return t.Population(ctx, ids...)
	case model.SectionGDP:
		return t.GDP(ctx, ids...)
	case model.SectionTargets:
		return t.Targets(ctx, ids...)
	}
	return nil, errors.InvalidArgument("unknown section %q", section)
}

// Emissions returns yearly emissions for every actor and datasource. A
// non-empty datasourceID keeps only that datasource's rows.
func (t *Transformer) Emissions(ctx context.Context, datasourceID string, ids ...string) (*table.Table, error) {
	out, err := t.run(ctx, domain{
		section: model.SectionEmissions,
		sortKey: "emissions_id",
		columns: EmissionsColumns,
		build:   emissionsRows,
	}, ids)
	if err != nil || datasourceID == "" {
		return out, err
	}
	return out.Where(func(r table.Row) bool {
		return r["datasource_id"] == datasourceID
	}), nil
}

// EmissionsDatasets lists the emissions datasources available per actor.
func (t *Transformer) EmissionsDatasets(ctx context.Context, ids ...string) (*table.Table, error) {
	return t.run(ctx, domain{
		section: model.SectionEmissions,
		sortKey: "datasource_id",
		columns: DatasetColumns,
		build:   datasetRows,
	}, ids)
}

// Population returns yearly population per actor.
func (t *Transformer) Population(ctx context.Context, ids ...string) (*table.Table, error) {
	return t.run(ctx, domain{
		section: model.SectionPopulation,
		sortKey: "year",
		columns: PopulationColumns,
		build:   populationRows,
	}, ids)
}

// GDP returns yearly GDP per actor.
func (t *Transformer) GDP(ctx context.Context, ids ...string) (*table.Table, error) {
	return t.run(ctx, domain{
		section: model.SectionGDP,
		sortKey: "year",
		columns: GDPColumns,
		build:   gdpRows,
	}, ids)
}

// Targets returns emissions reduction targets per actor.
func (t *Transformer) Targets(ctx context.Context, ids ...string) (*table.Table, error) {
	return t.run(ctx, domain{
		section: model.SectionTargets,
		sortKey: "target_year",
		columns: TargetColumns,
		rename:  map[string]string{"initiative_initiative_id": "initiative_id"},
		build:   targetRows,
	}, ids)
}

func emissionsRows(o *model.Overview) *table.Table {
	sources := make([]string, 0, len(o.Emissions))
	for id := range o.Emissions {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	tbl := table.New("emissions_id", "year", "total_emissions", "datasource_id", "actor_id")
	for _, src := range sources {
		for _, rec := range o.Emissions[src].Data {
			tbl.Append(table.Row{
				"emissions_id":    rec.EmissionsID,
				"year":            intValue(rec.Year),
				"total_emissions": floatValue(rec.TotalEmissions),
				"datasource_id":   src,
				"actor_id":        o.ActorID,
			})
		}
	}
	return tbl
}

func datasetRows(o *model.Overview) *table.Table {
	tbl := table.New(DatasetColumns...)
	for src, ds := range o.Emissions {
		row := table.Row{"actor_id": o.ActorID, "datasource_id": src}
		putString(row, "name", ds.Name)
		putString(row, "publisher", ds.Publisher)
		putString(row, "published", ds.Published)
		putString(row, "URL", ds.URL)
		tbl.Append(row)
	}
	return tbl
}

func populationRows(o *model.Overview) *table.Table {
	tbl := table.New("actor_id", "year", "population", "datasource_id", "datasource")
	for _, e := range o.Population {
		row := table.Row{
			"actor_id":   o.ActorID,
			"year":       intValue(e.Year),
			"population": floatValue(e.Population),
		}
		putString(row, "datasource_id", e.DatasourceID)
		putRecord(row, "datasource", e.Datasource.Record())
		tbl.Append(row)
	}
	return tbl
}

func gdpRows(o *model.Overview) *table.Table {
	tbl := table.New("actor_id", "year", "gdp", "datasource_id", "datasource")
	for _, e := range o.GDP {
		row := table.Row{
			"actor_id": o.ActorID,
			"year":     intValue(e.Year),
			"gdp":      floatValue(e.GDP),
		}
		putString(row, "datasource_id", e.DatasourceID)
		putRecord(row, "datasource", e.Datasource.Record())
		tbl.Append(row)
	}
	return tbl
}

func targetRows(o *model.Overview) *table.Table {
	tbl := table.New(
		"actor_id", "target_id", "target_type", "baseline_year", "baseline_value",
		"target_year", "target_value", "target_unit", "datasource_id",
		"datasource", "initiative",
	)
	for _, tg := range o.Targets {
		row := table.Row{
			"actor_id":       o.ActorID,
			"baseline_year":  intValue(tg.BaselineYear),
			"baseline_value": floatValue(tg.BaselineValue),
			"target_year":    intValue(tg.TargetYear),
			"target_value":   floatValue(tg.TargetValue),
		}
		putString(row, "target_id", tg.TargetID)
		putString(row, "target_type", tg.TargetType)
		putString(row, "target_unit", tg.TargetUnit)
		putString(row, "datasource_id", tg.DatasourceID)
		putRecord(row, "datasource", tg.Datasource.Record())
		putRecord(row, "initiative", tg.Initiative.Record())
		tbl.Append(row)
	}
	return tbl
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func putString(r table.Row, key, v string) {
	if v != "" {
		r[key] = v
	}
}

func putRecord(r table.Row, key string, rec map[string]any) {
	if rec != nil {
		r[key] = rec
	}
}
