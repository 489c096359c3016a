package fakeapi

// USOverview has all four sections and two emissions datasources.
const USOverview = `{
  "actor_id": "US",
  "name": "United States of America",
  "type": "country",
  "is_part_of": "EARTH",
  "emissions": {
    "UNFCCC:GHG_ANNEX1:2019-11-08": {
      "datasource_id": "UNFCCC:GHG_ANNEX1:2019-11-08",
      "name": "UNFCCC GHG emissions for Annex 1 countries",
      "publisher": "UNFCCC",
      "published": "2019-11-08",
      "URL": "https://di.unfccc.int/time_series",
      "data": [
        {"emissions_id": "UNFCCC:US:2018", "year": 2018, "total_emissions": 6676649000},
        {"emissions_id": "UNFCCC:US:2017", "year": 2017, "total_emissions": 6558345000}
      ]
    },
    "PRIMAP:10.5281/zenodo.7179775:v2.4": {
      "datasource_id": "PRIMAP:10.5281/zenodo.7179775:v2.4",
      "name": "PRIMAP-hist",
      "publisher": "PRIMAP",
      "published": "2022-10-17",
      "URL": "https://zenodo.org/record/7179775",
      "data": [
        {"emissions_id": "PRIMAP:US:2019", "year": 2019, "total_emissions": 6001000000}
      ]
    }
  },
  "population": [
    {"year": 2020, "population": 331501080, "datasource_id": "WorldBank:WDI:2022-09-16",
     "datasource": {"name": "World Development Indicators", "publisher": "WorldBank", "published": "2022-09-16", "URL": "https://datacatalog.worldbank.org/"}},
    {"year": 2019, "population": 328329953, "datasource_id": "WorldBank:WDI:2022-09-16",
     "datasource": {"name": "World Development Indicators", "publisher": "WorldBank", "published": "2022-09-16", "URL": "https://datacatalog.worldbank.org/"}}
  ],
  "gdp": [
    {"year": 2019, "gdp": 21380976119000, "datasource_id": "WorldBank:GDP:2022",
     "datasource": {"name": "GDP (current US$)", "publisher": "WorldBank", "published": "2022-07-01", "URL": "https://data.worldbank.org/"}}
  ],
  "targets": [
    {"target_id": "C2ES:canada_target_1", "target_type": "Absolute emission reduction",
     "baseline_year": 2005, "baseline_value": 6635000000, "target_year": 2030, "target_value": 50,
     "target_unit": "percent", "datasource_id": "C2ES:canada_ndc",
     "datasource": {"name": "NDC registry", "publisher": "UNFCCC", "published": "2021-04-22", "URL": "https://unfccc.int/NDCREG"},
     "initiative": {"initiative_id": "UNFCCC:NDC", "name": "Nationally Determined Contribution", "description": "Paris Agreement pledges", "URL": "https://unfccc.int/ndc"}},
    {"target_id": "US:net_zero", "target_type": "Net zero",
     "target_year": 2050, "target_value": 0, "target_unit": "tCO2e", "datasource_id": "NZT",
     "datasource": {"name": "Net Zero Tracker", "publisher": "NZT", "published": "2022-06-01", "URL": "https://zerotracker.net"}}
  ]
}`

// CAOverview has emissions and population but an empty gdp list and no
// targets.
const CAOverview = `{
  "actor_id": "CA",
  "name": "Canada",
  "type": "country",
  "is_part_of": "EARTH",
  "emissions": {
    "UNFCCC:GHG_ANNEX1:2019-11-08": {
      "datasource_id": "UNFCCC:GHG_ANNEX1:2019-11-08",
      "name": "UNFCCC GHG emissions for Annex 1 countries",
      "publisher": "UNFCCC",
      "published": "2019-11-08",
      "URL": "https://di.unfccc.int/time_series",
      "data": [
        {"emissions_id": "UNFCCC:CA:2018", "year": 2018, "total_emissions": 728485000},
        {"emissions_id": "UNFCCC:CA:2017", "year": 2017, "total_emissions": 715844000}
      ]
    }
  },
  "population": [
    {"year": 2019, "population": 37589262, "datasource_id": "WorldBank:WDI:2022-09-16",
     "datasource": {"name": "World Development Indicators", "publisher": "WorldBank", "published": "2022-09-16", "URL": "https://datacatalog.worldbank.org/"}}
  ],
  "gdp": []
}`

// EarthCountries is the parts listing of EARTH filtered to countries, in
// the unsorted order the API may return it.
const EarthCountries = `{"data": [
  {"actor_id": "US", "name": "United States of America", "type": "country", "is_part_of": "EARTH"},
  {"actor_id": "CA", "name": "Canada", "type": "country", "is_part_of": "EARTH"},
  {"actor_id": "DE", "name": "Germany", "type": "country", "is_part_of": "EARTH"},
  {"actor_id": "AE", "name": "United Arab Emirates", "type": "country", "is_part_of": "EARTH"}
]}`

// USParts is the unfiltered parts listing of US.
const USParts = `{"data": [
  {"actor_id": "US-MN", "name": "Minnesota", "type": "adm1", "is_part_of": "US"},
  {"actor_id": "US NYC", "name": "New York City", "type": "city", "is_part_of": "US-NY"},
  {"actor_id": "US-CA", "name": "California", "type": "adm1", "is_part_of": "US"}
]}`

// SearchMinnesota is a search response for q=Minnesota.
const SearchMinnesota = `{"data": [
  {"actor_id": "US-MN", "name": "Minnesota", "type": "adm1", "is_part_of": "US",
   "datasource_id": "ISO-3166-2", "root_path_geo": "EARTH/US/US-MN",
   "names": [{"name": "Minnesota", "language": "en"}],
   "identifiers": [{"identifier": "US-MN", "namespace": "ISO-3166-2"}],
   "has_data": true}
]}`

// Fixtures returns a fake serving US, CA, the EARTH country list, the US
// parts listing and a Minnesota search. Any other actor is unknown.
func Fixtures() *Transport {
	return New().
		Actor("US", USOverview).
		Actor("CA", CAOverview).
		Handle("/actor/EARTH/parts?type=country", Response{Body: EarthCountries}).
		Handle("/actor/US/parts", Response{Body: USParts}).
		Handle("/search/actor?q=Minnesota", Response{Body: SearchMinnesota})
}
