package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openearth/openclimate/pkg/actor"
	"github.com/openearth/openclimate/pkg/client"
	"github.com/openearth/openclimate/pkg/model"
	"github.com/openearth/openclimate/pkg/table"
	"github.com/openearth/openclimate/pkg/watch"
)

// Command flags
var (
	datasourceFlag    string
	actorFile         string
	partType          string
	countryLike       string
	countryCaseSens   bool
	countryRegex      bool
	searchQuery       string
	searchIdentifier  string
	searchNamespace   string
	searchName        string
	searchLanguage    string
	watchSection      string
	watchDebounceFlag time.Duration
)

var emissionsCmd = &cobra.Command{
	Use:   "emissions [actor-id...]",
	Short: "Yearly emissions per actor and datasource",
	Long: `Fetch emissions for each actor. Every row is tagged with the datasource
it came from; use --datasource to keep a single one.

Examples:
  openclimate emissions US CA
  openclimate emissions US --datasource "UNFCCC:GHG_ANNEX1:2019-11-08"
  openclimate emissions --file g7.txt --format csv`,
	RunE: sectionCommand("emissions", func(ctx context.Context, c *client.Client, ids []string) (*table.Table, error) {
		return c.Emissions(ctx, datasourceFlag, ids...)
	}),
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets [actor-id...]",
	Short: "Emissions datasources available per actor",
	RunE:  sectionCommand("datasets", byIDs((*client.Client).EmissionsDatasets)),
}

var populationCmd = &cobra.Command{
	Use:   "population [actor-id...]",
	Short: "Population per actor and year",
	RunE:  sectionCommand("population", byIDs((*client.Client).Population)),
}

var gdpCmd = &cobra.Command{
	Use:   "gdp [actor-id...]",
	Short: "GDP per actor and year",
	RunE:  sectionCommand("gdp", byIDs((*client.Client).GDP)),
}

var targetsCmd = &cobra.Command{
	Use:   "targets [actor-id...]",
	Short: "Emissions reduction targets per actor",
	RunE:  sectionCommand("targets", byIDs((*client.Client).Targets)),
}

var overviewCmd = &cobra.Command{
	Use:   "overview [actor-id...]",
	Short: "Print raw actor overviews as JSON",
	RunE:  runOverview,
}

var partsCmd = &cobra.Command{
	Use:   "parts <actor-id>",
	Short: "List the actors contained in an actor",
	Long: fmt.Sprintf(`List the actors one level below an actor, sorted by type and id.

Part types: %s

Examples:
  openclimate parts US --type adm1
  openclimate parts EARTH --type country`, strings.Join(actor.PartTypes, ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runParts,
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List country actor ids, optionally filtered by name",
	Long: `List every country known to OpenClimate.

Examples:
  openclimate countries
  openclimate countries --like united
  openclimate countries --like "^(United|Canada)" --regex`,
	Args: cobra.NoArgs,
	RunE: runCountries,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search actors by free text, identifier or name",
	Long: `Search for actors. Exactly one of --query, --identifier or --name is required.

Examples:
  openclimate search --query Minnesota
  openclimate search --identifier US-MN --namespace ISO-3166-2
  openclimate search --name "New York" --language en`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refetch a section whenever an actor list file changes",
	Long: `Watch an actor list file (one or more ids per line, '#' comments) and
rerun the section transform each time the ids change.

Examples:
  openclimate watch --file actors.txt --section population --format parquet -o ./data`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to ~/.openclimate/config.yaml",
	RunE:  runConfigSave,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config files that were loaded",
	RunE:  runConfigPath,
}

func init() {
	for _, cmd := range []*cobra.Command{emissionsCmd, datasetsCmd, populationCmd, gdpCmd, targetsCmd, overviewCmd} {
		cmd.Flags().StringVar(&actorFile, "file", "", "Read actor ids from a file")
	}
	emissionsCmd.Flags().StringVar(&datasourceFlag, "datasource", "", "Keep only this datasource id")

	partsCmd.Flags().StringVarP(&partType, "type", "t", "", "Part type to keep (empty = all)")

	countriesCmd.Flags().StringVar(&countryLike, "like", "", "Keep countries whose name matches")
	countriesCmd.Flags().BoolVar(&countryCaseSens, "case-sensitive", false, "Match --like case-sensitively")
	countriesCmd.Flags().BoolVar(&countryRegex, "regex", false, "Treat --like as a regular expression")

	searchCmd.Flags().StringVar(&searchQuery, "query", "", "Free-text query")
	searchCmd.Flags().StringVar(&searchIdentifier, "identifier", "", "Identifier value")
	searchCmd.Flags().StringVar(&searchNamespace, "namespace", "", "Identifier namespace")
	searchCmd.Flags().StringVar(&searchName, "name", "", "Actor name")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "Language of --name")
	searchCmd.MarkFlagsMutuallyExclusive("query", "identifier", "name")

	watchCmd.Flags().StringVar(&actorFile, "file", "", "Actor list file (required)")
	watchCmd.Flags().StringVar(&watchSection, "section", "emissions", "Section to fetch (emissions, population, gdp, targets)")
	watchCmd.Flags().DurationVar(&watchDebounceFlag, "debounce", 500*time.Millisecond, "Quiet period before rereading the file")
	watchCmd.MarkFlagRequired("file")

	configCmd.AddCommand(configShowCmd, configPathCmd, configSaveCmd)
}

type sectionFunc func(ctx context.Context, c *client.Client, ids []string) (*table.Table, error)

// byIDs adapts a variadic client method to a sectionFunc.
func byIDs(m func(*client.Client, context.Context, ...string) (*table.Table, error)) sectionFunc {
	return func(ctx context.Context, c *client.Client, ids []string) (*table.Table, error) {
		return m(c, ctx, ids...)
	}
}

// sectionCommand adapts a client call into a RunE that resolves ids, runs
// the call and emits the result.
func sectionCommand(name string, call sectionFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ids, err := resolveIDs(args, actorFile)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		s, err := newSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		t, err := call(ctx, s.client, ids)
		if err != nil {
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return emit(ctx, s.cfg, exportName(name, time.Now()), t)
	}
}

// resolveIDs merges positional ids with the ids listed in file.
func resolveIDs(args []string, file string) ([]string, error) {
	ids := append([]string(nil), args...)
	if file != "" {
		fromFile, err := watch.ReadActorList(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read actor list: %w", err)
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no actor ids given (pass ids as arguments or use --file)")
	}
	return ids, nil
}

func runOverview(cmd *cobra.Command, args []string) error {
	ids, err := resolveIDs(args, actorFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	overviews, err := s.client.Overviews(ctx, ids...)
	if err != nil {
		return err
	}

	out := make(map[string]*model.Overview, len(ids))
	for i, id := range ids {
		out[id] = overviews[i]
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runParts(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.client.Parts(ctx, args[0], partType)
	if err != nil {
		return err
	}
	return emit(ctx, s.cfg, exportName("parts_"+args[0], time.Now()), t)
}

func runCountries(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.client.CountryCodes(ctx, actor.CountryFilter{
		Like:          countryLike,
		CaseSensitive: countryCaseSens,
		Regex:         countryRegex,
	})
	if err != nil {
		return err
	}
	return emit(ctx, s.cfg, exportName("countries", time.Now()), t)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.client.Search(ctx, actor.SearchParams{
		Query:      searchQuery,
		Identifier: searchIdentifier,
		Namespace:  searchNamespace,
		Name:       searchName,
		Language:   searchLanguage,
	})
	if err != nil {
		return err
	}
	return emit(ctx, s.cfg, exportName("search", time.Now()), t)
}

func runWatch(cmd *cobra.Command, args []string) error {
	section := model.Section(strings.ToLower(watchSection))
	if !section.Valid() {
		return fmt.Errorf("unknown section %q", watchSection)
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := watch.NewWatcher(actorFile, watch.WithDebounce(watchDebounceFlag))
	if err != nil {
		return err
	}
	w.OnChange = func(ctx context.Context, ids []string) error {
		if len(ids) == 0 {
			return nil
		}
		fmt.Fprintf(os.Stderr, "%s: fetching %s for %d actors\n", time.Now().Format(time.TimeOnly), section, len(ids))
		t, err := s.client.Transformer().Run(ctx, section, ids...)
		if err != nil {
			return err
		}
		return emit(ctx, s.cfg, exportName(string(section), time.Now()), t)
	}
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch %s: %v\n", path, err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", w.Path())
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	m, err := loadManager(cmd)
	if err != nil {
		return err
	}
	out, err := m.Dump()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	m, err := loadManager(cmd)
	if err != nil {
		return err
	}
	paths := m.GetPaths()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No config files found; using defaults and environment.")
		return nil
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func runConfigSave(cmd *cobra.Command, args []string) error {
	m, err := loadManager(cmd)
	if err != nil {
		return err
	}
	if err := m.Get().Validate(); err != nil {
		return err
	}
	if err := m.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Saved ~/.openclimate/config.yaml")
	return nil
}
