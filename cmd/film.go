package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/omdbfilm/filter"
	"github.com/s0up4200/omdbfilm/omdb"
)

// titleCmd represents the title command
var titleCmd = &cobra.Command{
	Use:   "title <title...>",
	Short: "Look up a film by its exact title",
	Long:  `Fetch the details of the single film whose title matches exactly.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTitle,
}

// idCmd represents the id command
var idCmd = &cobra.Command{
	Use:   "id <imdb-id>",
	Short: "Look up a film by its IMDb ID",
	Long:  `Fetch the details of a film by its IMDb identifier, e.g. tt0126029.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runID,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <title...>",
	Short: "Search films by title",
	Long: `Search OMDb for films matching a title and fetch the details of every match.
Results keep the order OMDb returned them in and can be narrowed down with a
filter expression or a preset from the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to OMDb",
	Long:  `Test the connection to the OMDb API and verify the configured API key.`,
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

func init() {
	searchCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	searchCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode (structured or scrape)")
	searchCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "number of parallel detail lookups")
	searchCmd.Flags().BoolVarP(&summary, "summary", "s", false, "print one line per film")
}

func runTitle(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")
	logger.Info().Str("title", title).Msg("Looking up film")

	film, err := omdbClient.LookupByTitle(cmd.Context(), title)
	if err != nil {
		return describeError(err)
	}

	return printFilm(cmd.OutOrStdout(), outputFormat, film)
}

func runID(cmd *cobra.Command, args []string) error {
	logger.Info().Str("imdb_id", args[0]).Msg("Looking up film")

	film, err := omdbClient.LookupByID(cmd.Context(), args[0])
	if err != nil {
		return describeError(err)
	}

	return printFilm(cmd.OutOrStdout(), outputFormat, film)
}

func runSearch(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	f, presetName, err := selectFilter(filterManager, filterExpr, preset, cfg.Filter.Default)
	if err != nil {
		return err
	}

	event := logger.Info().Str("title", title)
	if f != nil {
		event = event.Str("filter", f.Expression())
	}
	if presetName != "" {
		event = event.Str("preset", presetName)
	}
	event.Msg("Searching films")

	films, err := omdbClient.SearchByTitle(cmd.Context(), title)
	if err != nil {
		return describeError(err)
	}

	total := len(films)
	switch {
	case presetName != "":
		films, err = filterManager.ApplyFilter(cmd.Context(), presetName, films)
	case f != nil:
		films, err = filter.Apply(cmd.Context(), f, films)
	}
	if err != nil {
		return err
	}
	if f != nil {
		logger.Debug().Int("total", total).Int("matched", len(films)).Msg("Filter applied")
	}

	return printFilms(cmd.OutOrStdout(), outputFormat, films, summary)
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to OMDb at %s...\n", cfg.OMDb.URL)

	if err := omdbClient.TestConnection(cmd.Context()); err != nil {
		return describeError(err)
	}

	fmt.Fprintln(out, "✓ Connection successful!")
	fmt.Fprintf(out, "- Search mode: %s\n", cfg.Search.Mode)
	fmt.Fprintf(out, "- Concurrency: %d\n", cfg.Search.Concurrency)

	if names := filterManager.ListFilters(); len(names) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range names {
			fmt.Fprintf(out, "  • %s\n", name)
		}
	}

	return nil
}

// selectFilter determines the filter to use and, when it comes from the
// config, the preset name it is registered under.
// Priority: command line filter > preset > default preset > none.
// Preset names are matched in lowercase, the way the config stores them.
func selectFilter(m *filter.Manager, expression, presetName, defaultPreset string) (filter.CompiledFilter, string, error) {
	if expression != "" {
		f, err := m.Compile(expression)
		if err != nil {
			return nil, "", fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, "", nil
	}

	name := strings.ToLower(presetName)
	if name == "" {
		name = defaultPreset
	}
	if name == "" {
		return nil, "", nil
	}

	f, ok := m.GetFilter(name)
	if !ok {
		return nil, "", fmt.Errorf("preset '%s' not found in config", name)
	}
	return f, name, nil
}

// describeError adds a hint for errors a user can act on
func describeError(err error) error {
	switch {
	case errors.Is(err, omdb.ErrUnauthorized):
		return fmt.Errorf("%w (check omdb.api_key or OMDB_API_KEY)", err)
	case errors.Is(err, omdb.ErrTimeout):
		return fmt.Errorf("%w (try raising omdb.timeout)", err)
	default:
		return err
	}
}
