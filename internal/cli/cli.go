package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/natsites/nps-places/internal/config"
	"github.com/natsites/nps-places/internal/logger"
	"github.com/natsites/nps-places/internal/places"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig       string
	flagEnvFile      string
	flagCacheFile    string
	flagCacheBackend string
	flagAPIKey       string
	flagFormat       string
	flagSort         string
	flagVerbose      bool
	flagStats        bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nps-places",
		Short: "Browse national sites by state and find places nearby",
		Long: `A CLI tool to browse the national parks, monuments and historic sites
listed on nps.gov by state, and to look up points of interest near a site
through the MapQuest radius search API.

Every page and API response is cached in a local file keyed by URL, so
repeated lookups work offline. The MapQuest key is read from --api-key,
the MAPQUEST_API_KEY environment variable or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "Path to a YAML config file (default: ./nps-places.yaml if present)")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "Path to a .env file with MAPQUEST_API_KEY")
	flags.StringVar(&flagCacheFile, "cache-file", "", "Response cache location (overrides config)")
	flags.StringVar(&flagCacheBackend, "cache-backend", "", "Cache backend: json or sqlite (overrides config)")
	flags.StringVar(&flagAPIKey, "api-key", "", "MapQuest API key (overrides MAPQUEST_API_KEY)")
	flags.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging on stderr")
	flags.BoolVar(&flagStats, "stats", false, "Print cache and fetch metrics to stderr on exit")

	cmd.AddCommand(newStatesCmd(), newSitesCmd(), newNearbyCmd())

	return cmd
}

func newStatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "states",
		Short: "List the states and their nps.gov pages",
		Args:  cobra.NoArgs,
		RunE:  runStates,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func newSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites <state>",
		Short: "List the national sites of a state",
		Args:  cobra.ExactArgs(1),
		RunE:  runSites,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "page", "Sort order: page, name or category")
	return cmd
}

func newNearbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby <state> <number>",
		Short: "List places near a site, by its number in the state listing",
		Args:  cobra.ExactArgs(2),
		RunE:  runNearby,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig() (*config.Config, error) {
	config.LoadDotEnv(flagEnvFile)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagCacheFile != "" {
		cfg.Cache.File = flagCacheFile
	}
	if flagCacheBackend != "" {
		cfg.Cache.Backend = flagCacheBackend
	}
	if flagAPIKey != "" {
		cfg.Places.APIKey = flagAPIKey
	}
	if flagVerbose {
		cfg.Log.Level = string(logger.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// withApp loads the configuration, builds the app and closes it afterwards.
func withApp(fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Warn("closing cache", logger.Fields{"error": err.Error()})
		}
	}()

	return fn(a)
}

// runShell is the interactive session
func runShell(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		return NewShell(cmd.InOrStdin(), cmd.OutOrStdout(), a.scraper, a.places).Run()
	})
}

func runStates(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	return withApp(func(a *app) error {
		idx, err := a.scraper.BuildStateIndex()
		if err != nil {
			return fmt.Errorf("building state index: %w", err)
		}
		return WriteStates(cmd.OutOrStdout(), &StateListResult{States: idx, Names: idx.Names()}, format)
	})
}

func runSites(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}

	return withApp(func(a *app) error {
		result, err := fetchStateSites(a, args[0])
		if err != nil {
			return err
		}
		sortSites(result.Sites, order)
		return WriteSites(cmd.OutOrStdout(), result, format)
	})
}

func runNearby(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	return withApp(func(a *app) error {
		result, err := fetchStateSites(a, args[0])
		if err != nil {
			return err
		}

		n, ok := parseSelection(args[1], len(result.Sites))
		if !ok {
			return fmt.Errorf("invalid site number %q: %s has %d sites", args[1], titleCase(args[0]), len(result.Sites))
		}

		record := result.Sites[n-1]
		found, err := a.places.NearbyPlaces(record)
		if err != nil {
			return err
		}

		return WriteNearby(cmd.OutOrStdout(), &NearbyResult{Site: record, Places: found.SearchResults}, format)
	})
}

func fetchStateSites(a *app, state string) (*SiteListResult, error) {
	idx, err := a.scraper.BuildStateIndex()
	if err != nil {
		return nil, fmt.Errorf("building state index: %w", err)
	}

	stateURL, ok := idx.Lookup(state)
	if !ok {
		return nil, fmt.Errorf("unknown state: %q", state)
	}

	records, err := a.scraper.FetchSitesForState(stateURL)
	if err != nil {
		return nil, fmt.Errorf("fetching sites for %s: %w", state, err)
	}

	return &SiteListResult{
		State:     titleCase(state),
		URL:       stateURL,
		FetchedAt: time.Now().UTC(),
		Count:     len(records),
		Sites:     records,
	}, nil
}

// run executes the root command with the given arguments and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()

	if flagStats {
		if serr := logger.DefaultMetrics().WriteSnapshot(stderr); serr != nil {
			fmt.Fprintf(stderr, "Error writing stats: %v\n", serr)
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, places.ErrMissingAPIKey) {
			fmt.Fprintf(stderr, "Set %s, add it to .env, or pass --api-key.\n", config.EnvAPIKey)
		}
		return ExitError
	}
	return ExitSuccess
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
