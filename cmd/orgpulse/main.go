package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/robby/orgpulse/internal/auth"
	"github.com/robby/orgpulse/internal/collector"
	"github.com/robby/orgpulse/internal/config"
	"github.com/robby/orgpulse/internal/domain"
	"github.com/robby/orgpulse/internal/logging"
	"github.com/robby/orgpulse/internal/store"
	"github.com/robby/orgpulse/internal/tui"
)

var (
	// CLI flags
	configFlag         string
	orgFlag            string
	tokenFlag          string
	sinceFlag          int
	reposFlag          string
	includePrivateFlag bool
	rateDelayFlag      string
	maxReposFlag       int
	dbFlag             string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orgpulse",
		Short: "Terminal dashboard for GitHub organization contribution stats",
		Long: `orgpulse browses contribution snapshots scraped from GitHub organizations.

Each scrape is an immutable snapshot of commits, changed lines, and reviews
over a time window. The TUI aggregates a snapshot by organization, repository,
or contributor, with drill-down into any row.

Authentication (only needed to scrape):
  1. --token flag or GITHUB_TOKEN environment variable
  2. GitHub CLI: run 'gh auth login'`,
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "orgpulse.yml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Snapshot database path")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "GitHub token (default: GITHUB_TOKEN, then gh CLI)")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Scrape an organization and record one snapshot",
		RunE:  runCollect,
	}
	collectCmd.Flags().StringVar(&orgFlag, "org", "", "GitHub organization to scrape (required)")
	collectCmd.Flags().IntVar(&sinceFlag, "since", 0, "Window length in days")
	collectCmd.Flags().StringVar(&reposFlag, "repos", "", "Only repositories matching this glob or substring")
	collectCmd.Flags().BoolVar(&includePrivateFlag, "include-private", false, "Include private repositories")
	collectCmd.Flags().StringVar(&rateDelayFlag, "rate-limit-delay", "", "Pause between repositories, e.g. 500ms")
	collectCmd.Flags().IntVar(&maxReposFlag, "max-repos", 0, "Stop after this many repositories (0 = all)")
	rootCmd.AddCommand(collectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and layers the flags that were set on
// top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if orgFlag != "" {
		cfg.Organization = orgFlag
	}
	if reposFlag != "" {
		cfg.RepoPattern = reposFlag
	}
	if cmd.Flags().Changed("since") {
		cfg.Days = sinceFlag
	}
	if cmd.Flags().Changed("include-private") {
		cfg.IncludePrivate = includePrivateFlag
	}
	if cmd.Flags().Changed("max-repos") {
		cfg.MaxRepos = maxReposFlag
	}
	if rateDelayFlag != "" {
		d, err := time.ParseDuration(rateDelayFlag)
		if err != nil {
			return nil, fmt.Errorf("parse --rate-limit-delay %q: %w", rateDelayFlag, err)
		}
		cfg.RateLimitDelay = d
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("--since must be positive, got %d", cfg.Days)
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.Log.File, cfg.Log.Level, true)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logging.CloseFile()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	defer st.Close()

	bots, err := domain.NewBotFilter(cfg.IgnoredUserPatterns...)
	if err != nil {
		return fmt.Errorf("bad ignored_user_patterns: %w", err)
	}

	// The TUI is usable without credentials for browsing existing
	// snapshots; scraping then reports the missing token instead.
	var coll collector.Collector
	if token, err := auth.Token(tokenFlag); err == nil {
		gh, err := collector.NewGitHub(token, collector.Options{
			Delay:  cfg.RateLimitDelay,
			Bots:   bots,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		coll = gh
	} else {
		logger.Warn("no GitHub token, scraping disabled", "error", err)
	}

	app := tui.NewApp(context.Background(), st, coll, bots, tui.CollectParams{
		Organization:   cfg.Organization,
		Days:           cfg.Days,
		RepoPattern:    cfg.RepoPattern,
		IncludePrivate: cfg.IncludePrivate,
		MaxRepos:       cfg.MaxRepos,
	}, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Organization == "" {
		return errors.New("--org is required")
	}

	logger, err := logging.Setup(cfg.Log.File, cfg.Log.Level, false)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logging.CloseFile()

	bots, err := domain.NewBotFilter(cfg.IgnoredUserPatterns...)
	if err != nil {
		return fmt.Errorf("bad ignored_user_patterns: %w", err)
	}

	token, err := auth.Token(tokenFlag)
	if err != nil {
		return err
	}
	gh, err := collector.NewGitHub(token, collector.Options{
		Delay:  cfg.RateLimitDelay,
		Bots:   bots,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	defer st.Close()

	ctx := context.Background()
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -cfg.Days)

	logger.Info("scraping", "org", cfg.Organization, "since", start.Format("2006-01-02"))
	facts, err := gh.Collect(ctx, collector.Request{
		Organization:   cfg.Organization,
		Window:         collector.TimeWindow{Start: start, End: end},
		RepoPattern:    cfg.RepoPattern,
		IncludePrivate: cfg.IncludePrivate,
		MaxRepos:       cfg.MaxRepos,
	})
	if err != nil {
		if errors.Is(err, collector.ErrNoRepositories) {
			return fmt.Errorf("no repositories found in %s", cfg.Organization)
		}
		return fmt.Errorf("scrape %s: %w", cfg.Organization, err)
	}

	id, err := st.SaveScrape(ctx, start, end, facts)
	if err != nil {
		return fmt.Errorf("save scrape: %w", err)
	}

	repos := make(map[string]struct{})
	for _, f := range facts {
		repos[f.Org+"/"+f.Repo] = struct{}{}
	}
	fmt.Printf("Scrape %d recorded: %d facts across %d repositories (%s → %s)\n",
		id, len(facts), len(repos), start.Format("2006-01-02"), end.Format("2006-01-02"))
	return nil
}
