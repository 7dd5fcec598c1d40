package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"arena-crawler/lib/configutil"
	configlibsql "arena-crawler/lib/configutil/libsql"
	"arena-crawler/lib/scrapers/arena"
	"arena-crawler/lib/sqliteutil"
	"arena-crawler/lib/telemetry"
	"arena-crawler/services/crawler"
	"arena-crawler/services/crawler/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl         string             `json:"base_url"`
	ApiBaseUrl      string             `json:"api_base_url"`
	Cookies         string             `json:"cookies"`
	RequiredCookies []string           `json:"required_cookies"`
	Database        configlibsql.Struct `json:"database"`
	PageSize        int                `json:"page_size"`
	RequestDelayMs  int                `json:"request_delay_ms"`
	MaxRetries      int                `json:"max_retries"`
	Concurrency     int                `json:"concurrency"`
	Debug           bool               `json:"debug"`
}

func (c *Config) withDefaults() {
	if c.BaseUrl == "" {
		c.BaseUrl = "https://arena.colosseum.org"
	}
	if c.ApiBaseUrl == "" {
		c.ApiBaseUrl = "https://api.colosseum.org"
	}
	if c.Cookies == "" {
		c.Cookies = "cookies.json"
	}
	if c.Database.File == "" && c.Database.Url == "" {
		c.Database.File = "arena_profiles.db"
	}
	if c.RequestDelayMs <= 0 {
		c.RequestDelayMs = 2000
	}
}

var flagConfig *string
var flagLimit *int
var flagDryRun *bool
var flagVisible *bool
var flagNoSkipExisting *bool
var flagCookies *string
var flagDb *string
var flagTestDb *bool

func init() {
	flagConfig = rootCmd.Flags().String("config", "config.json5", "Path to the crawler config file.")
	flagLimit = rootCmd.Flags().Int("limit", 0, "Maximum number of profiles to crawl (0 = all).")
	flagDryRun = rootCmd.Flags().Bool("dry-run", false, "Run the full pipeline without writing to the database.")
	flagVisible = rootCmd.Flags().Bool("visible", false, "Accepted for compatibility, the api crawler has no browser to show.")
	flagNoSkipExisting = rootCmd.Flags().Bool("no-skip-existing", false, "Re-fetch profiles that already exist in the database.")
	flagCookies = rootCmd.Flags().String("cookies", "", "Path to the browser-exported cookie file.")
	flagDb = rootCmd.Flags().String("db", "", "Path to the local sqlite database file.")
	flagTestDb = rootCmd.Flags().Bool("test-db", false, "Check database connectivity and exit.")
}

var rootCmd = &cobra.Command{
	Use:           "arena-crawler",
	Short:         "arena-crawler scrapes the arena profile directory into a local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var dbErr *crawler.DatabaseError
		if errors.As(err, &dbErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := configutil.ReadConfig[Config](*flagConfig)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read config: %w", err)
	}
	cfg.withDefaults()
	if *flagCookies != "" {
		cfg.Cookies = *flagCookies
	}
	if *flagDb != "" {
		cfg.Database.File = *flagDb
		cfg.Database.Url = ""
	}
	telemetry.InitSlog(cfg.Debug)

	database, err := cfg.Database.OpenDB()
	if err != nil {
		return &crawler.DatabaseError{Err: err}
	}
	defer database.Close()
	err = sqliteutil.ApplySchema(database, db.Schema)
	if err != nil {
		return &crawler.DatabaseError{Err: err}
	}

	if *flagTestDb {
		return testDb(ctx, database)
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	err = client.VerifyAuth(ctx)
	if err != nil {
		return err
	}

	if *flagVisible {
		cmd.Println("note: --visible is ignored, this crawler talks to the api directly")
	}

	service := crawler.NewService(client, database, crawler.NewMerger(cfg.BaseUrl), crawler.Options{
		Limit:        *flagLimit,
		DryRun:       *flagDryRun,
		ForceRefetch: *flagNoSkipExisting,
		Concurrency:  cfg.Concurrency,
		PageSize:     cfg.PageSize,
		RequestDelay: time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		MaxRetries:   cfg.MaxRetries,
	})

	summary, runErr := service.Run(ctx)
	renderSummary(summary, *flagDryRun)
	return runErr
}

func newClient(cfg Config) (*arena.Client, error) {
	appUrl, apiUrl := cfg.BaseUrl, cfg.ApiBaseUrl
	creds, err := arena.LoadCredentials(cfg.Cookies, arena.CredentialOptions{
		AppHost:  hostOf(appUrl),
		ApiHost:  hostOf(apiUrl),
		Required: cfg.RequiredCookies,
	})
	if err != nil {
		return nil, err
	}
	return arena.NewClient(arena.ClientOptions{
		BaseUrl:     appUrl,
		ApiUrl:      apiUrl,
		Credentials: creds,
	})
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

func testDb(ctx context.Context, database *sql.DB) error {
	err := database.PingContext(ctx)
	if err != nil {
		return &crawler.DatabaseError{Err: err}
	}
	count, err := db.New(database).CountProfiles(ctx)
	if err != nil {
		return &crawler.DatabaseError{Err: err}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"check", "result"})
	t.AppendRows([]table.Row{
		{"connection", "ok"},
		{"profiles", count},
	})
	t.Render()
	return nil
}

func renderSummary(summary crawler.Summary, dryRun bool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	title := "run summary"
	if dryRun {
		title = "run summary (dry run, nothing written)"
	}
	t.SetTitle(title)
	t.AppendHeader(table.Row{"metric", "count"})
	t.AppendRows([]table.Row{
		{"listed", summary.Listed},
		{"skipped", summary.Skipped},
		{"detail failed", summary.DetailFailed},
		{"parse errors", summary.ParseErrors},
		{"persisted", summary.Persisted},
		{"failed", summary.Failed},
	})
	t.AppendFooter(table.Row{"duration", summary.Duration.Round(time.Second)})
	t.Render()
}
