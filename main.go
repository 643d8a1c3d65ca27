package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "bucketview [bucket]",
		Short: "Browse a public S3 bucket in the terminal",
		Long: `bucketview is a TUI (Terminal User Interface) for browsing public S3 buckets.

It lists folders and files anonymously, newest files first, with breadcrumb
navigation, pagination and search. Settings are read from a .s3cfg file
(compatible with s3cmd) in the current directory, ~/.s3cfg or /etc/s3cfg,
and can be overridden by flags or BUCKETVIEW_* environment variables.`,
		Example:      "  bucketview my-public-bucket\n  bucketview ls my-public-bucket --prefix photos/",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v, args)
			if err != nil {
				return err
			}
			return runBrowser(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to .s3cfg (default: search ./.s3cfg, ~/.s3cfg, /etc/s3cfg)")
	flags.String("backend", BackendREST, "listing backend: rest or sdk")
	flags.String("host-base", DefaultHostBase, "storage domain")
	flags.String("host-bucket", DefaultHostBucket, "bucket host template, %(bucket)s is replaced by the bucket name")
	flags.String("region", DefaultRegion, "bucket region")
	flags.Bool("use-https", true, "use https for requests")
	flags.Int("page-size", DefaultPageSize, "entries per page, 0 for no pagination")
	flags.Bool("all", false, "show every entry on one page")
	flags.StringSlice("exclude", DefaultExclude, "file keys never listed")
	flags.Bool("reset-page-on-enter", false, "return to page 1 when entering a folder")
	flags.Duration("timeout", 0, "listing request timeout, 0 waits forever")
	flags.String("time-format", DefaultTimeFormat, "Go layout for modification times")
	flags.String("log-file", "", "write logs to this file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix("BUCKETVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("bucket")

	root.AddCommand(newLsCmd(v))
	root.AddCommand(newInitConfigCmd(v))
	return root
}

// resolveConfig layers the config file, environment, flags and the
// positional bucket argument, in increasing priority.
func resolveConfig(v *viper.Viper, args []string) (*Config, error) {
	cfg, _, err := LoadConfig(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	applyOverrides(v, cfg)
	if len(args) > 0 {
		cfg.Bucket = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *Config) {
	if v.IsSet("bucket") {
		cfg.Bucket = v.GetString("bucket")
	}
	if v.IsSet("backend") {
		cfg.Backend = v.GetString("backend")
	}
	if v.IsSet("host-base") {
		cfg.HostBase = v.GetString("host-base")
		if !v.IsSet("host-bucket") {
			cfg.HostBucket = cfg.HostBase + "/" + bucketPlaceholder
		}
	}
	if v.IsSet("host-bucket") {
		cfg.HostBucket = v.GetString("host-bucket")
	}
	if v.IsSet("region") {
		cfg.Region = v.GetString("region")
	}
	if v.IsSet("use-https") {
		cfg.UseHTTPS = v.GetBool("use-https")
	}
	if v.IsSet("page-size") {
		cfg.PageSize = v.GetInt("page-size")
	}
	if v.GetBool("all") {
		cfg.PageSize = Unbounded
	}
	if v.IsSet("exclude") {
		cfg.Exclude = excludeList(v)
	}
	if v.IsSet("reset-page-on-enter") {
		cfg.ResetPageOnEnter = v.GetBool("reset-page-on-enter")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("time-format") {
		cfg.TimeFormat = v.GetString("time-format")
	}
	if v.IsSet("log-file") {
		cfg.LogFile = v.GetString("log-file")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
}

// excludeList reads the exclusion list. The flag arrives already split;
// an environment value is a comma separated string like the config key.
func excludeList(v *viper.Viper) []string {
	if raw, ok := v.Get("exclude").(string); ok {
		return splitList(raw)
	}
	return v.GetStringSlice("exclude")
}

func runBrowser(ctx context.Context, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, closer, err := NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	fetcher, err := NewFetcher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error creating %s listing backend: %w", cfg.Backend, err)
	}

	prefs, dark := loadPrefs(logger)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	logger.Info().Str("bucket", cfg.Bucket).Str("backend", cfg.Backend).Str("url", cfg.BucketURL()).Msg("starting")

	model := NewModel(ModelOptions{
		Fetcher:    fetcher,
		Config:     cfg,
		Prefs:      prefs,
		DarkMode:   dark,
		Open:       OpenInBrowser,
		Downloader: NewDownloader(cfg, cwd),
		Logger:     logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// loadPrefs opens the preference store. Failures degrade to the default
// (light) display and no persistence.
func loadPrefs(logger zerolog.Logger) (*PrefStore, bool) {
	path, err := DefaultPrefsPath()
	if err != nil {
		logger.Warn().Err(err).Msg("display preference will not be saved")
		return nil, false
	}
	prefs := NewPrefStore(path)
	dark, err := prefs.DarkMode()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable preference file")
		return prefs, false
	}
	return prefs, dark
}

func newLsCmd(v *viper.Viper) *cobra.Command {
	var (
		prefix string
		page   int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "ls [bucket]",
		Short: "Print one page of a listing and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			fetcher, err := NewFetcher(ctx, cfg)
			if err != nil {
				return err
			}

			if prefix != "" && !strings.HasSuffix(prefix, Delimiter) {
				prefix += Delimiter
			}
			listing, err := fetcher.FetchListing(ctx, prefix)
			if err != nil {
				return err
			}

			state := ViewState{Path: prefix, Page: max(page, 1)}
			built := BuildPage(listing, state.Page, PageOptions{PageSize: cfg.PageSize, Exclude: cfg.Exclude})
			state = state.WithTotalPages(built.TotalPages)
			plan := Plan(built, state, RenderOptions{Paginated: cfg.PageSize != Unbounded, TimeFormat: cfg.TimeFormat})
			plan.Rows = FilterRows(plan.Rows, filter)
			return PrintPlan(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "folder to list")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&filter, "filter", "", "only show names containing this text")
	return cmd
}

func newInitConfigCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the effective configuration to a .s3cfg file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ".s3cfg"
			if len(args) > 0 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}

			cfg, _, err := LoadConfig(v.GetString("config"))
			if err != nil {
				return err
			}
			applyOverrides(v, cfg)

			if err := SaveConfig(cfg, path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
