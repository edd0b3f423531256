// Package cmd provides the command-line interface for hopcrawl.
// It handles argument parsing, configuration loading and crawler execution.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/hopcrawl/internal/config"
	"github.com/masahif/hopcrawl/internal/crawler"
	"github.com/masahif/hopcrawl/internal/logging"
	"github.com/masahif/hopcrawl/internal/parser"
	"github.com/masahif/hopcrawl/internal/storage"
	"github.com/masahif/hopcrawl/internal/urlutil"
	"github.com/masahif/hopcrawl/internal/visited"
)

const (
	appName   = "hopcrawl"
	envPrefix = "HOPCRAWL"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
}

// Execute builds the root command and runs it against os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd returns the root command. Every call gets its own viper
// instance, so commands built for tests do not share state.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   appName + " <seed-url> <max-depth>",
		Short: "A concurrent, depth-bounded web crawler",
		Long: `hopcrawl crawls outward from a seed URL, following links up to a
maximum depth. Every page is fetched at most once, at the shallowest
depth it is reached by, and printed as "[depth] address".`,
		Example: `  hopcrawl https://example.com 2
  hopcrawl -c 16 --extractor goquery https://example.com 3`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		Args:          validateArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawler(cmd, v, cfgFile, args)
		},
	}

	defaults := config.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hopcrawl.yaml or $XDG_CONFIG_HOME/hopcrawl/hopcrawl.yaml)")
	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawling flags
	rootCmd.Flags().IntP("concurrency", "c", defaults.Concurrency, "Number of concurrent workers")
	rootCmd.Flags().DurationP("timeout", "t", defaults.RequestTimeout, "HTTP request timeout")
	rootCmd.Flags().StringP("user-agent", "u", defaults.UserAgent, "HTTP User-Agent header")
	rootCmd.Flags().StringSliceP("header", "H", []string{}, "Custom HTTP headers in 'Name: Value' format (use multiple times for multiple headers)")
	rootCmd.Flags().Int64("max-body-size", defaults.MaxBodySize, "Maximum bytes read from each response")
	rootCmd.Flags().String("extractor", defaults.Extractor, "Link extractor: "+strings.Join(parser.Names(), ", "))
	rootCmd.Flags().Duration("progress-interval", defaults.ProgressInterval, "Interval between progress log entries (0 disables)")

	// Visited set flags
	rootCmd.Flags().String("visited-store", defaults.Visited.Store, "Visited set backend: memory, bloom or sqlite")
	rootCmd.Flags().Uint("bloom-capacity", defaults.Visited.BloomCapacity, "Expected number of pages for the bloom visited set")
	rootCmd.Flags().Float64("bloom-fp-rate", defaults.Visited.BloomFPRate, "False positive rate for the bloom visited set")

	// Logging flags
	rootCmd.Flags().String("log-level", defaults.Log.Level, "Log level: debug, info, warn or error")
	rootCmd.Flags().String("log-file", "", "Also write logs to this file, rotated by size")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"concurrency", "concurrency"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"headers", "header"},
		{"max_body_size", "max-body-size"},
		{"extractor", "extractor"},
		{"progress_interval", "progress-interval"},
		{"visited.store", "visited-store"},
		{"visited.bloom_capacity", "bloom-capacity"},
		{"visited.bloom_fp_rate", "bloom-fp-rate"},
		{"log.level", "log-level"},
		{"log.file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := v.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}

	// Keys without a flag still need a default for env lookups to apply
	v.SetDefault("log.max_size", defaults.Log.MaxSize)
	v.SetDefault("log.max_backups", defaults.Log.MaxBackups)

	return rootCmd
}

// validateArgs requires an http(s) seed and a non-negative integer depth, unless
// the configuration is only being displayed.
func validateArgs(cmd *cobra.Command, args []string) error {
	if show, _ := cmd.Flags().GetBool("show-config"); show {
		return cobra.MaximumNArgs(2)(cmd, args)
	}
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return err
	}
	if _, err := urlutil.ParseSeed(args[0]); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidSeed, err)
	}
	_, err := parseMaxDepth(args[1])
	return err
}

func parseMaxDepth(raw string) (int, error) {
	depth, err := strconv.Atoi(raw)
	if err != nil || depth < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", config.ErrInvalidMaxDepth, raw)
	}
	return depth, nil
}

// initConfig points v at the config file and the environment
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// loadConfig merges defaults, config file, environment, flags and the
// positional arguments, in increasing order of priority.
func loadConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string, args []string) (*config.CrawlConfig, error) {
	if err := initConfig(v, cfgFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(args) > 0 {
		cfg.Seed = args[0]
	}
	if len(args) > 1 {
		depth, err := parseMaxDepth(args[1])
		if err != nil {
			return nil, err
		}
		cfg.MaxDepth = depth
	}

	if !cmd.Flags().Changed("user-agent") && !v.InConfig("user_agent") && cfg.UserAgent == config.DefaultConfig().UserAgent {
		cfg.UserAgent = generateUserAgent()
	}

	return cfg, nil
}

func generateUserAgent() string {
	if version != "" && version != "dev" {
		return fmt.Sprintf("%s/%s", appName, version)
	}
	return appName + "/dev"
}

func showCurrentConfig(w io.Writer, v *viper.Viper, cfg *config.CrawlConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	source := "(none)"
	if used := v.ConfigFileUsed(); used != "" {
		source = used
	}

	fmt.Fprintf(w, "# Current hopcrawl configuration\n")
	fmt.Fprintf(w, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "# Configuration file: %s\n", source)
	fmt.Fprintf(w, "# Environment variables prefix: %s_\n\n", envPrefix)
	fmt.Fprint(w, string(yamlData))

	fmt.Fprintf(w, "\n# Configuration source priority:\n")
	fmt.Fprintf(w, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(w, "# 2. Environment variables (%s_ prefix)\n", envPrefix)
	fmt.Fprintf(w, "# 3. Configuration file (%s.yaml)\n", appName)
	fmt.Fprintf(w, "# 4. Default values (lowest priority)\n")

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "\n# Warning: configuration is not valid for a crawl: %v\n", err)
	}

	return nil
}

// visitedStore is a visited set that holds resources
type visitedStore interface {
	crawler.VisitedSet
	io.Closer
}

func newVisitedStore(cfg config.VisitedConfig) (visitedStore, error) {
	switch strings.ToLower(cfg.Store) {
	case config.StoreMemory:
		return visited.NewMemory(visited.DefaultShards), nil
	case config.StoreBloom:
		return visited.NewBloom(cfg.BloomCapacity, cfg.BloomFPRate), nil
	case config.StoreSQLite:
		return storage.NewSQLiteVisitedSet(storage.MemoryDSN)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownVisitedStore, cfg.Store)
	}
}

func runCrawler(cmd *cobra.Command, v *viper.Viper, cfgFile string, args []string) error {
	// Argument errors print usage; anything after this point does not
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd, v, cfgFile, args)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show-config"); show {
		return showCurrentConfig(cmd.OutOrStdout(), v, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(cfg.Log.Level)
	logConfig.FilePath = cfg.Log.File
	if cfg.Log.MaxSize > 0 {
		logConfig.MaxSize = cfg.Log.MaxSize
	}
	if cfg.Log.MaxBackups > 0 {
		logConfig.MaxBackups = cfg.Log.MaxBackups
	}
	logConfig.Stderr = cmd.ErrOrStderr()

	logger, logCloser, err := logging.NewLogger(*logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	if used := v.ConfigFileUsed(); used != "" {
		logger.Info("Using config file", "path", used)
	}

	extract, err := parser.Lookup(cfg.Extractor)
	if err != nil {
		return err
	}

	store, err := newVisitedStore(cfg.Visited)
	if err != nil {
		return fmt.Errorf("failed to initialize visited set: %w", err)
	}
	defer func() { _ = store.Close() }()

	headers, err := cfg.ParseHeaders()
	if err != nil {
		return err
	}

	client := crawler.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout, cfg.MaxBodySize)
	client.SetCustomHeaders(headers)
	client.SetLogger(logger)
	defer client.Close()

	c, err := crawler.NewCrawler(crawler.Options{
		Seed:             cfg.Seed,
		MaxDepth:         cfg.MaxDepth,
		Concurrency:      cfg.Concurrency,
		ProgressInterval: cfg.ProgressInterval,
	}, client, extract, store, crawler.NewConsoleReporter(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}
	c.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = c.Run(ctx)
	return err
}
