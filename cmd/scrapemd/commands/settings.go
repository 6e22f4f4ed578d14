package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/scrapemd/cmd/scrapemd/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/cleaner"
	"github.com/jmylchreest/scrapemd/pkg/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/scrapemd"
)

// Fetch modes.
const (
	FetchDynamic = "dynamic"
	FetchStatic  = "static"
	FetchAuto    = "auto"
)

// settings is the effective CLI configuration: pipeline settings plus the
// choice and tuning of the page renderer.
type settings struct {
	scrapemd.Config `yaml:",inline"`

	FetchMode    string        `yaml:"fetch_mode"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	ScrollPasses int           `yaml:"scroll_passes"`
	ScrollDelay  time.Duration `yaml:"scroll_delay"`
	ChromePath   string        `yaml:"chrome_path,omitempty"`
	NoClean      bool          `yaml:"no_clean"`
	Defang       bool          `yaml:"defang"`
}

// addSettingsFlags registers the pipeline flags on target and binds them to
// v under their snake_case names.
func addSettingsFlags(target *pflag.FlagSet, v *viper.Viper) {
	cfg := scrapemd.DefaultConfig()
	browser := clifetcher.DefaultConfig()
	fs := pflag.NewFlagSet("settings", pflag.ContinueOnError)

	// Markdown settings
	fs.String("max-chunk-size", strconv.Itoa(cfg.MaxChunkSize), "max characters per Markdown part (e.g. 100000, 50KB)")
	fs.Bool("no-clean", false, "skip Markdown normalization")
	fs.Bool("defang", true, "break auto-linking of http(s) URLs with a zero-width joiner")

	// Image settings
	fs.Int("batch-size", cfg.BatchSize, "images per manifest file")
	fs.String("images-dir", cfg.OutputDir, "directory downloaded images are written to")
	fs.Duration("download-timeout", cfg.DownloadTimeout, "per-image download timeout")
	fs.Duration("probe-timeout", cfg.ProbeTimeout, "per-image content-type probe timeout")

	// Fetch settings
	fs.String("fetch-mode", FetchDynamic, "fetch mode: dynamic (headless Chrome), static (no JavaScript), auto (static, render when needed)")
	fs.Duration("timeout", cfg.FetchTimeout, "page fetch timeout")
	fs.String("user-agent", cfg.UserAgent, "User-Agent for page and image requests")
	fs.Duration("settle-delay", browser.SettleDelay, "dynamic mode: wait after load before scrolling (0 disables)")
	fs.Int("scroll-passes", browser.ScrollPasses, "dynamic mode: scroll-to-bottom passes (0 disables)")
	fs.Duration("scroll-delay", browser.ScrollDelay, "dynamic mode: pause after each scroll pass")
	fs.String("chrome-path", "", "dynamic mode: Chrome executable (default: $CHROME_PATH or auto-detect)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	target.AddFlagSet(fs)
}

// loadSettings reads the effective settings from v.
func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		Config:       scrapemd.DefaultConfig(),
		FetchMode:    strings.ToLower(strings.TrimSpace(v.GetString("fetch_mode"))),
		SettleDelay:  v.GetDuration("settle_delay"),
		ScrollPasses: v.GetInt("scroll_passes"),
		ScrollDelay:  v.GetDuration("scroll_delay"),
		ChromePath:   v.GetString("chrome_path"),
		NoClean:      v.GetBool("no_clean"),
		Defang:       v.GetBool("defang"),
	}

	size, err := parseSize(v.GetString("max_chunk_size"))
	if err != nil {
		return s, fmt.Errorf("%w: max-chunk-size: %w", scrapemd.ErrInvalidConfig, err)
	}
	s.MaxChunkSize = size
	s.BatchSize = v.GetInt("batch_size")
	s.OutputDir = v.GetString("images_dir")
	s.DownloadTimeout = v.GetDuration("download_timeout")
	s.ProbeTimeout = v.GetDuration("probe_timeout")
	s.FetchTimeout = v.GetDuration("timeout")
	s.UserAgent = v.GetString("user_agent")

	switch s.FetchMode {
	case FetchDynamic, FetchStatic, FetchAuto:
	case "":
		s.FetchMode = FetchDynamic
	default:
		return s, fmt.Errorf("%w: unknown fetch mode %q (use %q, %q or %q)",
			scrapemd.ErrInvalidConfig, s.FetchMode, FetchDynamic, FetchStatic, FetchAuto)
	}

	return s, nil
}

// parseSize accepts plain character counts and humanized sizes.
func parseSize(value string) (int, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// browserConfig maps the settings onto the dynamic fetcher. Zero delays and
// pass counts disable the step.
func (s settings) browserConfig() clifetcher.Config {
	passes := s.ScrollPasses
	if passes == 0 {
		passes = -1
	}
	return clifetcher.Config{
		UserAgent:    s.UserAgent,
		Timeout:      s.FetchTimeout,
		SettleDelay:  disableZero(s.SettleDelay),
		ScrollPasses: passes,
		ScrollDelay:  disableZero(s.ScrollDelay),
		ChromePath:   s.ChromePath,
	}
}

func disableZero(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// newCleaner builds the Markdown cleaner.
func (s settings) newCleaner() cleaner.Cleaner {
	if s.NoClean {
		return cleaner.NewNoop()
	}
	return cleaner.NewMarkdown(cleaner.WithDefangLinks(s.Defang))
}

// newFetcher builds the page fetcher for the selected mode.
func (s settings) newFetcher() (fetcher.Fetcher, error) {
	static := fetcher.NewStatic(fetcher.StaticConfig{
		UserAgent: s.UserAgent,
		Timeout:   s.FetchTimeout,
	})
	if s.FetchMode == FetchStatic {
		return static, nil
	}

	dynamic, err := clifetcher.NewDynamicFetcher(s.browserConfig())
	if err != nil {
		return nil, err
	}
	if s.FetchMode == FetchAuto {
		return fetcher.NewAuto(static, dynamic), nil
	}
	return dynamic, nil
}

// options converts the settings into scrapemd options.
func (s settings) options(f fetcher.Fetcher) []scrapemd.Option {
	return []scrapemd.Option{
		scrapemd.WithMaxChunkSize(s.MaxChunkSize),
		scrapemd.WithBatchSize(s.BatchSize),
		scrapemd.WithOutputDir(s.OutputDir),
		scrapemd.WithDownloadTimeout(s.DownloadTimeout),
		scrapemd.WithProbeTimeout(s.ProbeTimeout),
		scrapemd.WithUserAgent(s.UserAgent),
		scrapemd.WithFetchTimeout(s.FetchTimeout),
		scrapemd.WithFetcher(f),
		scrapemd.WithCleaner(s.newCleaner()),
	}
}
