package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/loomtools/dtxwif/pkg/buildinfo"
	"github.com/loomtools/dtxwif/pkg/cache"
	"github.com/loomtools/dtxwif/pkg/config"
	"github.com/loomtools/dtxwif/pkg/convert"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisConnectTimeout bounds the initial Redis ping (with retries).
	redisConnectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug output is enabled.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "dtxwif converts weaving drafts to WIF",
		Long:          `dtxwif converts Fiberworks PCW (.dtx) and WeavePoint (.wpo) weaving drafts to the Weaving Information File (WIF) format.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dtxwif/config.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "workers", cfg.Convert.Workers, "redis", cfg.Cache.RedisURL != "")
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a conversion runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, opts convert.Options, noCache bool) (*convert.Runner, error) {
	cache, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	opts.CacheTTL = c.config.Cache.TTL.Duration
	return convert.NewRunner(cache, keyer, c.Logger, opts), nil
}

// newCache picks the cache backend. Redis keys are scoped by appName since
// the database may be shared.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || !c.config.Cache.Enabled {
		return cache.NewNullCache(), nil, nil
	}
	if url := c.config.Cache.RedisURL; url != "" {
		ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, appName+":"), nil
	}
	dir, err := c.config.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	return fc, nil, err
}
