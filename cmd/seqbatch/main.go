package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/seqbatch/internal/cliconfig"
	"github.com/bft-labs/seqbatch/pkg/log"
	"github.com/bft-labs/seqbatch/pkg/seqbatch"
)

const helpDescription = `
Plan and produce padded batches of multi-rate audio/motion training samples.

Samples are sorted by length and grouped under a token budget; each group is
collated into zero-padded tensors with validity masks.

Commands:
  sizes   compute (or load) the per-sample size cache
  plan    print bucket statistics for the configured budget
  stats   compute (or load) normalization statistics (train split only)
  run     produce every batch of one epoch and report throughput
`

var exampleUsage = strings.TrimSpace(`
  seqbatch plan --data-dir /data/lrs3 --max-tokens 40000
  seqbatch plan --config $HOME/.seqbatch/config.toml --watch
  seqbatch run --data-dir /data/lrs3 --split val --ordered
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds flag-bound configuration shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "seqbatch",
		Short:         "Token-budgeted batching and padding for multi-rate sequence data",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flags
	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.seqbatch/config.toml)")
	f.StringVar(&c.cfg.DataDir, "data-dir", c.cfg.DataDir, "directory holding one database per split and the caches")
	f.StringVar(&c.cfg.Split, "split", c.cfg.Split, "split to load (train, val, test)")
	f.IntVar(&c.cfg.MaxTokens, "max-tokens", c.cfg.MaxTokens, "token budget per batch (samples x longest primary length)")
	f.IntVar(&c.cfg.MaxSentences, "max-sentences", c.cfg.MaxSentences, "maximum samples per batch")
	f.IntVar(&c.cfg.Alignment, "alignment", c.cfg.Alignment, "batch size and padded length alignment")
	f.IntVar(&c.cfg.RateRatio, "rate-ratio", c.cfg.RateRatio, "primary to secondary frame rate ratio")
	f.IntVar(&c.cfg.Workers, "workers", c.cfg.Workers, "parallel collation workers")
	f.BoolVar(&c.cfg.Ordered, "ordered", c.cfg.Ordered, "deliver batches in bucket order")
	f.BoolVar(&c.cfg.Shuffle, "shuffle", c.cfg.Shuffle, "shuffle bucket order (train split only)")
	f.Int64Var(&c.cfg.Seed, "seed", c.cfg.Seed, "shuffle seed")
	f.IntVar(&c.cfg.MemoryCacheSize, "memory-cache-size", c.cfg.MemoryCacheSize, "decoded samples kept in memory (0 disables)")
	f.BoolVar(&c.cfg.Normalize, "normalize", c.cfg.Normalize, "normalize secondary fields with the split statistics")
	f.BoolVar(&c.cfg.Style, "style", c.cfg.Style, "derive missing style vectors from the split statistics")
	f.BoolVar(&c.cfg.Progress, "progress", c.cfg.Progress, "show progress bars while building caches")
	f.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(c.sizesCmd(), c.planCmd(), c.statsCmd(), c.runCmd())

	if err := root.Execute(); err != nil {
		logger, _ := log.NewConsole(os.Stderr, "info")
		logger.Error().Err(err).Msg("seqbatch")
		os.Exit(1)
	}
}

// resolve layers the config file and environment under the flags that were
// set explicitly, then validates the result.
func (c *cli) resolve(cmd *cobra.Command) (cliconfig.Config, string, error) {
	cfg := c.cfg

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return cfg, cfgFile, fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, cfgFile, err
		}
	}

	// Apply environment variables (SEQBATCH_*)
	// These override file config but are overridden by flags (checked via changed map)
	if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, cfgFile, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, cfgFile, err
	}
	return cfg, cfgFile, nil
}

// open resolves the configuration and creates a loader.
func (c *cli) open(cmd *cobra.Command) (*seqbatch.Loader, zerolog.Logger, string, error) {
	cfg, cfgFile, err := c.resolve(cmd)
	if err != nil {
		return nil, zerolog.Nop(), cfgFile, err
	}
	zl, err := log.NewConsole(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), cfgFile, err
	}
	zl.Debug().Interface("config", cfg).Msg("configuration")

	loader, err := seqbatch.New(cfg.Library(), seqbatch.WithLogger(log.NewZerologAdapterWithLogger(zl)))
	if err != nil {
		return nil, zl, cfgFile, fmt.Errorf("create loader: %w", err)
	}
	return loader, zl, cfgFile, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
