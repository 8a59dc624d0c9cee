package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/config"
	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/uithread"
	"github.com/wippyai/script-bridge/workload"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bridgectl",
	Short: "Drive and inspect the script bridge",
	Long: `bridgectl runs simulated scripting contexts that create and drop event
targets, and shows how their disposals travel to the UI thread.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"interval":      "loop.interval",
	"contexts":      "workload.contexts",
	"objects":       "workload.objects",
	"release-ratio": "workload.release_ratio",
	"collect-ratio": "workload.collect_ratio",
	"seed":          "workload.seed",
	"settle-wait":   "workload.settle_wait",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.Duration("interval", 0, "UI loop idle flush interval")
	flags.Int("contexts", 0, "number of concurrent scripting contexts")
	flags.Int("objects", 0, "event targets created per context")
	flags.Float64("release-ratio", 0, "share of objects released explicitly")
	flags.Float64("collect-ratio", 0, "share of objects left to the garbage collector")
	flags.Uint64("seed", 0, "seed for the release/forget/keep choice")
	flags.Duration("settle-wait", 0, "how long to wait for outstanding disposals")
}

// initConfig reads the config file and environment, applies flags and
// installs the configured logger.
func initConfig(cmd *cobra.Command, _ []string) error {
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err = config.FromViper(v)
	if err != nil {
		return err
	}

	logger, err = cfg.Logger()
	if err != nil {
		return err
	}
	engine.SetLogger(logger)
	uithread.SetLogger(logger)
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	if f := flags.Lookup("metrics-addr"); f != nil {
		return v.BindPFlag("metrics.addr", f)
	}
	return nil
}

func workloadOptions(c *config.Config) workload.Options {
	return workload.Options{
		Contexts:     c.Workload.Contexts,
		Objects:      c.Workload.Objects,
		ReleaseRatio: c.Workload.ReleaseRatio,
		CollectRatio: c.Workload.CollectRatio,
		Seed:         c.Workload.Seed,
	}
}
