// Package main provides the timberframe command line tool, which assembles
// timber-frame buildings from three dimensions or a script and exports them.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/chazu/timberframe/pkg/asset"
	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/kernel/sdfx"
)

var log = logging.Logger("tf-cli")

var rootCmd = &cobra.Command{
	Use:   "timberframe",
	Short: "Assemble timber-frame buildings",
	Long: `timberframe lays out a timber-frame building (floor, posts, roof beams,
corner brackets and roof lodges) from a width, height and depth, and exports
the result as a mesh, a layout document, a bill of materials or drawings.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string
	debug      bool

	// cfg is loaded before any subcommand runs.
	cfg config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "timberframe.hcl", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logging.LevelDebug
	if !debug {
		if level, err = logging.LevelFromString(cfg.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	logging.SetAllLoggers(level)
	log.Debugf("config loaded from %s", configPath)
	return nil
}

// openStore returns the template store selected by the configuration:
// OBJ/MTL files from assets.dir, or the built-in procedural templates,
// behind an LRU cache either way.
func openStore(c config.Config, k *sdfx.SdfxKernel) (asset.Store, error) {
	var store asset.Store
	if c.Assets.Dir != "" {
		log.Infof("loading templates from %s", c.Assets.Dir)
		store = asset.NewFileStore(os.DirFS(c.Assets.Dir))
	} else {
		store = asset.NewKernelStore(k)
	}
	return asset.NewCache(store, c.Assets.CacheSize)
}
