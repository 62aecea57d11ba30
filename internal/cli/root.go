package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cybergraph/pkg/config"
	"github.com/matzehuels/cybergraph/pkg/observability"
)

// setup runs before every command: it applies --verbose, loads the config
// and resolves the graph document path.
//
// Config resolution:
//   - --config FILE: the file must exist
//   - otherwise $XDG_CONFIG_HOME/cybergraph/config.toml if present
//   - otherwise built-in defaults
//
// CYBERGRAPH_* environment variables override the cache settings.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.SetHooks(observability.NewLogHooks(c.Logger))
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.graphPath == "" {
		c.graphPath = cfg.Graph.Path
	}
	c.Logger.Debug("configured", "graph", c.graphPath, "cache", cfg.Cache.Backend)
	return nil
}
