// Package cli implements the cybergraph command-line interface.
//
// Every command works on one graph document (--graph/-g, default
// graph.json). Mutating commands load the document, apply the change and
// save it back atomically; view commands render it through a
// [pipeline.Runner] backed by the configured artifact cache.
//
// # Commands
//
//   - demo: write the sample network
//   - entity add, relationship add, import: build the graph
//   - cluster, path: derived views
//   - visualize, heatmap: render SVG, PNG, JPG or DOT
//   - export: write CSV, JSON or GEXF
//   - show: print the entity table
//   - serve: browse every view in the preview server
//   - cache: inspect and clear the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cybergraph/pkg/buildinfo"
	"github.com/matzehuels/cybergraph/pkg/cache"
	"github.com/matzehuels/cybergraph/pkg/config"
	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "cybergraph"

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

	// Set from persistent flags before any command runs.
	graphPath  string
	configPath string
	noCache    bool
	verbose    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cybergraph maps cybersecurity entities and their relationships",
		Long: `cybergraph builds an undirected graph of cybersecurity entities (domains,
IPs, people) and their relationships, clusters it into communities, finds
shortest paths, renders it with a choice of layouts and exports it as CSV,
JSON or GEXF.`,
		Version:           buildinfo.Current().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.graphPath, "graph", "g", "", "graph document to operate on (default from config, graph.json)")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cybergraph/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the render cache")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.demoCommand())
	root.AddCommand(c.entityCommand())
	root.AddCommand(c.relationshipCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.heatmapCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An unreachable cache
// backend degrades to no caching with a warning.
func (c *CLI) newRunner(ctx context.Context) *pipeline.Runner {
	ch := c.openCache(ctx)
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Cache.Prefix)
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	if ttl := c.cfg.TTL(); ttl > 0 {
		r.TTL = ttl
	}
	return r
}

func (c *CLI) openCache(ctx context.Context) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	ch, err := cache.Open(ctx, c.cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", c.cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// =============================================================================
// Graph Document
// =============================================================================

func (c *CLI) loadGraph() (*graph.Graph, error) {
	return pipeline.LoadGraph(c.graphPath, c.cfg.Graph.StrictRelationships)
}

func (c *CLI) loadOrCreateGraph() (*graph.Graph, error) {
	return pipeline.LoadOrCreate(c.graphPath, c.cfg.Graph.StrictRelationships)
}

func (c *CLI) saveGraph(g *graph.Graph) error {
	if err := pipeline.SaveGraph(g, c.graphPath); err != nil {
		return pipeline.Classify(err)
	}
	c.Logger.Debug("saved graph", "path", c.graphPath,
		"entities", g.EntityCount(), "relationships", g.RelationshipCount())
	return nil
}

// =============================================================================
// Output
// =============================================================================

// stdout receives human-facing output; tests swap it.
var stdout io.Writer = os.Stdout
