package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
	"github.com/matzehuels/cybergraph/pkg/render/nodelink"
)

// viewFlags are the render flags shared by visualize, heatmap and path.
type viewFlags struct {
	layout  string
	title   string
	format  string
	output  string
	seed    uint64
	refresh bool
}

func (f *viewFlags) register(cmd *cobra.Command, defaultOutput string) {
	layouts := make([]string, len(nodelink.Layouts))
	for i, l := range nodelink.Layouts {
		layouts[i] = string(l)
	}
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "layout: "+strings.Join(layouts, ", ")+" (unknown names fall back to random)")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "figure title")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: svg, png, jpg or dot")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default "+defaultOutput+".<format>)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for the random layout (0 draws fresh positions)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render even when a cached artifact exists")
	_ = cmd.RegisterFlagCompletionFunc("layout", cobra.FixedCompletions(layouts, cobra.ShellCompDirectiveNoFileComp))
}

// options merges the flags over the configured render defaults.
func (f *viewFlags) options(c *CLI, cmd *cobra.Command) pipeline.Options {
	opts := c.cfg.ViewOptions()
	if f.layout != "" {
		opts.Layout = f.layout
	}
	if f.title != "" {
		opts.Title = f.title
	}
	if f.format != "" {
		opts.Format = f.format
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	return opts
}

// outputPath returns -o or base.<format>.
func (f *viewFlags) outputPath(base string, format nodelink.Format) string {
	if f.output != "" {
		return f.output
	}
	return base + "." + string(format)
}

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Render the whole graph",
		Long: `Render every entity and relationship with the configured style.

Layouts map to Graphviz engines: spring (fdp), circular (circo),
kamada_kawai (neato, KK mode) and random (pinned random positions).
Rendered artifacts are cached; unseeded random layouts are never cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			return c.renderView(cmd.Context(), "Rendering graph...", "graph", &flags, flags.options(c, cmd),
				func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
					return r.Visualize(ctx, g, opts)
				})
		},
	}
	flags.register(cmd, "graph")
	return cmd
}

// heatmapCommand creates the heatmap command.
func (c *CLI) heatmapCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "heatmap [METRIC]",
		Short: "Render entities sized and shaded by a numeric attribute",
		Long: `Render entities sized and shaded by a numeric attribute.

Node area grows by 100 per unit of the metric over a base of 500; the
colour runs over the reds9 scale from the smallest to the largest value.
Entities without a numeric value count as 0. METRIC defaults to the
configured heatmap metric (vulnerability_score).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(c, cmd)
			if len(args) == 1 {
				opts.Metric = args[0]
			}
			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			return c.renderView(cmd.Context(), "Rendering heatmap...", "heatmap", &flags, opts,
				func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
					return r.Heatmap(ctx, g, opts)
				})
		},
	}
	flags.register(cmd, "heatmap")
	return cmd
}

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "path [SOURCE TARGET]",
		Short: "Find and highlight the shortest path between two entities",
		Long: `Find the shortest path between two entities (fewest relationships) and
render the graph with the path drawn in the highlight colour.

Without arguments on an interactive terminal, the entities are picked from
a list. When the entities are not connected a warning is printed and
nothing is rendered.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			source, target, err := c.pathEndpoints(g, args)
			if err != nil || source == "" || target == "" {
				return err
			}
			return c.renderView(cmd.Context(), "Finding path...", "path", &flags, flags.options(c, cmd),
				func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
					return r.HighlightPath(ctx, g, source, target, opts)
				})
		},
	}
	flags.register(cmd, "path")
	return cmd
}

// pathEndpoints returns the endpoints from args or, on a terminal, from the
// interactive picker. Empty endpoints mean the user aborted the picker.
func (c *CLI) pathEndpoints(g *graph.Graph, args []string) (string, string, error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", "", cgerrors.New(cgerrors.ErrCodeInvalidInput, "path needs SOURCE and TARGET when stdin is not a terminal")
	}
	if g.EntityCount() < 2 {
		return "", "", cgerrors.New(cgerrors.ErrCodeInvalidInput, "the graph needs at least two entities")
	}
	source, err := pickEntity("Select source entity", g, "")
	if err != nil || source == "" {
		return "", "", err
	}
	target, err := pickEntity("Select target entity", g, source)
	if err != nil {
		return "", "", err
	}
	return source, target, nil
}

type viewFunc func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error)

// renderView runs one view and writes its artifact.
func (c *CLI) renderView(ctx context.Context, message, base string, flags *viewFlags, opts pipeline.Options, view viewFunc) error {
	runner := c.newRunner(ctx)
	defer runner.Close()

	spinner := newSpinner(ctx, message)
	spinner.Start()
	res, err := view(ctx, runner, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if res.View == pipeline.ViewPath && !res.Found {
		printWarning("No path found")
		return nil
	}

	out := flags.outputPath(base, res.Format)
	if err := cgerrors.ValidateOutputPath(out); err != nil {
		return err
	}
	if err := os.WriteFile(out, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	switch res.View {
	case pipeline.ViewPath:
		printSuccess("Shortest path %s", StyleDim.Render(fmt.Sprintf("(%d hops)", len(res.Path)-1)))
		printPath(res.Path)
	case pipeline.ViewHeatmap:
		printSuccess("Rendered heatmap of %s %s", StyleHighlight.Render(opts.Metric), StyleDim.Render("("+string(res.Layout)+")"))
	default:
		printSuccess("Rendered graph %s", StyleDim.Render("("+string(res.Layout)+")"))
	}
	printFile(out)
	printStats(res.Stats.Entities, res.Stats.Relationships, res.CacheHit)
	return nil
}
