package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	cgio "github.com/matzehuels/cybergraph/pkg/io"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
)

// demoGraph returns the sample network: a domain, the IP it resolves to
// and the person who owns it.
func demoGraph() *graph.Graph {
	g := graph.New()
	_ = g.AddEntity("Domain: example.com", graph.Attributes{"type": "Domain"})
	_ = g.AddEntity("IP: 192.168.1.1", graph.Attributes{"type": "IP"})
	_ = g.AddEntity("Person: Alice", graph.Attributes{"type": "Person"})
	_ = g.AddRelationship("Domain: example.com", "IP: 192.168.1.1", graph.Attributes{"relationship": "Resolves to"})
	_ = g.AddRelationship("Person: Alice", "Domain: example.com", graph.Attributes{"relationship": "Owns"})
	return g
}

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the sample network to the graph document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.graphPath); err == nil && !force {
				return cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", c.graphPath)
			}
			g := demoGraph()
			if err := c.saveGraph(g); err != nil {
				return err
			}
			printSuccess("Wrote sample network")
			printFile(c.graphPath)
			printStats(g.EntityCount(), g.RelationshipCount(), false)
			printNextStep("Find a path", fmt.Sprintf("%s path %q %q", appName, "Person: Alice", "IP: 192.168.1.1"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing graph document")
	return cmd
}

// entityCommand creates the entity command group.
func (c *CLI) entityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage entities",
	}
	cmd.AddCommand(c.entityAddCommand())
	return cmd
}

func (c *CLI) entityAddCommand() *cobra.Command {
	var attrFlags []string
	cmd := &cobra.Command{
		Use:   "add ID",
		Short: "Add an entity or merge attributes into an existing one",
		Example: `  cybergraph entity add "Domain: example.com" --attr type=Domain
  cybergraph entity add "IP: 10.0.0.1" --attr type=IP --attr vulnerability_score=7.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := cgerrors.ValidateEntityID(id); err != nil {
				return err
			}
			attrs, err := parseAttrFlags(attrFlags)
			if err != nil {
				return err
			}
			g, err := c.loadOrCreateGraph()
			if err != nil {
				return err
			}
			existed := g.HasEntity(id)
			if err := g.AddEntity(id, attrs); err != nil {
				return pipeline.Classify(err)
			}
			if err := c.saveGraph(g); err != nil {
				return err
			}
			if existed {
				printSuccess("Updated entity %s", StyleHighlight.Render(id))
			} else {
				printSuccess("Added entity %s", StyleHighlight.Render(id))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&attrFlags, "attr", nil, "attribute key=value (repeatable; JSON values are decoded)")
	return cmd
}

// relationshipCommand creates the relationship command group.
func (c *CLI) relationshipCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Manage relationships",
	}
	cmd.AddCommand(c.relationshipAddCommand())
	return cmd
}

func (c *CLI) relationshipAddCommand() *cobra.Command {
	var attrFlags []string
	cmd := &cobra.Command{
		Use:     "add SOURCE TARGET",
		Short:   "Connect two entities, creating missing ones",
		Example: `  cybergraph relationship add "Person: Alice" "Domain: example.com" --attr relationship=Owns`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := cgerrors.ValidateEntityID(id); err != nil {
					return err
				}
			}
			attrs, err := parseAttrFlags(attrFlags)
			if err != nil {
				return err
			}
			g, err := c.loadOrCreateGraph()
			if err != nil {
				return err
			}
			if err := g.AddRelationship(args[0], args[1], attrs); err != nil {
				return pipeline.Classify(fmt.Errorf("%s -- %s: %w", args[0], args[1], err))
			}
			if err := c.saveGraph(g); err != nil {
				return err
			}
			printSuccess("Connected %s %s %s", StyleHighlight.Render(args[0]), StyleDim.Render("--"), StyleHighlight.Render(args[1]))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&attrFlags, "attr", nil, "attribute key=value (repeatable; JSON values are decoded)")
	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a JSON (or two-section CSV) graph document into the graph",
		Long: `Merge a graph document into the graph.

JSON documents have the shape
  {"entities": [{"name": ..., "attributes": {...}}],
   "relationships": [{"source": ..., "target": ..., "attributes": {...}}]}

Files ending in .csv are read in the two-section layout written by
'export --format csv'. Attributes merge into existing entities and
relationships; use --replace to discard the current graph instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(args[0], replace)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the graph instead of merging")
	return cmd
}

func (c *CLI) runImport(path string, replace bool) error {
	prog := newProgress(c.Logger)

	var opts []graph.Option
	if c.cfg.Graph.StrictRelationships {
		opts = append(opts, graph.WithStrictRelationships())
	}

	var imported *graph.Graph
	var err error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		imported, err = cgio.ImportCSV(path, opts...)
	} else {
		imported, err = cgio.ImportJSON(path, opts...)
	}
	if err != nil {
		return pipeline.Classify(err)
	}

	g := imported
	if !replace {
		if g, err = c.loadOrCreateGraph(); err != nil {
			return err
		}
		if err := graph.FromGraph(imported).ApplyTo(g); err != nil {
			return pipeline.Classify(err)
		}
	}
	if err := c.saveGraph(g); err != nil {
		return err
	}

	prog.done("imported", "entities", imported.EntityCount(), "relationships", imported.RelationshipCount())
	printSuccess("Imported %s", path)
	printFile(c.graphPath)
	printStats(g.EntityCount(), g.RelationshipCount(), false)
	return nil
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the entities of the graph as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph()
			if errors.Is(err, fs.ErrNotExist) {
				printInfo("No graph at %s", c.graphPath)
				printNextStep("Create one", appName+" demo")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, entityTable(g))
			printStats(g.EntityCount(), g.RelationshipCount(), false)
			return nil
		},
	}
}

// clusterCommand creates the cluster command.
func (c *CLI) clusterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster",
		Short: "Detect communities and store each entity's cluster label",
		Long: `Detect communities with the Louvain method and store each entity's
cluster index in its "cluster" attribute. Labels are recomputed on every
run; on symmetric graphs the assignment may differ between runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			runner := c.newRunner(cmd.Context())
			defer runner.Close()

			p := runner.Cluster(cmd.Context(), g)
			if err := c.saveGraph(g); err != nil {
				return err
			}

			printSuccess("Found %d clusters %s", len(p.Clusters), StyleDim.Render(fmt.Sprintf("(modularity %.3f)", p.Modularity)))
			for i, members := range p.Clusters {
				printKeyValue(fmt.Sprintf("cluster %d", i), strings.Join(members, ", "))
			}
			return nil
		},
	}
}
