package cli

import (
	"strings"

	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	cgio "github.com/matzehuels/cybergraph/pkg/io"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatStr string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph as CSV, JSON or GEXF",
		Long: `Write the graph as CSV, JSON or GEXF.

CSV has two sections: "Entity,Type,Attributes" rows followed by
"Source,Target,Relationship" rows, attributes JSON-encoded. JSON is the
document accepted by 'import'. GEXF 1.2 opens in Gephi.

The format defaults to the extension of --output; the output defaults to
graph_summary.csv, graph_summary.json or graph.gexf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := exportFormat(formatStr, output)
			if err != nil {
				return err
			}
			if output == "" {
				output = cgio.DefaultFileName(format)
			}

			g, err := c.loadGraph()
			if err != nil {
				return err
			}
			runner := c.newRunner(cmd.Context())
			defer runner.Close()

			if err := runner.Export(cmd.Context(), g, output, format); err != nil {
				return err
			}
			printSuccess("Graph exported to %s", strings.ToUpper(string(format)))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatStr, "format", "f", "", "export format: csv, json or gexf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"csv", "json", "gexf"}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// exportFormat resolves --format, falling back to the output extension and
// then JSON.
func exportFormat(flag, output string) (cgio.Format, error) {
	if flag != "" {
		f, err := cgio.ParseFormat(flag)
		if err != nil {
			return "", cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "export format")
		}
		return f, nil
	}
	if output != "" {
		if f, err := cgio.FormatFromPath(output); err == nil {
			return f, nil
		}
	}
	return cgio.JSON, nil
}
