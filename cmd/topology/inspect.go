package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

var (
	filterNodeTypes []string
	filterRelations []string
	inspectHighlight string
)

func init() {
	addFilterFlags(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectHighlight, "highlight", "", "Encode this node id as highlighted")
	rootCmd.AddCommand(inspectCmd)
}

// addFilterFlags registers the node and relation type filters. Values
// override the view section of the config.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&filterNodeTypes, "node-types", nil, "Node types to fetch (e.g. Book,Author)")
	cmd.Flags().StringSliceVar(&filterRelations, "relation-types", nil, "Relation types to fetch (e.g. WRITTEN_BY)")
}

// filterFromFlags returns the flag filter, or the configured one when no
// filter flag was given.
func filterFromFlags(cmd *cobra.Command) (graph.Filter, error) {
	if !cmd.Flags().Changed("node-types") && !cmd.Flags().Changed("relation-types") {
		return cfg.Filter(), nil
	}
	var f graph.Filter
	for _, s := range filterNodeTypes {
		t, ok := graph.ParseNodeType(s)
		if !ok {
			return f, fmt.Errorf("unknown node type %q", s)
		}
		f.NodeTypes = append(f.NodeTypes, t)
	}
	for _, s := range filterRelations {
		r, ok := graph.ParseRelationType(s)
		if !ok {
			return f, fmt.Errorf("unknown relation type %q", s)
		}
		f.RelationTypes = append(f.RelationTypes, r)
	}
	return f, nil
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print degree and label encoding for every node",
	Long: `Fetch the graph and print, for each node, its degree and the label
appearance the viewer would draw: font size, weight and colour.

Examples:
  topology inspect
  topology inspect --node-types Book,Author
  topology inspect --highlight book-dune --json`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

// inspectRow is the JSON form of one inspected node.
type inspectRow struct {
	Degree     int                      `json:"degree"`
	Descriptor visualization.Descriptor `json:"descriptor"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	logger := newLogger()
	timer := logging.StartTimer(logger, "fetch graph", logging.Operation("inspect"))
	ds, err := newClient(logger, nil).FetchGraph(ctx, f)
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End()

	degrees := visualization.ComputeDegrees(ds.Nodes, ds.Links)
	rows := make([]inspectRow, 0, len(ds.Nodes))
	for _, n := range ds.Nodes {
		rows = append(rows, inspectRow{
			Degree:     degrees[n.ID],
			Descriptor: visualization.Encode(n, degrees[n.ID], n.ID == inspectHighlight),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Degree > rows[j].Degree
	})

	if jsonOutput {
		return outputJSON(rows)
	}

	banner(fmt.Sprintf("%d nodes, %d links", len(ds.Nodes), len(ds.Links)))
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		d := r.Descriptor
		table = append(table, []string{
			truncate(d.NodeID, idMaxWidth),
			string(d.Type),
			truncate(d.Text, labelMaxWidth),
			strconv.Itoa(r.Degree),
			strconv.FormatFloat(d.FontSize, 'f', -1, 64),
			d.FontWeight,
			d.Color,
		})
	}
	printTable([]string{"ID", "TYPE", "LABEL", "DEGREE", "FONT", "WEIGHT", "COLOR"}, table, func(row, col int) *color.Color {
		switch {
		case col == 1:
			return colorFor(rows[row].Descriptor.Type)
		case col == 2 && rows[row].Descriptor.Highlighted:
			return brand
		}
		return nil
	})

	if dangling := ds.DanglingLinks(); len(dangling) > 0 {
		fmt.Fprintln(stdout)
		warn.Fprintf(stdout, "  %d links reference nodes outside this view\n", len(dangling))
	}
	return nil
}
