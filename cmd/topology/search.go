package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/session"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(neighborsCmd)
}

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Aliases: []string{"s", "find"},
	Short:   "Search nodes by title or name",
	Long: `Search the graph for nodes whose title or name contains the query.
The backend returns at most 20 matches.

Examples:
  topology search dune
  topology search "le guin" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	results, err := newClient(newLogger(), nil).Search(ctx, query)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(stdout, "  No nodes found")
		return nil
	}

	banner(fmt.Sprintf("%d results for %q", len(results), query))
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{truncate(r.ID, idMaxWidth), string(r.Type), truncate(r.Label, labelMaxWidth)})
	}
	printTable([]string{"ID", "TYPE", "LABEL"}, rows, func(row, col int) *color.Color {
		if col == 1 {
			return colorFor(results[row].Type)
		}
		return nil
	})
	return nil
}

var neighborsCmd = &cobra.Command{
	Use:     "neighbors <node-id>",
	Aliases: []string{"nb"},
	Short:   "List the nodes linked to a node",
	Long: `List every node sharing a link with the given node, with the relation
type and its direction (→ outgoing, ← incoming).

Examples:
  topology neighbors book-dune`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	nbrs, err := newClient(newLogger(), nil).Neighbors(ctx, args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(nbrs)
	}
	if len(nbrs) == 0 {
		fmt.Fprintln(stdout, "  No neighbours")
		return nil
	}

	banner(fmt.Sprintf("%d neighbours of %s", len(nbrs), args[0]))
	rows := make([][]string, 0, len(nbrs))
	for _, n := range nbrs {
		rows = append(rows, []string{
			session.Direction(n),
			n.RelationType.Label(),
			truncate(n.ID, idMaxWidth),
			string(n.Type),
			truncate(n.Label, labelMaxWidth),
		})
	}
	printTable([]string{"", "RELATION", "ID", "TYPE", "LABEL"}, rows, func(row, col int) *color.Color {
		if col == 3 {
			return colorFor(nbrs[row].Type)
		}
		return nil
	})
	return nil
}
