package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/validation"
)

var (
	bookYear        int
	bookGenre       string
	bookDescription string

	authorBirthYear   int
	authorDeathYear   int
	authorNationality string

	connectType string
)

func init() {
	addBookCmd.Flags().IntVar(&bookYear, "year", 0, "Publication year")
	addBookCmd.Flags().StringVar(&bookGenre, "genre", "", "Genre")
	addBookCmd.Flags().StringVar(&bookDescription, "description", "", "Description")

	addAuthorCmd.Flags().IntVar(&authorBirthYear, "birth-year", 0, "Birth year")
	addAuthorCmd.Flags().IntVar(&authorDeathYear, "death-year", 0, "Death year")
	addAuthorCmd.Flags().StringVar(&authorNationality, "nationality", "", "Nationality")

	connectCmd.Flags().StringVarP(&connectType, "type", "t", string(graph.RelationSimilarTo), "Relation type")

	rootCmd.AddCommand(addBookCmd, addAuthorCmd, connectCmd, importCmd, booksCmd, authorsCmd, deleteBookCmd)
}

// intFlag returns a pointer to v when the flag was set.
func intFlag(cmd *cobra.Command, name string, v int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

var addBookCmd = &cobra.Command{
	Use:     "add-book <title>",
	Short:   "Create a book node",
	Example: `  topology add-book "The Left Hand of Darkness" --year 1969 --genre "Science Fiction"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := graph.Book{
			Title:           args[0],
			PublicationYear: intFlag(cmd, "year", bookYear),
			Genre:           bookGenre,
			Description:     bookDescription,
		}
		if err := validation.Struct(b); err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		out, err := newClient(newLogger(), nil).CreateBook(ctx, b)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(out)
		}
		good.Fprintf(stdout, "✓ created book %s (%s)\n", out.Title, out.ID)
		return nil
	},
}

var addAuthorCmd = &cobra.Command{
	Use:     "add-author <name>",
	Short:   "Create an author node",
	Example: `  topology add-author "Octavia E. Butler" --birth-year 1947 --nationality American`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := graph.Author{
			Name:        args[0],
			BirthYear:   intFlag(cmd, "birth-year", authorBirthYear),
			DeathYear:   intFlag(cmd, "death-year", authorDeathYear),
			Nationality: authorNationality,
		}
		if err := validation.Struct(a); err != nil {
			return err
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		out, err := newClient(newLogger(), nil).CreateAuthor(ctx, a)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(out)
		}
		good.Fprintf(stdout, "✓ created author %s (%s)\n", out.Name, out.ID)
		return nil
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <source-id> <target-id>",
	Short: "Link two existing nodes",
	Long: `Create a relationship from source to target. Relation types:
WRITTEN_BY, BELONGS_TO_ERA, BELONGS_TO_MOVEMENT, HAS_CHARACTER, HAS_PLOT,
SIMILAR_TO (default), INFLUENCED.`,
	Example: `  topology connect book-dune author-herbert --type WRITTEN_BY`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rel, ok := graph.ParseRelationType(connectType)
		if !ok {
			return fmt.Errorf("unknown relation type %q", connectType)
		}
		req := graph.RelationshipRequest{SourceID: args[0], TargetID: args[1], RelationType: rel}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		out, err := newClient(newLogger(), nil).Connect(ctx, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(out)
		}
		good.Fprintf(stdout, "✓ %s -[%s]-> %s\n", out.SourceID, out.RelationType, out.TargetID)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Bulk import authors, books and relationships",
	Long: `Upload a JSON document of the form

  {"authors": [...], "books": [...],
   "relationships": [{"source": "<title or name>", "target": "...", "type": "WRITTEN_BY"}]}

Records that already exist are merged by title or name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		res, err := newClient(newLogger(), nil).Import(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(res)
		}
		msg := res.Message
		if msg == "" {
			msg = "import completed"
		}
		good.Fprintf(stdout, "✓ %s\n", msg)

		kinds := make([]string, 0, len(res.Imported))
		for k := range res.Imported {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		rows := make([][]string, 0, len(kinds))
		for _, k := range kinds {
			rows = append(rows, []string{k, strconv.Itoa(res.Imported[k])})
		}
		printTable([]string{"KIND", "IMPORTED"}, rows, nil)
		return nil
	},
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		books, err := newClient(newLogger(), nil).ListBooks(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(books)
		}
		rows := make([][]string, 0, len(books))
		for _, b := range books {
			year := ""
			if b.PublicationYear != nil {
				year = strconv.Itoa(*b.PublicationYear)
			}
			rows = append(rows, []string{truncate(b.ID, idMaxWidth), truncate(b.Title, labelMaxWidth), year, b.Genre})
		}
		printTable([]string{"ID", "TITLE", "YEAR", "GENRE"}, rows, nil)
		return nil
	},
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List authors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		authors, err := newClient(newLogger(), nil).ListAuthors(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(authors)
		}
		rows := make([][]string, 0, len(authors))
		for _, a := range authors {
			rows = append(rows, []string{truncate(a.ID, idMaxWidth), truncate(a.Name, labelMaxWidth), a.Nationality})
		}
		printTable([]string{"ID", "NAME", "NATIONALITY"}, rows, nil)
		return nil
	},
}

var deleteBookCmd = &cobra.Command{
	Use:   "delete-book <id>",
	Short: "Delete a book and its links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		if err := newClient(newLogger(), nil).DeleteBook(ctx, args[0]); err != nil {
			return err
		}
		good.Fprintf(stdout, "✓ deleted %s\n", args[0])
		return nil
	},
}
