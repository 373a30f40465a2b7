package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-topology/pkg/graph"
)

func newTestStore() *Store {
	return NewStore(DefaultDataset())
}

func TestDefaultDataset(t *testing.T) {
	ds := DefaultDataset()
	assert.Len(t, ds.Nodes, 18)
	assert.Len(t, ds.Links, 20)
	assert.Empty(t, ds.DanglingLinks())

	dune, ok := ds.Node("book-dune")
	require.True(t, ok)
	assert.Equal(t, graph.NodeTypeBook, dune.Type)
	assert.Equal(t, 1965, dune.Properties["publication_year"])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	data := []byte("nodes:\n  - {id: a, label: A, type: Book}\nlinks: []\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, ds.Nodes, 1)
	assert.Equal(t, "A", ds.Nodes[0].Label)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseDataset([]byte("nodes: {not: a list"))
	assert.Error(t, err)
}

func TestStoreGraphFilters(t *testing.T) {
	s := newTestStore()

	all := s.Graph(graph.Filter{})
	assert.Len(t, all.Nodes, 18)
	assert.Len(t, all.Links, 20)

	// Node filtering leaves links untouched, so most become dangling.
	books := s.Graph(graph.Filter{NodeTypes: []graph.NodeType{graph.NodeTypeBook}})
	assert.Len(t, books.Nodes, 6)
	assert.Len(t, books.Links, 20)
	assert.Len(t, books.DanglingLinks(), 17)

	written := s.Graph(graph.Filter{RelationTypes: []graph.RelationType{graph.RelationWrittenBy}})
	assert.Len(t, written.Nodes, 18)
	assert.Len(t, written.Links, 6)
}

func TestStoreGraphReturnsCopies(t *testing.T) {
	s := newTestStore()
	ds := s.Graph(graph.Filter{})
	ds.Nodes[0].Properties["title"] = "changed"

	again := s.Graph(graph.Filter{})
	assert.NotEqual(t, "changed", again.Nodes[0].Properties["title"])
}

func TestStoreSearch(t *testing.T) {
	s := newTestStore()

	hits := s.Search("DUNE")
	require.Len(t, hits, 2)
	assert.Equal(t, "book-dune", hits[0].ID)
	assert.Equal(t, "book-children-of-dune", hits[1].ID)

	assert.Empty(t, s.Search("zzz"))

	for i := 0; i < 30; i++ {
		s.CreateBook(graph.Book{Title: "Filler"})
	}
	assert.Len(t, s.Search("filler"), SearchLimit)
}

func TestStoreNeighbors(t *testing.T) {
	s := newTestStore()

	out, err := s.Neighbors("author-le-guin")
	require.NoError(t, err)
	require.Len(t, out, 3)

	var incoming, outgoing int
	for _, n := range out {
		if n.IsOutgoing {
			outgoing++
			assert.Equal(t, "author-gibson", n.ID)
			assert.Equal(t, graph.RelationInfluenced, n.RelationType)
		} else {
			incoming++
			assert.Equal(t, graph.RelationWrittenBy, n.RelationType)
		}
	}
	assert.Equal(t, 2, incoming)
	assert.Equal(t, 1, outgoing)

	_, err = s.Neighbors("nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestStoreBooksAndAuthors(t *testing.T) {
	s := newTestStore()
	year := 1969

	b := s.CreateBook(graph.Book{Title: "Ubik", PublicationYear: &year, Genre: "Science Fiction"})
	assert.NotEmpty(t, b.ID)

	books := s.ListBooks()
	assert.Len(t, books, 7)
	last := books[len(books)-1]
	assert.Equal(t, "Ubik", last.Title)
	require.NotNil(t, last.PublicationYear)
	assert.Equal(t, 1969, *last.PublicationYear)

	a := s.CreateAuthor(graph.Author{Name: "Philip K. Dick"})
	assert.NotEmpty(t, a.ID)
	assert.Len(t, s.ListAuthors(), 5)

	_, err := s.Connect(graph.RelationshipRequest{SourceID: b.ID, TargetID: a.ID, RelationType: graph.RelationWrittenBy})
	require.NoError(t, err)
	assert.Len(t, s.Graph(graph.Filter{}).Links, 21)

	require.NoError(t, s.DeleteBook(b.ID))
	assert.Len(t, s.ListBooks(), 6)
	assert.Len(t, s.Graph(graph.Filter{}).Links, 20)

	assert.ErrorIs(t, s.DeleteBook(b.ID), ErrNodeNotFound)
	assert.ErrorIs(t, s.DeleteBook("author-woolf"), ErrNodeNotFound)
}

func TestStoreConnectMissingNode(t *testing.T) {
	s := newTestStore()
	_, err := s.Connect(graph.RelationshipRequest{
		SourceID:     "book-dune",
		TargetID:     "missing",
		RelationType: graph.RelationSimilarTo,
	})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Len(t, s.Graph(graph.Filter{}).Links, 20)
}

func TestStoreImportMerges(t *testing.T) {
	s := newTestStore()

	res := s.Import(graph.ImportFile{
		Authors: []graph.Author{{Name: "Frank Herbert", Nationality: "US"}},
		Books:   []graph.Book{{Title: "Dune Messiah"}},
		Relationships: []graph.ImportRelationship{
			{Source: "Dune Messiah", Target: "Frank Herbert", Type: "WRITTEN_BY"},
			{Source: "Dune Messiah", Target: "Dune"},
			{Source: "Nobody", Target: "Dune"},
		},
	})

	assert.Equal(t, "Import completed", res.Message)
	assert.Equal(t, map[string]int{"books": 1, "authors": 1, "relationships": 3}, res.Imported)

	ds := s.Graph(graph.Filter{})
	assert.Len(t, ds.Nodes, 19)
	assert.Len(t, ds.Links, 22)

	herbert, ok := ds.Node("author-herbert")
	require.True(t, ok)
	assert.Equal(t, "US", herbert.Properties["nationality"])
	assert.Equal(t, 1920, herbert.Properties["birth_year"])

	var similar int
	for _, l := range ds.Links {
		if l.Target == "book-dune" && l.Type == string(graph.RelationSimilarTo) {
			similar++
		}
	}
	assert.Equal(t, 1, similar)

	// Re-importing the same relationships does not duplicate links.
	s.Import(graph.ImportFile{Relationships: []graph.ImportRelationship{{Source: "Dune Messiah", Target: "Dune"}}})
	assert.Len(t, s.Graph(graph.Filter{}).Links, 22)
}
