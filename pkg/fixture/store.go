// Package fixture is an in-memory implementation of the graph backend's REST
// contract. It serves a dataset loaded from YAML and accepts the same
// create, connect and import calls as the real backend, which makes it
// suitable for tests and local demos.
package fixture

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-topology/pkg/graph"
)

// SearchLimit caps the number of search hits.
const SearchLimit = 20

var (
	// ErrNodeNotFound is returned when a referenced node does not exist.
	ErrNodeNotFound = errors.New("node not found")
)

//go:embed data/books.yaml
var defaultDataset []byte

// DefaultDataset returns the built-in demo dataset.
func DefaultDataset() *graph.Dataset {
	ds, err := ParseDataset(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("fixture: embedded dataset: %v", err))
	}
	return ds
}

// ParseDataset decodes a YAML dataset.
func ParseDataset(data []byte) (*graph.Dataset, error) {
	var ds graph.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}

// LoadFile reads a YAML dataset from path.
func LoadFile(path string) (*graph.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseDataset(data)
}

type storedLink struct {
	id string
	graph.Link
}

// Store holds the served graph. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	nodes []graph.Node
	index map[string]int
	links []storedLink
	newID func() string
}

// NewStore creates a store seeded with a copy of ds.
func NewStore(ds *graph.Dataset) *Store {
	s := &Store{newID: uuid.NewString}
	ds = ds.Clone()
	for _, n := range ds.Nodes {
		if n.Properties == nil {
			n.Properties = map[string]any{}
		}
		s.nodes = append(s.nodes, n)
	}
	for _, l := range ds.Links {
		s.links = append(s.links, storedLink{id: s.newID(), Link: l})
	}
	s.reindex()
	return s
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		if _, dup := s.index[n.ID]; !dup {
			s.index[n.ID] = i
		}
	}
}

// Graph returns the nodes of the requested types and the links of the
// requested relations. Links are filtered by relation only, so a node
// filter can leave links whose endpoints are absent.
func (s *Store) Graph(f graph.Filter) *graph.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &graph.Dataset{Nodes: []graph.Node{}, Links: []graph.Link{}}
	for _, n := range s.nodes {
		if len(f.NodeTypes) > 0 && !slices.Contains(f.NodeTypes, n.Type) {
			continue
		}
		out.Nodes = append(out.Nodes, n.Clone())
	}
	for _, l := range s.links {
		if len(f.RelationTypes) > 0 && !slices.Contains(f.RelationTypes, graph.RelationType(l.Type)) {
			continue
		}
		out.Links = append(out.Links, l.Link.Clone())
	}
	return out
}

// Search returns up to SearchLimit nodes whose title, name or label
// contains query, ignoring case.
func (s *Store) Search(query string) []graph.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	out := []graph.SearchResult{}
	for _, n := range s.nodes {
		if len(out) == SearchLimit {
			break
		}
		if !strings.Contains(strings.ToLower(searchText(n)), q) {
			continue
		}
		out = append(out, graph.SearchResult{
			ID:         n.ID,
			Label:      n.Label,
			Type:       n.Type,
			Properties: n.Clone().Properties,
		})
	}
	return out
}

func searchText(n graph.Node) string {
	for _, key := range []string{"title", "name"} {
		if v, ok := n.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	return n.Label
}

// Neighbors returns every node linked to id in either direction.
func (s *Store) Neighbors(id string) ([]graph.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.index[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	out := []graph.Neighbor{}
	for _, l := range s.links {
		var other string
		var outgoing bool
		switch id {
		case l.Source:
			other, outgoing = l.Target, true
		case l.Target:
			other = l.Source
		default:
			continue
		}
		i, ok := s.index[other]
		if !ok {
			continue
		}
		n := s.nodes[i]
		out = append(out, graph.Neighbor{
			ID:           n.ID,
			Label:        n.Label,
			Type:         n.Type,
			RelationType: graph.RelationType(l.Type),
			IsOutgoing:   outgoing,
			Properties:   n.Clone().Properties,
		})
	}
	return out, nil
}

// CreateBook stores a new book node.
func (s *Store) CreateBook(b graph.Book) graph.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.newID()
	s.addNode(graph.Node{ID: b.ID, Label: b.Title, Type: graph.NodeTypeBook, Properties: bookProperties(b)})
	return b
}

// ListBooks returns every book.
func (s *Store) ListBooks() []graph.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []graph.Book{}
	for _, n := range s.nodes {
		if n.Type == graph.NodeTypeBook {
			out = append(out, bookFromNode(n))
		}
	}
	return out
}

// DeleteBook removes a book and every link touching it.
func (s *Store) DeleteBook(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok || s.nodes[i].Type != graph.NodeTypeBook {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.nodes = slices.Delete(s.nodes, i, i+1)
	s.links = slices.DeleteFunc(s.links, func(l storedLink) bool {
		return l.Source == id || l.Target == id
	})
	s.reindex()
	return nil
}

// CreateAuthor stores a new author node.
func (s *Store) CreateAuthor(a graph.Author) graph.Author {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.newID()
	s.addNode(graph.Node{ID: a.ID, Label: a.Name, Type: graph.NodeTypeAuthor, Properties: authorProperties(a)})
	return a
}

// ListAuthors returns every author.
func (s *Store) ListAuthors() []graph.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []graph.Author{}
	for _, n := range s.nodes {
		if n.Type == graph.NodeTypeAuthor {
			out = append(out, authorFromNode(n))
		}
	}
	return out
}

// Connect links two existing nodes.
func (s *Store) Connect(r graph.RelationshipRequest) (graph.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{r.SourceID, r.TargetID} {
		if _, ok := s.index[id]; !ok {
			return graph.Relationship{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	l := storedLink{
		id: s.newID(),
		Link: graph.Link{
			Source:     r.SourceID,
			Target:     r.TargetID,
			Type:       string(r.RelationType),
			Properties: r.Properties,
		},
	}
	s.links = append(s.links, l)
	return graph.Relationship{
		ID:           l.id,
		SourceID:     r.SourceID,
		TargetID:     r.TargetID,
		RelationType: r.RelationType,
		Properties:   r.Properties,
	}, nil
}

// Import merges authors by name and books by title, overwriting the fields
// the file sets, then links records
// matched by name or title. Every entry of the file is counted, including
// relationships whose endpoints could not be matched.
func (s *Store) Import(f graph.ImportFile) graph.ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	imported := map[string]int{"books": 0, "authors": 0, "relationships": 0}

	for _, a := range f.Authors {
		if i, ok := s.findByProperty(graph.NodeTypeAuthor, "name", a.Name); ok {
			a.ID = s.nodes[i].ID
			maps.Copy(s.nodes[i].Properties, authorProperties(a))
		} else {
			a.ID = s.newID()
			s.addNode(graph.Node{ID: a.ID, Label: a.Name, Type: graph.NodeTypeAuthor, Properties: authorProperties(a)})
		}
		imported["authors"]++
	}

	for _, b := range f.Books {
		if i, ok := s.findByProperty(graph.NodeTypeBook, "title", b.Title); ok {
			b.ID = s.nodes[i].ID
			maps.Copy(s.nodes[i].Properties, bookProperties(b))
		} else {
			b.ID = s.newID()
			s.addNode(graph.Node{ID: b.ID, Label: b.Title, Type: graph.NodeTypeBook, Properties: bookProperties(b)})
		}
		imported["books"]++
	}

	for _, r := range f.Relationships {
		relType := r.Type
		if relType == "" {
			relType = string(graph.RelationSimilarTo)
		}
		src, okS := s.findByNameOrTitle(r.Source)
		tgt, okT := s.findByNameOrTitle(r.Target)
		if okS && okT && !s.hasLink(src, tgt, relType) {
			s.links = append(s.links, storedLink{
				id:   s.newID(),
				Link: graph.Link{Source: src, Target: tgt, Type: relType},
			})
		}
		imported["relationships"]++
	}

	return graph.ImportResult{Message: "Import completed", Imported: imported}
}

func (s *Store) addNode(n graph.Node) {
	s.index[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
}

func (s *Store) findByProperty(t graph.NodeType, key, value string) (int, bool) {
	for i, n := range s.nodes {
		if n.Type == t && n.Properties[key] == value {
			return i, true
		}
	}
	return 0, false
}

func (s *Store) findByNameOrTitle(v string) (string, bool) {
	for _, n := range s.nodes {
		if n.Properties["name"] == v || n.Properties["title"] == v {
			return n.ID, true
		}
	}
	return "", false
}

func (s *Store) hasLink(src, tgt, relType string) bool {
	return slices.ContainsFunc(s.links, func(l storedLink) bool {
		return l.Source == src && l.Target == tgt && l.Type == relType
	})
}
