// Package session holds the application flow around a visualization.View:
// loading the filtered graph, search, the detail panel with neighbours, the
// selection flows and create/import followed by a reload.
//
// Each network-bound flow comes in two halves. The Begin/Apply methods
// mutate state and are meant for the host's event loop; the fetch runs
// wherever the host likes (a tea.Cmd goroutine, for instance). The combined
// methods (Load, OpenDetail, CreateBook, ...) do both in one blocking call.
// A Session is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// ErrLoadMessage is the single user-facing error for any failed graph load.
// Loads are never retried automatically.
var ErrLoadMessage = errors.New("failed to load graph data; check that the backend server is running")

// Backend is the part of the REST client the session drives.
type Backend interface {
	FetchGraph(ctx context.Context, f graph.Filter) (*graph.Dataset, error)
	Search(ctx context.Context, query string) ([]graph.SearchResult, error)
	Neighbors(ctx context.Context, id string) ([]graph.Neighbor, error)
	CreateBook(ctx context.Context, b graph.Book) (*graph.Book, error)
	CreateAuthor(ctx context.Context, a graph.Author) (*graph.Author, error)
	Connect(ctx context.Context, r graph.RelationshipRequest) (*graph.Relationship, error)
	Import(ctx context.Context, filename string, r io.Reader) (*graph.ImportResult, error)
}

// Session is the state of one viewer.
type Session struct {
	backend Backend
	view    *visualization.View
	logger  logging.Logger

	filter  graph.Filter
	loading bool
	loadErr error
	loads   int

	detail *Detail
}

// New creates a session over view. Clicks on the view open the detail
// panel for the clicked node.
func New(backend Backend, view *visualization.View, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Session{
		backend: backend,
		view:    view,
		logger:  logger.With(logging.Component("session")),
	}
	view.OnNodeClick(s.BeginDetail)
	return s
}

// View returns the driven view.
func (s *Session) View() *visualization.View {
	return s.view
}

// Filter returns the filter of the current or last load.
func (s *Session) Filter() graph.Filter {
	return s.filter
}

// Loading reports whether a load has begun but not been applied.
func (s *Session) Loading() bool {
	return s.loading
}

// LoadError returns ErrLoadMessage after a failed load, nil otherwise.
func (s *Session) LoadError() error {
	return s.loadErr
}

// Loads counts successfully applied loads.
func (s *Session) Loads() int {
	return s.loads
}

// BeginLoad marks a load of f as in progress and clears any previous error.
func (s *Session) BeginLoad(f graph.Filter) {
	s.filter = f
	s.loading = true
	s.loadErr = nil
}

// ApplyLoad shows the fetched dataset. On failure the previous dataset
// stays on screen and the error is replaced by ErrLoadMessage.
func (s *Session) ApplyLoad(ds *graph.Dataset, err error) error {
	s.loading = false
	if err != nil {
		s.logger.Error("graph load failed", logging.Error(err))
		s.loadErr = ErrLoadMessage
		return ErrLoadMessage
	}
	s.loads++
	changed := s.view.SetDataset(ds)
	s.logger.Info("graph loaded",
		logging.Int("nodes", len(ds.Nodes)),
		logging.Int("links", len(ds.Links)),
		logging.Bool("changed", changed))
	return nil
}

// Load fetches the graph restricted by f and shows it.
func (s *Session) Load(ctx context.Context, f graph.Filter) error {
	s.BeginLoad(f)
	ds, err := s.backend.FetchGraph(ctx, f)
	return s.ApplyLoad(ds, err)
}

// Reload repeats the last load with the same filter.
func (s *Session) Reload(ctx context.Context) error {
	return s.Load(ctx, s.filter)
}

// Search returns the backend's matches for query. A blank query returns no
// results without a request.
func (s *Session) Search(ctx context.Context, query string) ([]graph.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return s.backend.Search(ctx, query)
}

// SelectSearchResult highlights and focuses id for the search timeout.
func (s *Session) SelectSearchResult(id string) []visualization.Wakeup {
	return s.view.SelectSearchResult(id)
}

// Click handles a pick on id: the detail panel opens for the node and the
// camera flies to it. The caller fetches neighbours for the returned node.
func (s *Session) Click(id string) (graph.Node, error) {
	if err := s.view.Click(id); err != nil {
		return graph.Node{}, err
	}
	n, _ := s.view.Node(id)
	return n, nil
}

// SelectNeighbor moves the detail panel to a node picked from the neighbour
// list and highlights it for the neighbour timeout.
func (s *Session) SelectNeighbor(id string) (graph.Node, visualization.Wakeup, error) {
	n, w, err := s.view.SelectNeighbor(id)
	if err != nil {
		return graph.Node{}, visualization.Wakeup{}, err
	}
	s.BeginDetail(n)
	return n, w, nil
}

// Expire delivers a selection wakeup.
func (s *Session) Expire(w visualization.Wakeup) bool {
	return s.view.Expire(w)
}

// CreateBook creates a book and reloads the graph.
func (s *Session) CreateBook(ctx context.Context, b graph.Book) (*graph.Book, error) {
	out, err := s.backend.CreateBook(ctx, b)
	if err != nil {
		return nil, err
	}
	s.reloadAfter(ctx, "create book")
	return out, nil
}

// CreateAuthor creates an author and reloads the graph.
func (s *Session) CreateAuthor(ctx context.Context, a graph.Author) (*graph.Author, error) {
	out, err := s.backend.CreateAuthor(ctx, a)
	if err != nil {
		return nil, err
	}
	s.reloadAfter(ctx, "create author")
	return out, nil
}

// Connect links two nodes and reloads the graph.
func (s *Session) Connect(ctx context.Context, r graph.RelationshipRequest) (*graph.Relationship, error) {
	out, err := s.backend.Connect(ctx, r)
	if err != nil {
		return nil, err
	}
	s.reloadAfter(ctx, "connect")
	return out, nil
}

// Import uploads an import document and reloads the graph.
func (s *Session) Import(ctx context.Context, filename string, r io.Reader) (*graph.ImportResult, error) {
	out, err := s.backend.Import(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	s.reloadAfter(ctx, "import")
	return out, nil
}

// reloadAfter reloads following a successful write. A failed reload shows
// up as LoadError; the write itself still succeeded.
func (s *Session) reloadAfter(ctx context.Context, op string) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload after write failed", logging.Operation(op))
	}
}
