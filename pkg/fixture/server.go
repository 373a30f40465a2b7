package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/server/middleware"
	"github.com/dd0wney/cluso-topology/pkg/validation"
)

const (
	// APIPrefix is where the REST routes are mounted.
	APIPrefix = "/api"

	maxImportBytes = 10 << 20
	maxJSONBytes   = 1 << 20
)

// errorResponse mirrors the backend's {"detail": "..."} error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Server exposes a Store over HTTP.
type Server struct {
	store    *Store
	logger   logging.Logger
	recorder middleware.MetricsRecorder
	cors     *middleware.CORSConfig
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the request and error logger.
func WithServerLogger(l logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithServerMetrics records HTTP request metrics.
func WithServerMetrics(r middleware.MetricsRecorder) ServerOption {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithCORS overrides the allowed origins.
func WithCORS(cfg *middleware.CORSConfig) ServerOption {
	return func(s *Server) {
		s.cors = cfg
	}
}

// NewServer creates a server for store.
func NewServer(store *Store, opts ...ServerOption) *Server {
	s := &Server{
		store:  store,
		logger: logging.NewNopLogger(),
		cors:   middleware.DefaultCORSConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.PanicRecovery(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(s.logger))
	if s.recorder != nil {
		r.Use(middleware.Metrics(s.recorder))
	}
	r.Use(middleware.CORS(s.cors))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/graph/search", s.handleSearch)
		r.Get("/graph/neighbors/{id}", s.handleNeighbors)

		r.With(middleware.BodySizeLimit(maxJSONBytes)).Post("/books", s.handleCreateBook)
		r.Get("/books", s.handleListBooks)
		r.Delete("/books/{id}", s.handleDeleteBook)

		r.With(middleware.BodySizeLimit(maxJSONBytes)).Post("/authors", s.handleCreateAuthor)
		r.Get("/authors", s.handleListAuthors)

		r.With(middleware.BodySizeLimit(maxJSONBytes)).Post("/relationships/connect", s.handleConnect)
		r.With(middleware.BodySizeLimit(maxImportBytes)).Post("/relationships/import", s.handleImport)
	})
	return r
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var f graph.Filter
	for _, t := range splitList(r.URL.Query().Get("node_types")) {
		f.NodeTypes = append(f.NodeTypes, graph.NodeType(t))
	}
	for _, t := range splitList(r.URL.Query().Get("relation_types")) {
		f.RelationTypes = append(f.RelationTypes, graph.RelationType(t))
	}
	s.respondJSON(w, http.StatusOK, s.store.Graph(f))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "query: field required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.Search(q))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.Neighbors(chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var b graph.Book
	if !s.decodeValid(w, r, &b) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.CreateBook(b))
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.ListBooks())
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteBook(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Book deleted"})
}

func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var a graph.Author
	if !s.decodeValid(w, r, &a) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.CreateAuthor(a))
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.ListAuthors())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req graph.RelationshipRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	for k := range req.Properties {
		if err := validation.ValidatePropertyKey(k); err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	rel, err := s.store.Connect(req)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rel)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "file: field required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	var doc graph.ImportFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid import file: %v", err))
		return
	}
	for _, a := range doc.Authors {
		if err := validation.Struct(a); err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	for _, b := range doc.Books {
		if err := validation.Struct(b); err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	res := s.store.Import(doc)
	s.logger.Info("import completed",
		logging.Any("imported", res.Imported),
		logging.RequestID(middleware.GetRequestID(r)))
	s.respondJSON(w, http.StatusOK, res)
}

// decodeValid decodes a JSON body into v and validates it, answering 400 or
// 422 on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := validation.Struct(v); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNodeNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, errorResponse{Detail: detail})
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
