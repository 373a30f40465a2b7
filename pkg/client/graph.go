package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/validation"
)

// FetchGraph loads the graph, restricted by the filter. Empty filter lists
// are omitted from the query.
func (c *Client) FetchGraph(ctx context.Context, f graph.Filter) (*graph.Dataset, error) {
	q := url.Values{}
	if len(f.NodeTypes) > 0 {
		parts := make([]string, len(f.NodeTypes))
		for i, t := range f.NodeTypes {
			parts[i] = string(t)
		}
		q.Set("node_types", strings.Join(parts, ","))
	}
	if len(f.RelationTypes) > 0 {
		parts := make([]string, len(f.RelationTypes))
		for i, t := range f.RelationTypes {
			parts[i] = string(t)
		}
		q.Set("relation_types", strings.Join(parts, ","))
	}

	var ds graph.Dataset
	err := c.do(ctx, request{method: http.MethodGet, path: "/graph", endpoint: "graph", query: q}, &ds)
	if err != nil {
		return nil, err
	}
	if ds.Nodes == nil {
		ds.Nodes = []graph.Node{}
	}
	if ds.Links == nil {
		ds.Links = []graph.Link{}
	}
	return &ds, nil
}

// Search finds nodes whose title or name contains query.
func (c *Client) Search(ctx context.Context, query string) ([]graph.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: query is required")
	}
	var out []graph.SearchResult
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/graph/search",
		endpoint: "search",
		query:    url.Values{"query": {query}},
	}, &out)
	return out, err
}

// Neighbors lists the nodes adjacent to id.
func (c *Client) Neighbors(ctx context.Context, id string) ([]graph.Neighbor, error) {
	if err := validation.ValidateNodeID(id); err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}
	var out []graph.Neighbor
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/graph/neighbors/" + url.PathEscape(id),
		endpoint: "neighbors",
	}, &out)
	return out, err
}

// CreateBook creates a book and returns the stored record.
func (c *Client) CreateBook(ctx context.Context, b graph.Book) (*graph.Book, error) {
	if err := validation.Struct(b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	b.ID = ""
	var out graph.Book
	if err := c.do(ctx, request{method: http.MethodPost, path: "/books", endpoint: "books", body: b}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBooks returns every book.
func (c *Client) ListBooks(ctx context.Context) ([]graph.Book, error) {
	var out []graph.Book
	err := c.do(ctx, request{method: http.MethodGet, path: "/books", endpoint: "books"}, &out)
	return out, err
}

// DeleteBook removes a book by id.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	if err := validation.ValidateNodeID(id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/books/" + url.PathEscape(id),
		endpoint: "books",
	}, nil)
}

// CreateAuthor creates an author and returns the stored record.
func (c *Client) CreateAuthor(ctx context.Context, a graph.Author) (*graph.Author, error) {
	if err := validation.Struct(a); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	a.ID = ""
	var out graph.Author
	if err := c.do(ctx, request{method: http.MethodPost, path: "/authors", endpoint: "authors", body: a}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAuthors returns every author.
func (c *Client) ListAuthors(ctx context.Context) ([]graph.Author, error) {
	var out []graph.Author
	err := c.do(ctx, request{method: http.MethodGet, path: "/authors", endpoint: "authors"}, &out)
	return out, err
}

// Connect creates a relationship between two existing nodes.
func (c *Client) Connect(ctx context.Context, r graph.RelationshipRequest) (*graph.Relationship, error) {
	if err := validation.Struct(r); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	var out graph.Relationship
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/relationships/connect",
		endpoint: "connect",
		body:     r,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Import uploads a JSON import document as multipart field "file".
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) (*graph.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("import: read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	var out graph.ImportResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/relationships/import",
		endpoint:    "import",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that the backend answers a minimal graph request.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/graph",
		endpoint: "ping",
		query:    url.Values{"node_types": {string(graph.NodeTypeEra)}},
	}, nil)
}
