package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-topology/pkg/fixture"
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
)

func newFixtureClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(fixture.NewServer(fixture.NewStore(fixture.DefaultDataset())).Handler())
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRateLimit(1000, 100)}, opts...)
	return New(srv.URL+fixture.APIPrefix, opts...)
}

func TestNewTrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://x/api", New("http://x/api/").BaseURL())
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}

func TestFetchGraphEncodesFilter(t *testing.T) {
	var gotQuery, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotID = r.Header.Get(RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nodes":null,"links":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ds, err := c.FetchGraph(context.Background(), graph.Filter{
		NodeTypes:     []graph.NodeType{graph.NodeTypeBook, graph.NodeTypeAuthor},
		RelationTypes: []graph.RelationType{graph.RelationWrittenBy},
	})
	require.NoError(t, err)
	assert.Equal(t, "node_types=Book%2CAuthor&relation_types=WRITTEN_BY", gotQuery)
	assert.NotEmpty(t, gotID)
	assert.NotNil(t, ds.Nodes)
	assert.NotNil(t, ds.Links)

	_, err = c.FetchGraph(context.Background(), graph.Filter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestAPIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Book or author not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Neighbors(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Book or author not found", apiErr.Detail)
	assert.Contains(t, err.Error(), "status 404")
}

func TestErrorDetailFallbacks(t *testing.T) {
	assert.Equal(t, "plain text", errorDetail(strings.NewReader(" plain text\n")))
	assert.Equal(t, "boom", errorDetail(strings.NewReader(`{"error":"boom"}`)))
	assert.Equal(t, `[{"loc":["title"]}]`, errorDetail(strings.NewReader(`{"detail":[{"loc":["title"]}]}`)))
	assert.Equal(t, "", errorDetail(strings.NewReader("")))
}

func TestInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListBooks(context.Background())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := metrics.NewRegistry()
	c := New(srv.URL, WithRateLimit(1000, 100), WithMetrics(reg), WithBreaker(BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.ListAuthors(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.True(t, c.BreakerOpen())

	_, err := c.ListAuthors(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), hits.Load())

	var m dto.Metric
	require.NoError(t, reg.ClientRequestsTotal.WithLabelValues("authors", "unavailable").Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
	require.NoError(t, reg.ClientBreakerState.Write(&m))
	assert.Equal(t, 2.0, m.GetGauge().GetValue())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRateLimit(1000, 100))
	for i := 0; i < 10; i++ {
		_, err := c.ListBooks(context.Background())
		require.Error(t, err)
	}
	assert.False(t, c.BreakerOpen())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := New("http://127.0.0.1:0", WithRateLimit(0.001, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := New("http://unused").Search(context.Background(), "  ")
	assert.Error(t, err)
}

func TestClientAgainstFixture(t *testing.T) {
	c := newFixtureClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	ds, err := c.FetchGraph(ctx, graph.Filter{})
	require.NoError(t, err)
	assert.Len(t, ds.Nodes, 18)

	hits, err := c.Search(ctx, "left hand")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "book-left-hand", hits[0].ID)

	nbrs, err := c.Neighbors(ctx, "book-dune")
	require.NoError(t, err)
	assert.Len(t, nbrs, 6)

	year := 1969
	book, err := c.CreateBook(ctx, graph.Book{ID: "ignored", Title: "Ubik", PublicationYear: &year})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", book.ID)

	author, err := c.CreateAuthor(ctx, graph.Author{Name: "Philip K. Dick"})
	require.NoError(t, err)

	rel, err := c.Connect(ctx, graph.RelationshipRequest{
		SourceID:     book.ID,
		TargetID:     author.ID,
		RelationType: graph.RelationWrittenBy,
	})
	require.NoError(t, err)
	assert.Equal(t, graph.RelationWrittenBy, rel.RelationType)
	assert.NotEmpty(t, rel.ID)

	_, err = c.Connect(ctx, graph.RelationshipRequest{
		SourceID:     book.ID,
		TargetID:     "missing",
		RelationType: graph.RelationWrittenBy,
	})
	assert.True(t, IsNotFound(err))

	books, err := c.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 7)

	require.NoError(t, c.DeleteBook(ctx, book.ID))
	authors, err := c.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 5)
}

func TestClientValidatesBeforeSending(t *testing.T) {
	c := New("http://unused")
	ctx := context.Background()

	_, err := c.CreateBook(ctx, graph.Book{})
	assert.Error(t, err)
	_, err = c.CreateAuthor(ctx, graph.Author{})
	assert.Error(t, err)
	_, err = c.Connect(ctx, graph.RelationshipRequest{SourceID: "a", TargetID: "b", RelationType: "LIKES"})
	assert.Error(t, err)
	assert.Error(t, c.DeleteBook(ctx, ""))
	_, err = c.Neighbors(ctx, "")
	assert.Error(t, err)
	_, err = c.Neighbors(ctx, "book dune/../x")
	assert.ErrorContains(t, err, "invalid characters")
	assert.Error(t, c.DeleteBook(ctx, "a?b"))
}

func TestClientImport(t *testing.T) {
	c := newFixtureClient(t)
	doc := `{"authors":[{"name":"Philip K. Dick"}],"books":[{"title":"Ubik"}],"relationships":[{"source":"Ubik","target":"Philip K. Dick","type":"WRITTEN_BY"}]}`

	res, err := c.Import(context.Background(), "import.json", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Import completed", res.Message)
	assert.Equal(t, map[string]int{"books": 1, "authors": 1, "relationships": 1}, res.Imported)

	nbrs, err := c.Neighbors(context.Background(), "book-dune")
	require.NoError(t, err)
	assert.Len(t, nbrs, 6)
}
