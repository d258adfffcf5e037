package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	c := NewClient(Config{
		BaseURL:   "https://thunder.example.com/",
		LibraryID: "sapln-adelaide",
		ClientID:  "dewey",
	})

	u, err := url.Parse(c.SearchURL("The Pact"))
	require.NoError(t, err)

	assert.Equal(t, "thunder.example.com", u.Host)
	assert.Equal(t, "/v2/libraries/sapln-adelaide/media", u.Path)

	q := u.Query()
	assert.Equal(t, "The Pact", q.Get("query"))
	assert.Equal(t, "24", q.Get("perPage"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "dewey", q.Get("x-client-id"))
	assert.Contains(t, q.Get("format"), "audiobook-overdrive")
	assert.Contains(t, q.Get("format"), "ebook-overdrive")
}

func TestSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"title":"Taboo","formats":["Kindle Book"]},"junk",null,{"title":{"main":"Taboo Two"}}],"totalItems":2}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, LibraryID: "lib", ClientID: "dewey"})
	records := c.Search(context.Background(), "Taboo")

	assert.Equal(t, "Taboo", gotQuery)
	require.Len(t, records, 2)
	assert.Equal(t, "Taboo", records[0].Title())
	assert.Equal(t, "Taboo Two", records[1].Title())
}

func TestSearchDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{"items":[{"title":"late"}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(Config{BaseURL: server.URL, LibraryID: "lib", Timeout: 50 * time.Millisecond})

			_, err := c.Fetch(context.Background(), "anything")
			assert.Error(t, err)

			records := c.Search(context.Background(), "anything")
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestSearchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c := NewClient(Config{BaseURL: server.URL, LibraryID: "lib"})
	assert.Empty(t, c.Search(context.Background(), "anything"))
}

func TestSearchMissingItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, LibraryID: "lib"})
	records, err := c.Fetch(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, records)
}
