package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogResponse = `{"items":[
	{"title":{"main":"The Pact: A Thriller"},"creators":[{"name":"Sharon Bolton"},{"name":"Jane Doe"}],
	 "formats":[{"name":"Kindle Book"},{"name":"OverDrive Listen audiobook"}],
	 "availability":{"isAvailable":false,"isHoldable":true,"estimatedWaitDays":21}},
	{"title":"The Pact","creators":[{"name":"Jodi Picoult"}],"formats":["Kindle Book"],"isAvailable":true}
]}`

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "The Pact" {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(catalogResponse))
	}))
	t.Cleanup(server.Close)
	t.Setenv("LIBBY_BASE_URL", server.URL)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	newCatalogServer(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "goodreads.csv")
	output := filepath.Join(dir, "results.csv")
	list := "Title,Author,Exclusive Shelf\nThe Pact,Sharon Bolton,to-read\nUnlisted Book,Nobody,to-read\nThe Pact,Jodi Picoult,read\n"
	require.NoError(t, os.WriteFile(input, []byte(list), 0644))

	out, err := execute(t, "check", input, "--output", output, "--delay", "0s", "--library", "test-lib")
	require.NoError(t, err)
	assert.Contains(t, out, "Not Found:          1")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Title", "Availability", "MediaType", "WaitStatus"},
		{"The Pact: A Thriller (Sharon Bolton, Jane Doe)", "No", "Ebook", "Wait about 3 weeks"},
		{"The Pact: A Thriller (Sharon Bolton, Jane Doe)", "No", "Audiobook", "Wait about 3 weeks"},
		{"Unlisted Book", "Not found", "Not found", "Not found"},
	}, records)
}

func TestCheckCommandMissingColumns(t *testing.T) {
	var searched bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searched = true
	}))
	defer server.Close()
	t.Setenv("LIBBY_BASE_URL", server.URL)

	input := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name,Writer\nThe Pact,Sharon Bolton\n"), 0644))

	_, err := execute(t, "check", input, "--delay", "0s", "--output", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing required columns")
	assert.False(t, searched)
}

func TestCheckCommandRejectsBadOutput(t *testing.T) {
	_, err := execute(t, "check", "list.csv", "--output", "results.xlsx")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestProbeCommand(t *testing.T) {
	newCatalogServer(t)

	out, err := execute(t, "probe", "The Pact (2021)", "--author", "Sharon Bolton", "--limit", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "PROBE for: The Pact (2021)")
	assert.Contains(t, out, "-- ITEM 1 --")
	assert.NotContains(t, out, "-- ITEM 2 --")
	assert.Contains(t, out, "Matches request: true")
	assert.Contains(t, out, "MediaType (detected): Audiobook")
	assert.Contains(t, out, "Has nested 'availability' object?: true")
	assert.Contains(t, out, "estimatedWaitDays: 21")
	assert.Contains(t, out, "Verdict: Wait about 3 weeks")
}

func TestProbeCommandReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()
	t.Setenv("LIBBY_BASE_URL", server.URL)

	_, err := execute(t, "probe", "The Pact")
	assert.ErrorContains(t, err, "status 403")
}
