package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lehigh-university-libraries/libbycheck/internal/availability"
	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
	"github.com/lehigh-university-libraries/libbycheck/internal/matcher"
	"github.com/lehigh-university-libraries/libbycheck/internal/media"
	"github.com/lehigh-university-libraries/libbycheck/internal/models"
	"github.com/lehigh-university-libraries/libbycheck/internal/normalize"
	"github.com/lehigh-university-libraries/libbycheck/internal/storage"
)

// Searcher is the catalog search service. It never fails; errors surface
// as an empty result.
type Searcher interface {
	Search(ctx context.Context, query string) []catalog.Record
}

// Options controls how a Driver runs.
type Options struct {
	// Delay is the minimum pause between consecutive catalog queries.
	Delay time.Duration

	// PerRecord emits one row per matched record and media type instead of
	// merging matches of the same media type into one row.
	PerRecord bool

	// Cache, when set, answers repeated queries without searching again.
	Cache *storage.SearchCache
}

// Driver reconciles requested books against the catalog, one at a time.
type Driver struct {
	searcher  Searcher
	limiter   *rate.Limiter
	perRecord bool
	cache     *storage.SearchCache
}

// NewDriver creates a driver around a catalog searcher.
func NewDriver(searcher Searcher, opts Options) *Driver {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Driver{
		searcher:  searcher,
		limiter:   rate.NewLimiter(limit, 1),
		perRecord: opts.PerRecord,
		cache:     opts.Cache,
	}
}

// Run checks every book in order. A book that cannot be found yields a
// not-found row and the batch carries on; only cancellation of ctx stops
// it early, in which case the rows so far are returned with the error.
func (d *Driver) Run(ctx context.Context, books []models.RequestedBook) ([]models.ResultRow, error) {
	rows := make([]models.ResultRow, 0, len(books))
	for i, book := range books {
		slog.Info("Checking book", "index", i+1, "total", len(books), "title", book.Title, "author", book.Author)

		bookRows, err := d.Check(ctx, book)
		if err != nil {
			return rows, fmt.Errorf("stopped after %d of %d books: %w", i, len(books), err)
		}
		rows = append(rows, bookRows...)
	}
	return rows, nil
}

// Check searches the catalog for one book and returns its rows. It waits
// for the query pacing first and only fails if ctx ends while waiting.
func (d *Driver) Check(ctx context.Context, book models.RequestedBook) ([]models.ResultRow, error) {
	records, err := d.search(ctx, normalize.PreprocessTitle(book.Title))
	if err != nil {
		return nil, err
	}

	matched := matcher.Match(records, book.Title, book.Author)

	slog.Debug("Matched catalog records", "title", book.Title, "results", len(records), "matches", len(matched))

	rows := Rows(matched, d.perRecord)
	if len(rows) == 0 {
		slog.Info("Book not found", "title", book.Title)
		return []models.ResultRow{models.NotFoundRow(book)}, nil
	}

	for _, row := range rows {
		slog.Info("Found book",
			"title", row.Title,
			"author", row.Author,
			"media_type", row.MediaType,
			"status", row.WaitStatus())
	}
	return rows, nil
}

func (d *Driver) search(ctx context.Context, query string) ([]catalog.Record, error) {
	if d.cache != nil {
		if records, ok := d.cache.Get(query); ok {
			slog.Debug("Using cached search results", "query", query, "items", len(records))
			return records, nil
		}
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	records := d.searcher.Search(ctx, query)
	// A search cut short by cancellation says nothing about the catalog.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.cache.Set(query, records)
	}
	return records, nil
}

// Rows turns matched records into result rows. Records are grouped by
// normalized title; within a group every record contributes one row per
// media type among its formats, all carrying that record's verdict. Unless
// perRecord is set, rows of the same media type in a group are merged,
// keeping the best verdict.
func Rows(matched []catalog.Record, perRecord bool) []models.ResultRow {
	var rows []models.ResultRow
	for _, group := range groupByTitle(matched) {
		groupRows := recordRows(group)
		if !perRecord {
			groupRows = merge(groupRows)
		}
		rows = append(rows, groupRows...)
	}
	return rows
}

func groupByTitle(records []catalog.Record) [][]catalog.Record {
	var groups [][]catalog.Record
	index := make(map[string]int)
	for _, r := range records {
		key := normalize.Key(r.Title())
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

func recordRows(records []catalog.Record) []models.ResultRow {
	var rows []models.ResultRow
	for _, r := range records {
		n := r.Normalize()
		verdict := availability.Resolve(n.Availability)
		author := strings.Join(n.Authors, ", ")

		for _, t := range media.Distinct(n.Formats) {
			rows = append(rows, models.ResultRow{
				Title:     n.Title,
				Author:    author,
				MediaType: t,
				Verdict:   verdict,
				Found:     true,
			})
		}
	}
	return rows
}

// merge keeps one row per media type, in media.Order.
func merge(rows []models.ResultRow) []models.ResultRow {
	best := make(map[media.Type]models.ResultRow, len(media.Order))
	for _, row := range rows {
		current, ok := best[row.MediaType]
		if !ok || row.Verdict.Better(current.Verdict) {
			best[row.MediaType] = row
		}
	}

	merged := make([]models.ResultRow, 0, len(best))
	for _, t := range media.Order {
		if row, ok := best[t]; ok {
			merged = append(merged, row)
		}
	}
	return merged
}
