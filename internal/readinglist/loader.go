package readinglist

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/libbycheck/internal/models"
)

// Column names, as found in a Goodreads library export.
const (
	ColumnTitle  = "Title"
	ColumnAuthor = "Author"
	ColumnShelf  = "Exclusive Shelf"
)

// DefaultShelf is the shelf kept when the list has a shelf column.
const DefaultShelf = "to-read"

var (
	// ErrMissingColumns is returned when the list lacks a title or author column.
	ErrMissingColumns = errors.New("reading list is missing required columns")
	// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Loader reads a reading list from disk
type Loader struct {
	path  string
	shelf string
}

// NewLoader creates a loader for the list at path. When shelf is not empty
// and the list has a shelf column, only books on that shelf are loaded.
func NewLoader(path, shelf string) *Loader {
	return &Loader{
		path:  path,
		shelf: strings.TrimSpace(shelf),
	}
}

// Load reads the list (CSV, JSONL or Parquet, chosen by extension)
func (l *Loader) Load() ([]models.RequestedBook, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	var (
		books    []models.RequestedBook
		hasShelf bool
		err      error
	)
	switch ext {
	case ".csv":
		books, hasShelf, err = l.loadCSV()
	case ".jsonl":
		books, hasShelf, err = l.loadJSONL()
	case ".json":
		books, hasShelf, err = l.loadJSON()
	case ".parquet":
		books, hasShelf, err = l.loadParquet()
	default:
		return nil, fmt.Errorf("%w: %q (supported: .csv, .json, .jsonl, .parquet)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	total := len(books)
	if hasShelf && l.shelf != "" {
		books = filterShelf(books, l.shelf)
	}
	slog.Debug("Reading list loaded", "path", l.path, "rows", total, "kept", len(books), "shelf", l.shelf)

	return books, nil
}

func filterShelf(books []models.RequestedBook, shelf string) []models.RequestedBook {
	kept := make([]models.RequestedBook, 0, len(books))
	for _, b := range books {
		if strings.EqualFold(strings.TrimSpace(b.Shelf), shelf) {
			kept = append(kept, b)
		}
	}
	return kept
}

func missingColumns(columns []string) error {
	return fmt.Errorf("%w: need %q and %q, available columns: %v", ErrMissingColumns, ColumnTitle, ColumnAuthor, columns)
}

func newBook(title, author, shelf string) (models.RequestedBook, bool) {
	book := models.RequestedBook{
		Title:  strings.TrimSpace(title),
		Author: strings.TrimSpace(author),
		Shelf:  strings.TrimSpace(shelf),
	}
	return book, book.Title != ""
}

// loadCSV reads a comma separated list with a header row
func (l *Loader) loadCSV() ([]models.RequestedBook, bool, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open reading list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, missingColumns(nil)
		}
		return nil, false, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	titleIdx, hasTitle := index[ColumnTitle]
	authorIdx, hasAuthor := index[ColumnAuthor]
	if !hasTitle || !hasAuthor {
		return nil, false, missingColumns(header)
	}
	shelfIdx, hasShelf := index[ColumnShelf]

	field := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	var books []models.RequestedBook
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}

		shelf := ""
		if hasShelf {
			shelf = field(row, shelfIdx)
		}
		book, ok := newBook(field(row, titleIdx), field(row, authorIdx), shelf)
		if !ok {
			slog.Debug("Skipping row without title", "line", line)
			continue
		}
		books = append(books, book)
	}

	return books, hasShelf, nil
}

// loadJSONL reads one JSON object per line. The first object decides which
// columns the list has.
func (l *Loader) loadJSONL() ([]models.RequestedBook, bool, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open reading list: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	var (
		books    []models.RequestedBook
		checked  bool
		hasShelf bool
	)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, false, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		if !checked {
			if hasShelf, err = objectColumns(obj); err != nil {
				return nil, false, err
			}
			checked = true
		}

		book, ok := newBook(stringValue(obj[ColumnTitle]), stringValue(obj[ColumnAuthor]), stringValue(obj[ColumnShelf]))
		if !ok {
			slog.Debug("Skipping row without title", "line", lineNum)
			continue
		}
		books = append(books, book)
	}

	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("error reading reading list: %w", err)
	}
	if !checked {
		return nil, false, missingColumns(nil)
	}

	return books, hasShelf, nil
}

// loadJSON reads a JSON array of objects. The first object decides which
// columns the list has.
func (l *Loader) loadJSON() ([]models.RequestedBook, bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open reading list: %w", err)
	}

	var objs []map[string]any
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, false, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	if len(objs) == 0 {
		return nil, false, missingColumns(nil)
	}

	hasShelf, err := objectColumns(objs[0])
	if err != nil {
		return nil, false, err
	}

	books := make([]models.RequestedBook, 0, len(objs))
	for i, obj := range objs {
		book, ok := newBook(stringValue(obj[ColumnTitle]), stringValue(obj[ColumnAuthor]), stringValue(obj[ColumnShelf]))
		if !ok {
			slog.Debug("Skipping row without title", "index", i)
			continue
		}
		books = append(books, book)
	}
	return books, hasShelf, nil
}

// objectColumns checks a JSON object for the required columns and reports
// whether it has a shelf.
func objectColumns(obj map[string]any) (bool, error) {
	_, hasTitle := obj[ColumnTitle]
	_, hasAuthor := obj[ColumnAuthor]
	if !hasTitle || !hasAuthor {
		columns := make([]string, 0, len(obj))
		for k := range obj {
			columns = append(columns, k)
		}
		return false, missingColumns(columns)
	}
	_, hasShelf := obj[ColumnShelf]
	return hasShelf, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// loadParquet reads a Parquet file whose columns are named like the CSV header
func (l *Loader) loadParquet() ([]models.RequestedBook, bool, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, false, fmt.Errorf("failed to open parquet: %w", err)
	}

	schema := pf.Schema()
	_, hasTitle := schema.Lookup(ColumnTitle)
	_, hasAuthor := schema.Lookup(ColumnAuthor)
	if !hasTitle || !hasAuthor {
		fields := schema.Fields()
		columns := make([]string, 0, len(fields))
		for _, f := range fields {
			columns = append(columns, f.Name())
		}
		return nil, false, missingColumns(columns)
	}
	_, hasShelf := schema.Lookup(ColumnShelf)

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.RequestedBook](pf)
	defer reader.Close()

	var books []models.RequestedBook
	rows := make([]models.RequestedBook, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if book, ok := newBook(row.Title, row.Author, row.Shelf); ok {
				books = append(books, book)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, false, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return books, hasShelf, nil
}
