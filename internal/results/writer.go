package results

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/libbycheck/internal/models"
)

// DefaultOutput is the output file used when none is given.
const DefaultOutput = "libby_search_results.csv"

// ErrUnsupportedFormat is returned for output extensions with no writer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Header is the column order of tabular output.
var Header = []string{"Title", "Availability", "MediaType", "WaitStatus"}

// Row is one output table row
type Row struct {
	Title        string `json:"Title" yaml:"title" parquet:"Title"`
	Availability string `json:"Availability" yaml:"availability" parquet:"Availability"`
	MediaType    string `json:"MediaType" yaml:"mediatype" parquet:"MediaType"`
	WaitStatus   string `json:"WaitStatus" yaml:"waitstatus" parquet:"WaitStatus"`
}

// RunInfo describes the run that produced a table
type RunInfo struct {
	LibraryID string `json:"library_id" yaml:"libraryid"`
	Input     string `json:"input" yaml:"input"`
	Shelf     string `json:"shelf,omitempty" yaml:"shelf,omitempty"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Report is the document written for JSON and YAML output
type Report struct {
	Run     RunInfo `json:"run" yaml:"run"`
	Summary Summary `json:"summary" yaml:"summary"`
	Results []Row   `json:"results" yaml:"results"`
}

// Table converts result rows to output rows
func Table(rows []models.ResultRow) []Row {
	table := make([]Row, 0, len(rows))
	for _, r := range rows {
		table = append(table, Row{
			Title:        r.DisplayTitle(),
			Availability: r.Availability(),
			MediaType:    r.MediaTypeText(),
			WaitStatus:   r.WaitStatus(),
		})
	}
	return table
}

// CheckPath reports whether path has an extension Save can write.
func CheckPath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json", ".yaml", ".yml", ".parquet":
		return nil
	default:
		return fmt.Errorf("%w: %q (supported: .csv, .json, .yaml, .parquet)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Save writes rows to path in the format given by its extension
func Save(path string, run RunInfo, rows []models.ResultRow) error {
	if err := CheckPath(path); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	table := Table(rows)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return saveCSV(path, table)
	case ".parquet":
		if err := parquet.WriteFile(path, table); err != nil {
			return fmt.Errorf("failed to write parquet file: %w", err)
		}
		return nil
	}

	report := Report{Run: run, Summary: Summarize(rows), Results: table}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(&report, "", "  ")
	} else {
		data, err = yaml.Marshal(&report)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

func saveCSV(path string, table []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range table {
		if err := w.Write([]string{r.Title, r.Availability, r.MediaType, r.WaitStatus}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return file.Close()
}
