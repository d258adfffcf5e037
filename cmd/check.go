package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
	"github.com/lehigh-university-libraries/libbycheck/internal/readinglist"
	"github.com/lehigh-university-libraries/libbycheck/internal/reconcile"
	"github.com/lehigh-university-libraries/libbycheck/internal/results"
	"github.com/lehigh-university-libraries/libbycheck/internal/storage"
)

func newCheckCmd() *cobra.Command {
	var output string
	var perRecord bool

	cmd := &cobra.Command{
		Use:   "check <reading-list>",
		Short: "Check every book on a reading list",
		Long: `Reads a reading list (a Goodreads CSV export, a JSON array, JSONL or
Parquet with Title and Author columns), searches the catalog once per title
and writes one row per matched book and media type.

When the list has an "Exclusive Shelf" column only books on --shelf are
checked. Books that cannot be found get a single "Not found" row.`,
		Example: `  # Check the to-read shelf of a Goodreads export
  libbycheck check goodreads_library_export.csv

  # Another library, YAML output, faster pacing
  libbycheck check list.csv --library nypl --delay 500ms --output results.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := results.CheckPath(output); err != nil {
				return err
			}

			input := args[0]
			books, err := readinglist.NewLoader(input, cfg.Shelf).Load()
			if err != nil {
				return fmt.Errorf("failed to load reading list: %w", err)
			}
			slog.Info("Reading list loaded", "path", input, "books", len(books), "shelf", cfg.Shelf)

			client := catalog.NewClient(cfg.Catalog())
			cache := storage.New(0)
			driver := reconcile.NewDriver(client, reconcile.Options{
				Delay:     cfg.Delay,
				PerRecord: perRecord,
				Cache:     cache,
			})

			rows, runErr := driver.Run(cmd.Context(), books)
			slog.Debug("Catalog searches done", "books", len(books), "cached_queries", cache.Len())
			if runErr != nil {
				slog.Warn("Run interrupted, saving partial results", "err", runErr, "rows", len(rows))
			}

			run := results.RunInfo{
				LibraryID: cfg.LibraryID,
				Input:     input,
				Shelf:     cfg.Shelf,
				Timestamp: time.Now().Format("2006-01-02_15-04-05"),
			}
			if err := results.Save(output, run, rows); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}

			results.Summarize(rows).Print(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", output)

			return runErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", results.DefaultOutput, "Output file (.csv, .json, .yaml or .parquet)")
	cmd.Flags().Duration("delay", time.Second, "Pause between catalog queries")
	cmd.Flags().String("shelf", readinglist.DefaultShelf, "Only check books on this shelf (empty for all)")
	cmd.Flags().BoolVar(&perRecord, "per-record", false, "One row per catalog record instead of one per media type")

	return cmd
}
