package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/libbycheck/internal/availability"
	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
	"github.com/lehigh-university-libraries/libbycheck/internal/matcher"
	"github.com/lehigh-university-libraries/libbycheck/internal/media"
	"github.com/lehigh-university-libraries/libbycheck/internal/normalize"
)

func newProbeCmd() *cobra.Command {
	var author string
	var limit int

	cmd := &cobra.Command{
		Use:   "probe <title>",
		Short: "Show the raw availability fields the catalog returns for a title",
		Long: `Searches the catalog for one title and prints, for the first results,
the fields matching and availability are derived from. Useful when a book
is reported as not found or not borrowable and you want to see why.`,
		Example: `  libbycheck probe "The Pact" --author "Sharon J. Bolton"
  libbycheck probe "Welcome to the Hyunam-dong Bookshop" --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			title := args[0]
			client := catalog.NewClient(cfg.Catalog())
			query := normalize.PreprocessTitle(title)

			records, err := client.Fetch(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search for %q failed: %w", query, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n==== PROBE for: %s ====\n", title)
			if len(records) == 0 {
				fmt.Fprintln(out, "No items returned")
				return nil
			}

			request := matcher.NewRequest(title, author)
			for i, r := range records {
				if i >= limit {
					break
				}
				printProbe(out, i+1, r, request)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Requested author, to show whether each item matches")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of items to show")

	return cmd
}

func printProbe(out io.Writer, idx int, r catalog.Record, request matcher.Request) {
	n := r.Normalize()
	authors := strings.Join(n.Authors, ", ")
	if authors == "" {
		authors = r.FirstCreatorName()
	}
	keys := r.Keys()
	sort.Strings(keys)

	fmt.Fprintf(out, "\n-- ITEM %d --\n", idx)
	fmt.Fprintln(out, "Title:", n.Title)
	fmt.Fprintln(out, "Author(s):", authors)
	fmt.Fprintln(out, "Matches request:", request.Matches(r))
	fmt.Fprintln(out, "Keys:", keys)
	fmt.Fprintln(out, "Formats:", n.Formats)
	fmt.Fprintln(out, "MediaType (detected):", media.Classify(n.Formats))
	fmt.Fprintln(out, "availabilityType:", n.Availability.AvailabilityType)
	fmt.Fprintln(out, "Has nested 'availability' object?:", r.HasNestedAvailability())
	if r.HasNestedAvailability() {
		nested := r.NestedAvailabilityKeys()
		sort.Strings(nested)
		fmt.Fprintln(out, "Nested availability keys:", nested)
	}
	fmt.Fprintln(out, "copiesOwned:", n.Availability.CopiesOwned)
	fmt.Fprintln(out, "copiesAvailable:", n.Availability.CopiesAvailable)
	fmt.Fprintln(out, "numberOfHolds:", n.Availability.NumberOfHolds)
	fmt.Fprintln(out, "estimatedWaitDays:", waitText(n.Availability.EstimatedWaitDays))
	fmt.Fprintln(out, "Verdict:", availability.Resolve(n.Availability))
}

func waitText(w availability.WaitEstimate) string {
	switch {
	case !w.Present:
		return "none"
	case !w.Valid:
		return "not a number"
	default:
		return fmt.Sprintf("%g", w.Days)
	}
}
