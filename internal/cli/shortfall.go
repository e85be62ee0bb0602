package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatText  = "text"
)

func newShortfallCommand(v *viper.Viper, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shortfall",
		Short: "Print what to buy for the planned meals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := rangeFromFlags(v)
			if err != nil {
				return err
			}
			servings := v.GetInt("servings")
			if servings <= 0 {
				return shopping.ErrInvalidServings
			}
			format := v.GetString("format")
			switch format {
			case formatTable, formatCSV, formatText:
			default:
				return fmt.Errorf("--format must be %s, %s or %s", formatTable, formatCSV, formatText)
			}

			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := svc.Shopping.GetShortfall(cmd.Context(), rng, servings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatCSV:
				fmt.Fprintln(out, shopping.CSV(report.Lines))
			case formatText:
				fmt.Fprintln(out, shopping.Text(rng, report.Lines, nil))
			default:
				if err := writeTable(out, report.Lines); err != nil {
					return err
				}
			}
			for _, skipped := range report.SkippedMeals {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped meal %s on %s: %s\n", skipped.MealID, skipped.Date, skipped.Reason)
			}
			return nil
		},
	}
	cmd.Flags().String("start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().String("week", "", "use the Monday-first week containing this day")
	cmd.Flags().Int("servings", 1, "servings cooked per meal")
	cmd.Flags().String("format", formatTable, "output format: table, csv or text")
	bind(v, cmd, "start", "end", "week", "servings", "format")
	return cmd
}

// rangeFromFlags resolves --week, or --start/--end with missing bounds taken
// from the week of the other bound (or of today).
func rangeFromFlags(v *viper.Viper) (dates.Range, error) {
	week, err := parseOptionalDate("week", v.GetString("week"))
	if err != nil {
		return dates.Range{}, err
	}
	if !week.IsZero() {
		return dates.WeekOf(week), nil
	}

	start, err := parseOptionalDate("start", v.GetString("start"))
	if err != nil {
		return dates.Range{}, err
	}
	end, err := parseOptionalDate("end", v.GetString("end"))
	if err != nil {
		return dates.Range{}, err
	}

	anchor := dates.Today()
	switch {
	case !start.IsZero():
		anchor = start
	case !end.IsZero():
		anchor = end
	}
	fallback := dates.WeekOf(anchor)
	if start.IsZero() {
		start = fallback.Start
	}
	if end.IsZero() {
		end = fallback.End
	}

	rng := dates.Range{Start: start, End: end}
	if err := rng.Validate(0); err != nil {
		return dates.Range{}, err
	}
	return rng, nil
}

func writeTable(out io.Writer, lines []shopping.ShortfallLine) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tQUANTITY\tUNIT")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", line.Name, shopping.FormatQuantity(line.Quantity), line.Unit)
	}
	return tw.Flush()
}
