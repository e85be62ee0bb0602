package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
)

func newWeekCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the Monday-first week around a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			anchor, err := parseOptionalDate("date", v.GetString("date"))
			if err != nil {
				return err
			}
			if anchor.IsZero() {
				anchor = dates.Today()
			}
			week := dates.WeekOf(anchor.AddDays(7 * v.GetInt("offset")))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, week)
			for _, day := range week.Days() {
				fmt.Fprintf(out, "%s %s\n", day.Time().Weekday().String()[:3], day)
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "any day of the week (YYYY-MM-DD, default today)")
	cmd.Flags().Int("offset", 0, "weeks to move forward (negative for back)")
	bind(v, cmd, "date", "offset")
	return cmd
}

func parseOptionalDate(flag, raw string) (dates.Date, error) {
	if raw == "" {
		return dates.Date{}, nil
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return dates.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}
