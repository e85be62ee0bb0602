package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/pantryplan-backend/internal/shopping"
)

func newDeficitsCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deficits",
		Short: "List pantry records that went negative",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			items, err := svc.Pantry.Deficits(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no deficits")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INGREDIENT\tQUANTITY\tUNIT")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", item.IngredientName, shopping.FormatQuantity(item.Quantity), item.Unit)
			}
			return tw.Flush()
		},
	}
}
