package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarotfutura/futura/internal/tarot"
)

func newDrawCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw a past, present and future spread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang := langFlag(cmd)
			drawer := tarot.NewDrawer()
			if cmd.Flags().Changed("seed") {
				drawer = tarot.NewSeededDrawer(seed, seed)
			}

			spread, err := drawer.DrawThree(tarot.Catalog())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, dc := range spread {
				heading.Fprintf(w, "%-8s ", dc.Position)
				accent.Fprintf(w, "%2d %s\n", dc.Card.Number, dc.Card.DisplayName(lang))
				fmt.Fprintf(w, "         %s\n", dc.Card.Meaning.In(lang))
				faint.Fprintf(w, "         %s\n\n", dc.Card.Reading.In(lang))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible draw")
	return cmd
}
