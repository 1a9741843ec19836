package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tarotfutura/futura/internal/reading"
	"github.com/tarotfutura/futura/internal/tarot"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Split an oracle answer into past, present and future",
		Long:  "Reads the answer from file, or from stdin when no file or \"-\" is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			raw, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			p := reading.ParseSections(string(raw))
			w := cmd.OutOrStdout()
			faint.Fprintf(w, "outcome: %s\n", p.Outcome)
			if len(p.Missing) > 0 {
				warn.Fprintf(w, "missing: %v\n", p.Missing)
			}
			if p.Preamble != "" {
				faint.Fprintf(w, "preamble: %s\n", p.Preamble)
			}
			for _, pos := range tarot.Positions {
				heading.Fprintf(w, "\n%s\n", pos)
				fmt.Fprintln(w, p.Sections.Get(pos))
			}
			return nil
		},
	}
}
