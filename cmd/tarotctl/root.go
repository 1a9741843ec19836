package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tarotfutura/futura/internal/i18n"
)

var (
	heading = color.New(color.FgMagenta, color.Bold)
	accent  = color.New(color.FgYellow)
	faint   = color.New(color.Faint)
	warn    = color.New(color.FgRed)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tarotctl",
		Short:         "Operator tool for Tarot Futura",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("lang", "es", "output language (es or en)")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if off, _ := cmd.Flags().GetBool("no-color"); off {
			color.NoColor = true
		}
	}

	root.AddCommand(
		newDrawCmd(),
		newQuizCmd(),
		newParseCmd(),
		newMigrateCmd(),
		newAdminCmd(),
		newTokenCmd(),
	)
	return root
}

func langFlag(cmd *cobra.Command) i18n.Lang {
	raw, _ := cmd.Flags().GetString("lang")
	return i18n.Parse(raw)
}
