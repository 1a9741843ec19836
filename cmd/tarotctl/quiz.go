package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tarotfutura/futura/internal/personality"
)

func newQuizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Take the personality quiz in the terminal",
		Long: `Answers are 1-4. Enter "b" to go back one question and "r" to
start over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := personality.Load()
			if err != nil {
				return err
			}
			lang := langFlag(cmd)
			w := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			quiz := engine.NewQuiz()

			for !quiz.Done() {
				q, _ := quiz.Current()
				heading.Fprintf(w, "\n[%d/%d] %s\n", quiz.Step()+1, quiz.Total(), q.Prompt.In(lang))
				for i, o := range q.Options {
					fmt.Fprintf(w, "  %d) %s\n", i+1, o.Label.In(lang))
				}
				fmt.Fprint(w, "> ")

				if !in.Scan() {
					if err := in.Err(); err != nil {
						return err
					}
					return fmt.Errorf("quiz abandoned at question %d", quiz.Step()+1)
				}
				switch answer := strings.TrimSpace(strings.ToLower(in.Text())); answer {
				case "b":
					quiz.Back()
				case "r":
					quiz.Restart()
				default:
					n, err := strconv.Atoi(answer)
					if err == nil {
						err = quiz.Answer(n - 1)
					}
					if err != nil {
						warn.Fprintf(w, "choose 1-%d\n", len(q.Options))
					}
				}
			}

			card, err := quiz.Result()
			if err != nil {
				return err
			}
			p := card.Localize(lang)
			heading.Fprintf(w, "\n%s\n", p.Name)
			accent.Fprintf(w, "%s\n", p.Summary)
			fmt.Fprintf(w, "%s\n", strings.Join(p.Traits, " · "))
			fmt.Fprintf(w, "\n%s\n", p.Description)
			return nil
		},
	}
}
