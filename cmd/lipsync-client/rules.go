package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var errNoRules = errors.New("no rules for letter")

func newRulesCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [letter]",
		Short: "Print the pronunciation rules",
		Long: `Print the pronunciation rules of one letter in priority order, or the
list of letters that have rules when no letter is given.

Examples:
  lipsync-client rules
  lipsync-client rules g`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := state.engine.Table()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				letters := table.Letters()

				names := make([]string, 0, len(letters))
				for _, letter := range letters {
					names = append(names, string(letter))
				}

				_, err := fmt.Fprintln(out, strings.Join(names, " "))

				return err
			}

			first, _ := utf8.DecodeRuneInString(args[0])
			letter := unicode.ToUpper(first)

			if !table.Has(letter) {
				return fmt.Errorf("%w %q", errNoRules, letter)
			}

			for index, rule := range table.Rules(letter) {
				_, err := fmt.Fprintf(out, "%2d  %s\n", index+1, rule.String())
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}
