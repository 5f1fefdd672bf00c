// Package investigate implements the investigate subcommand: a full
// search, fetch, fragment, and risk-scoring run for one target.
package investigate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cmdcommon "github.com/vigialabs/vigia/cmd/common"
)

// Command returns the investigate command.
func Command(opts func() cmdcommon.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "investigate <target>",
		Short: "Investigate a named target and score its coverage for risk",
		Long: `Searches the web for coverage of the target, extracts article text
from each result, fragments it, embeds each fragment, and scores it
against the labeled reference corpus. Prints the technical report when
the run finishes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewDeps(opts())
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			db, err := deps.OpenDatabase()
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			target := strings.Join(args, " ")
			report, err := deps.NewInvestigator(db).Investigate(cmd.Context(), target)
			if report != nil {
				fmt.Println(report.Render())
			}
			if err != nil {
				return fmt.Errorf("investigation failed: %w", err)
			}
			return nil
		},
	}
}
