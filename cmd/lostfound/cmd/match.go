package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match proposal maintenance",
}

var matchGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Re-score every pending lost item and propose new matches",
	Long:  "Runs batch reconciliation. Pairs that already have a proposal are proposed again.",
	RunE:  runMatchGenerate,
}

func init() {
	matchCmd.AddCommand(matchGenerateCmd)
}

func runMatchGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.services.Matches.GenerateAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("match generation stopped after %d items: %w", res.Processed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "processed %d lost items, proposed %d matches\n", res.Processed, res.Proposed)
	return nil
}
