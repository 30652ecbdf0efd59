// Package anchors implements the anchors command group.
package anchors

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/common"
	"github.com/jonesrussell/north-cloud/interlinker/internal/anchor"
)

// Command returns the anchors command with its validate and generate
// subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchors",
		Short: "Validate or generate anchor text",
	}
	cmd.AddCommand(validateCommand())
	cmd.AddCommand(generateCommand())
	return cmd
}

func validateCommand() *cobra.Command {
	var (
		title  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "validate PHRASE...",
		Short:   "Score a phrase as anchor text",
		Example: `  interlinker anchors validate "keyword research fundamentals" --title "Keyword Research Guide"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := anchor.Validate(strings.Join(args, " "), title)
			if asJSON {
				return writeJSON(cmd, v)
			}

			t := common.NewTable(cmd.OutOrStdout(), "Field", "Value")
			t.AppendRow([]any{"valid", v.Valid})
			t.AppendRow([]any{"score", v.Score})
			t.AppendRow([]any{"tier", v.Tier})
			if v.Reason != "" {
				t.AppendRow([]any{"reason", v.Reason})
			}
			t.AppendRow([]any{"words", v.Metrics.WordCount})
			t.AppendRow([]any{"meaningful", fmt.Sprintf("%.0f%%", v.Metrics.MeaningfulWordRatio*100)})
			if title != "" {
				t.AppendRow([]any{"relevance", fmt.Sprintf("%.2f", v.Metrics.SemanticRelevance)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "destination title used for relevance scoring")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func generateCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "generate TITLE...",
		Short:   "Derive ranked anchor candidates from a page title",
		Example: `  interlinker anchors generate "The Complete Guide to Keyword Research" --max 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates := anchor.Generate(strings.Join(args, " "), limit)
			if asJSON {
				return writeJSON(cmd, candidates)
			}
			if len(candidates) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no candidates")
				return err
			}

			t := common.NewTable(cmd.OutOrStdout(), "#", "Phrase", "Score")
			for i, c := range candidates {
				t.AppendRow([]any{i + 1, c.Phrase, c.Score})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "max", anchor.DefaultMaxCandidates, "maximum candidates")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
