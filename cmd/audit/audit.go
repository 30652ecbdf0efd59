// Package audit implements the audit command.
package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/common"
	linkaudit "github.com/jonesrussell/north-cloud/interlinker/internal/audit"
)

// Command returns the audit command.
func Command() *cobra.Command {
	var (
		doc      string
		siteHost string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "audit",
		Short:   "List the injected links in a document",
		Example: `  interlinker audit --doc linked.html --site-host example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if doc == "" {
				return fmt.Errorf("%w: --doc", common.ErrFlagRequired)
			}
			data, err := common.ReadInput(doc)
			if err != nil {
				return err
			}

			var opts []linkaudit.Option
			if siteHost != "" {
				opts = append(opts, linkaudit.WithSiteHost(siteHost))
			}
			report, err := linkaudit.Read(string(data), opts...)
			if err != nil {
				return fmt.Errorf("audit: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&doc, "doc", "", `HTML document to read ("-" for stdin)`)
	cmd.Flags().StringVar(&siteHost, "site-host", "", "host whose absolute links count as internal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report *linkaudit.Report) {
	out := cmd.OutOrStdout()

	t := common.NewTable(out, "Href", "Anchor", "Score", "Words", "Tier", "Reason")
	for _, l := range report.SemanticLinks {
		t.AppendRow([]any{l.Href, l.Text, fmt.Sprintf("%.2f", l.Score), l.WordCount, l.Tier, l.Reason})
	}
	t.Render()

	_, _ = fmt.Fprintf(out, "semantic: %d  internal: %d  external: %d\n",
		len(report.SemanticLinks), report.InternalLinks, report.ExternalLinks)
	if len(report.DuplicateURLs) > 0 {
		_, _ = fmt.Fprintf(out, "duplicate urls: %s\n", strings.Join(report.DuplicateURLs, ", "))
	}
	if len(report.DuplicateAnchors) > 0 {
		_, _ = fmt.Fprintf(out, "duplicate anchors: %s\n", strings.Join(report.DuplicateAnchors, ", "))
	}
}
