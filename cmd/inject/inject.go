// Package inject implements the inject command.
package inject

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/interlinker/cmd/common"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/targets"
)

const outputFileMode = 0o644

type flags struct {
	doc        string
	targets    string
	currentURL string
	out        string
	asJSON     bool
	opts       injector.Options
}

// Command returns the inject command.
func Command() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Insert internal links into an HTML document",
		Long: `Reads an HTML document and a YAML or JSON list of destinations
({url, title}), inserts links, and writes the updated document. A summary of
insertions and skip reasons is printed once the run finishes.`,
		Example: `  interlinker inject --doc post.html --targets targets.yaml --out linked.html
  cat post.html | interlinker inject --doc - --targets targets.yaml --max-links 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.doc, "doc", "", `HTML document to read ("-" for stdin)`)
	cmd.Flags().StringVar(&f.targets, "targets", "", "YAML or JSON file of destinations")
	cmd.Flags().StringVar(&f.currentURL, "current-url", "", "URL of the document itself, never linked")
	cmd.Flags().StringVar(&f.out, "out", "", "write the document here instead of stdout")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().IntVar(&f.opts.MinLinks, "min-links", 0, "warn when fewer links are placed")
	cmd.Flags().IntVar(&f.opts.MaxLinks, "max-links", 0, "maximum links to place")
	cmd.Flags().Float64Var(&f.opts.MinRelevance, "min-relevance", 0, "minimum match relevance (0-1)")
	cmd.Flags().IntVar(&f.opts.MinDistance, "min-distance", 0, "minimum characters between links")
	cmd.Flags().IntVar(&f.opts.MaxPerSection, "max-per-section", 0, "maximum links per section")
	cmd.Flags().StringVar(&f.opts.LinkStyle, "link-style", "", "inline style for inserted links")

	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	if f.doc == "" {
		return fmt.Errorf("%w: --doc", common.ErrFlagRequired)
	}
	if f.targets == "" {
		return fmt.Errorf("%w: --targets", common.ErrFlagRequired)
	}

	deps, err := common.NewCommandDeps()
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	document, err := common.ReadInput(f.doc)
	if err != nil {
		return err
	}
	dests, err := targets.Load(f.targets)
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}

	inj, err := deps.NewInjector()
	if err != nil {
		return err
	}

	opts := mergeOptions(cmd, inj.Options(), f.opts)
	result, err := inj.Inject(injector.Request{
		Document:   string(document),
		Targets:    dests,
		CurrentURL: f.currentURL,
		Options:    &opts,
	})
	if err != nil {
		return fmt.Errorf("inject: %w", err)
	}

	deps.Logger.Debug("Injection finished",
		logger.Int("insertions", len(result.Insertions)),
		logger.Int("skipped", len(result.Skipped)),
	)

	if f.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	summary := cmd.OutOrStdout()
	if f.out == "" {
		if _, writeErr := io.WriteString(cmd.OutOrStdout(), result.Document); writeErr != nil {
			return fmt.Errorf("write document: %w", writeErr)
		}
		summary = cmd.ErrOrStderr()
	} else if writeErr := os.WriteFile(f.out, []byte(result.Document), outputFileMode); writeErr != nil {
		return fmt.Errorf("write %s: %w", f.out, writeErr)
	}

	printSummary(summary, result)
	return nil
}

// mergeOptions overlays the flags the user actually set on base.
func mergeOptions(cmd *cobra.Command, base, set injector.Options) injector.Options {
	changed := cmd.Flags().Changed
	if changed("min-links") {
		base.MinLinks = set.MinLinks
	}
	if changed("max-links") {
		base.MaxLinks = set.MaxLinks
	}
	if changed("min-relevance") {
		base.MinRelevance = set.MinRelevance
	}
	if changed("min-distance") {
		base.MinDistance = set.MinDistance
	}
	if changed("max-per-section") {
		base.MaxPerSection = set.MaxPerSection
	}
	if changed("link-style") {
		base.LinkStyle = set.LinkStyle
	}
	return base
}

func printSummary(w io.Writer, result *domain.Result) {
	t := common.NewTable(w, "#", "URL", "Anchor", "Type", "Score", "Section")
	for i, ins := range result.Insertions {
		t.AppendRow([]any{
			i + 1, ins.URL, ins.AnchorText, ins.MatchType,
			fmt.Sprintf("%.0f%%", ins.RelevanceScore*100), ins.Section,
		})
	}
	t.Render()

	if len(result.Skipped) > 0 {
		urls := make([]string, 0, len(result.Skipped))
		for u := range result.Skipped {
			urls = append(urls, u)
		}
		sort.Strings(urls)

		st := common.NewTable(w, "Skipped", "Reason")
		for _, u := range urls {
			st.AppendRow([]any{u, result.Skipped[u]})
		}
		st.Render()
	}

	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
