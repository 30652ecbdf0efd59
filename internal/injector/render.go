package injector

import (
	"fmt"
	"math"

	"golang.org/x/net/html"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
)

// renderLink wraps matched markup in a provenance-marked anchor element.
func renderLink(url, title, style, matched string, score float64) string {
	return fmt.Sprintf(`<a href="%s" title="%s" style="%s" %s="%s" %s="%.2f">%s</a>`,
		html.EscapeString(url),
		html.EscapeString(title),
		html.EscapeString(style),
		markup.ProvenanceAttr, markup.ProvenanceValue,
		markup.ScoreAttr, score,
		matched,
	)
}

// splice replaces doc[start:end] with replacement.
func splice(doc string, start, end int, replacement string) string {
	return doc[:start] + replacement + doc[end:]
}

func describe(typ domain.MatchType, text string, score float64, sec int) string {
	return fmt.Sprintf("%s: %q (score %d%%, section %d)", typ, text, int(math.Round(score*100)), sec)
}
