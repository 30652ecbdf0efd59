package injector

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/interlinker/internal/anchor"
	"github.com/jonesrussell/north-cloud/interlinker/internal/match"
	"github.com/jonesrussell/north-cloud/interlinker/internal/section"
)

// Default option values.
const (
	DefaultMinLinks      = 12
	DefaultMaxLinks      = 25
	DefaultMinRelevance  = match.DefaultRelevanceThreshold
	DefaultMinDistance   = match.DefaultMinDistance
	DefaultMaxPerSection = section.DefaultMaxPerSection
	DefaultLinkStyle     = "color: #3b82f6; text-decoration: none; font-weight: 600; " +
		"border-bottom: 2px solid rgba(59, 130, 246, 0.3); transition: all 0.2s ease; padding-bottom: 1px;"
)

// Options tune one injection run. Zero fields take the defaults.
type Options struct {
	MinLinks      int     `json:"min_links"                  yaml:"min_links"                  env:"INJECT_MIN_LINKS"`
	MaxLinks      int     `json:"max_links"                  yaml:"max_links"                  env:"INJECT_MAX_LINKS"`
	MinRelevance  float64 `json:"min_relevance"              yaml:"min_relevance"              env:"INJECT_MIN_RELEVANCE"`
	LinkStyle     string  `json:"link_style"                 yaml:"link_style"                 env:"INJECT_LINK_STYLE"`
	MinDistance   int     `json:"min_distance_between_links" yaml:"min_distance_between_links" env:"INJECT_MIN_DISTANCE"`
	MaxPerSection int     `json:"max_links_per_section"      yaml:"max_links_per_section"      env:"INJECT_MAX_PER_SECTION"`
	MaxCandidates int     `json:"max_candidates"             yaml:"max_candidates"             env:"INJECT_MAX_CANDIDATES"`
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MinLinks:      DefaultMinLinks,
		MaxLinks:      DefaultMaxLinks,
		MinRelevance:  DefaultMinRelevance,
		LinkStyle:     DefaultLinkStyle,
		MinDistance:   DefaultMinDistance,
		MaxPerSection: DefaultMaxPerSection,
		MaxCandidates: anchor.DefaultMaxCandidates,
	}
}

// WithDefaults returns o with every zero field replaced by its default.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MinLinks == 0 {
		o.MinLinks = d.MinLinks
	}
	if o.MaxLinks == 0 {
		o.MaxLinks = d.MaxLinks
	}
	if o.MinRelevance == 0 {
		o.MinRelevance = d.MinRelevance
	}
	if o.LinkStyle == "" {
		o.LinkStyle = d.LinkStyle
	}
	if o.MinDistance == 0 {
		o.MinDistance = d.MinDistance
	}
	if o.MaxPerSection == 0 {
		o.MaxPerSection = d.MaxPerSection
	}
	if o.MaxCandidates == 0 {
		o.MaxCandidates = d.MaxCandidates
	}
	return o
}

// Validate checks that o is usable.
func (o Options) Validate() error {
	switch {
	case o.MinLinks < 0:
		return fmt.Errorf("%w: min_links must not be negative", ErrInvalidOptions)
	case o.MaxLinks < 0:
		return fmt.Errorf("%w: max_links must not be negative", ErrInvalidOptions)
	case o.MinRelevance < 0 || o.MinRelevance > 1:
		return fmt.Errorf("%w: min_relevance must be within [0, 1]", ErrInvalidOptions)
	case o.MinDistance < 0:
		return fmt.Errorf("%w: min_distance_between_links must not be negative", ErrInvalidOptions)
	case o.MaxPerSection < 0:
		return fmt.Errorf("%w: max_links_per_section must not be negative", ErrInvalidOptions)
	case o.MaxCandidates < 0:
		return fmt.Errorf("%w: max_candidates must not be negative", ErrInvalidOptions)
	}
	return nil
}
