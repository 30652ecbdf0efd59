// Package injector places internal links into an HTML document. Every
// attempt passes quality, match, boundary and quota gates before the
// document is touched.
package injector

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/interlinker/internal/anchor"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
	"github.com/jonesrussell/north-cloud/interlinker/internal/match"
	"github.com/jonesrussell/north-cloud/interlinker/internal/section"
)

// SummaryKey is the Skipped entry describing an under-target run.
const SummaryKey = "_summary"

const (
	minTitleRunes        = 10
	longTitleRunes       = 30
	longTitleImportance  = 70
	shortTitleImportance = 50
	minCandidateScore    = 55
	minAnchorWords       = 3
)

// Gates name the stage an attempt failed at.
const (
	GateTarget    = "target"
	GateUsedURL   = "used_url"
	GateUsedText  = "used_text"
	GateQuality   = "quality"
	GateMatch     = "match"
	GateRelevance = "relevance"
	GateWordCount = "word_count"
	GateRevalid   = "revalidation"
	GateBoundary  = "boundary"
	GateSection   = "section"
	GateCap       = "cap"
)

var genericTitles = map[string]struct{}{
	"home": {}, "homepage": {}, "home page": {}, "index": {}, "untitled": {},
	"untitled page": {}, "untitled document": {}, "new page": {}, "default page": {},
	"main page": {}, "welcome": {}, "page not found": {},
}

// Recorder receives run metrics.
type Recorder interface {
	ObserveRun(d time.Duration, inserted int)
	IncInsertion(matchType string)
	IncSkip(gate string)
	IncUnderTarget()
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(time.Duration, int) {}
func (nopRecorder) IncInsertion(string)           {}
func (nopRecorder) IncSkip(string)                {}
func (nopRecorder) IncUnderTarget()               {}

// Request is one injection call.
type Request struct {
	Document   string              `json:"document"`
	Targets    []domain.LinkTarget `json:"destinations"`
	CurrentURL string              `json:"current_url"`
	// Options overrides the injector's options when set.
	Options *Options `json:"options,omitempty"`
}

// Injector is immutable after construction and safe for concurrent use on
// different documents.
type Injector struct {
	log      logger.Logger
	opts     Options
	recorder Recorder
}

// Option configures an Injector.
type Option func(*Injector)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(in *Injector) {
		if r != nil {
			in.recorder = r
		}
	}
}

// New creates an Injector with opts as the per-call defaults.
func New(log logger.Logger, opts Options, options ...Option) (*Injector, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	in := &Injector{log: log, opts: opts, recorder: nopRecorder{}}
	for _, o := range options {
		o(in)
	}
	return in, nil
}

// Options returns the injector's default options.
func (in *Injector) Options() Options { return in.opts }

type rankedTarget struct {
	domain.LinkTarget
	importance int
	candidates []domain.AnchorCandidate
}

// skip is a failed gate.
type skip struct {
	gate   string
	reason string
}

// Inject places links from req.Targets into req.Document. It returns an
// error only for invalid options.
func (in *Injector) Inject(req Request) (*domain.Result, error) {
	start := time.Now()

	opts := in.opts
	if req.Options != nil {
		opts = req.Options.WithDefaults()
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}

	result := &domain.Result{
		Document: req.Document,
		Skipped:  make(map[string]string),
	}
	if req.Document == "" || len(req.Targets) == 0 {
		result.Insertions = []domain.Insertion{}
		return result, nil
	}

	targets := in.rankTargets(req.Targets, req.CurrentURL, opts, result.Skipped)

	phrases := make([]string, 0)
	for _, t := range targets {
		for _, c := range t.candidates {
			phrases = append(phrases, c.Phrase)
		}
	}
	matcher := match.New(
		match.Config{RelevanceThreshold: opts.MinRelevance, MinDistance: opts.MinDistance},
		match.WithPhraseIndex(match.NewPhraseIndex(phrases)),
	)

	doc := req.Document
	proj := markup.Build(doc)
	state := seedState(proj, opts.MaxPerSection)

	for i, t := range targets {
		if len(state.insertions) >= opts.MaxLinks {
			for _, rest := range targets[i:] {
				in.skip(result.Skipped, rest.URL, skip{gate: GateCap, reason: "link cap reached"})
			}
			break
		}
		if state.urlUsed(t.URL) {
			in.skip(result.Skipped, t.URL, skip{gate: GateUsedURL, reason: "url already linked"})
			continue
		}

		var last skip
		placed := false
		for _, c := range t.candidates {
			ins, span, markupText, s := in.attempt(proj, matcher, state, t, c, opts)
			if s != nil {
				in.recorder.IncSkip(s.gate)
				last = *s
				continue
			}

			doc = splice(doc, span.Start, span.End, markupText)
			state.record(ins, c.Phrase, span.End, len(markupText)-(span.End-span.Start))
			proj = markup.Build(doc)
			delete(result.Skipped, t.URL)
			in.recorder.IncInsertion(string(ins.MatchType))
			in.log.Debug("link inserted",
				logger.String("url", ins.URL),
				logger.String("anchor_text", ins.AnchorText),
				logger.String("match_type", string(ins.MatchType)),
				logger.Float64("score", ins.RelevanceScore),
				logger.Int("section", ins.Section),
			)
			placed = true
			break
		}
		if !placed {
			if last.reason == "" {
				last = skip{gate: GateQuality, reason: "no usable anchor candidate"}
			}
			result.Skipped[t.URL] = last.reason
		}
	}

	result.Document = doc
	result.Insertions = state.insertions

	if n := len(result.Insertions); n < opts.MinLinks {
		msg := fmt.Sprintf("only %d of minimum %d links placed", n, opts.MinLinks)
		result.Warnings = append(result.Warnings, msg)
		result.Skipped[SummaryKey] = msg
		in.recorder.IncUnderTarget()
		in.log.Warn("link injection below target",
			logger.Int("inserted", n),
			logger.Int("min_links", opts.MinLinks),
			logger.Int("skipped", len(result.Skipped)-1),
		)
	}

	dist := state.sections.Distribution()
	in.log.Debug("section distribution", logger.String("sections", formatDistribution(dist)))

	elapsed := time.Since(start)
	in.recorder.ObserveRun(elapsed, len(result.Insertions))
	in.log.Info("link injection complete",
		logger.Int("targets", len(req.Targets)),
		logger.Int("inserted", len(result.Insertions)),
		logger.Duration("duration", elapsed),
	)
	return result, nil
}

// attempt runs one (target, candidate) pair through every gate. It never
// mutates state; the caller splices and records on success.
func (in *Injector) attempt(
	proj *markup.Projection,
	matcher *match.Matcher,
	state *placementState,
	t rankedTarget,
	c domain.AnchorCandidate,
	opts Options,
) (domain.Insertion, markup.Span, string, *skip) {
	fail := func(gate, format string, args ...any) (domain.Insertion, markup.Span, string, *skip) {
		return domain.Insertion{}, markup.Span{}, "", &skip{gate: gate, reason: fmt.Sprintf(format, args...)}
	}

	if state.textUsed(c.Phrase) {
		return fail(GateUsedText, "anchor text %q already used", c.Phrase)
	}
	v := anchor.Validate(c.Phrase, t.Title)
	if !v.Tier.AtLeastAcceptable() || v.Score < minCandidateScore {
		return fail(GateQuality, "candidate %q scored %d (%s)", c.Phrase, v.Score, v.Tier)
	}

	m, ok := matcher.Find(proj, match.Query{Phrase: c.Phrase, Title: t.Title, Used: state.offsets})
	if !ok {
		return fail(GateMatch, "no safe match for %q", c.Phrase)
	}
	if m.Score < opts.MinRelevance {
		return fail(GateRelevance, "match score %.2f below %.2f", m.Score, opts.MinRelevance)
	}

	if len(strings.Fields(m.Text)) < minAnchorWords {
		return fail(GateWordCount, "matched text %q too short", m.Text)
	}
	rv := anchor.Validate(m.Text, t.Title)
	if !rv.Valid {
		return fail(GateRevalid, "matched text %q rejected: %s", m.Text, rv.Reason)
	}
	if state.textUsed(m.Text) {
		return fail(GateUsedText, "matched text %q already used", m.Text)
	}

	if !markup.CleanEdges(m.Span.Text) || !proj.Boundary(m.Span.Start, m.Span.End) {
		return fail(GateBoundary, "matched text %q fails boundary check", m.Text)
	}

	sec := section.Index(proj.HeadingStarts(), m.TextOffset)
	if !state.sections.Allow(sec) {
		return fail(GateSection, "section %d quota full", sec)
	}

	link := renderLink(t.URL, t.Title, opts.LinkStyle, m.Span.Text, m.Score)
	ins := domain.Insertion{
		URL:              t.URL,
		AnchorText:       m.Text,
		MatchType:        m.Type,
		RelevanceScore:   m.Score,
		InsertedAtOffset: m.Span.Start,
		TextOffset:       m.TextOffset,
		Section:          sec,
		Context:          describe(m.Type, m.Text, m.Score, sec),
	}
	return ins, m.Span, link, nil
}

// rankTargets filters unusable destinations into skipped and orders the
// rest by importance, keeping input order for ties.
func (in *Injector) rankTargets(
	targets []domain.LinkTarget,
	currentURL string,
	opts Options,
	skipped map[string]string,
) []rankedTarget {
	self := normalizeURL(currentURL)
	seen := make(map[string]struct{}, len(targets))
	out := make([]rankedTarget, 0, len(targets))

	for _, t := range targets {
		u := normalizeURL(t.URL)
		title := strings.TrimSpace(t.Title)
		var s *skip
		switch {
		case u == "":
			s = &skip{gate: GateTarget, reason: "missing url"}
		case self != "" && u == self:
			s = &skip{gate: GateTarget, reason: "self link"}
		case utf8.RuneCountInString(title) < minTitleRunes:
			s = &skip{gate: GateTarget, reason: "title too short"}
		case isGeneric(title):
			s = &skip{gate: GateTarget, reason: "generic title"}
		}
		if s == nil {
			if _, dup := seen[u]; dup {
				s = &skip{gate: GateTarget, reason: "duplicate destination"}
			}
		}
		if s != nil {
			in.skip(skipped, t.URL, *s)
			continue
		}
		seen[u] = struct{}{}

		candidates := anchor.Generate(title, opts.MaxCandidates)
		if len(candidates) == 0 {
			in.skip(skipped, t.URL, skip{gate: GateTarget, reason: "no anchor candidates"})
			continue
		}

		importance := shortTitleImportance
		if utf8.RuneCountInString(title) > longTitleRunes {
			importance = longTitleImportance
		}
		out = append(out, rankedTarget{
			LinkTarget: domain.LinkTarget{URL: t.URL, Title: title},
			importance: importance,
			candidates: candidates,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].importance > out[j].importance
	})
	return out
}

func (in *Injector) skip(skipped map[string]string, url string, s skip) {
	in.recorder.IncSkip(s.gate)
	if url == "" {
		url = "(empty)"
	}
	if _, exists := skipped[url]; !exists {
		skipped[url] = s.reason
	}
}

func isGeneric(title string) bool {
	_, ok := genericTitles[strings.ToLower(title)]
	return ok
}

func formatDistribution(dist map[int]int) string {
	keys := make([]int, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d:%d", k, dist[k]))
	}
	return strings.Join(parts, " ")
}
