package injector_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
)

const keywordDoc = `<h2>Getting started</h2>` +
	`<p>Effective keyword research drives long-term organic growth. ` +
	`Teams that plan content around real search demand see better results over time.</p>`

const multiSectionDoc = `<p>This introduction explains why technical seo audits matter for every growing website today.</p>` +
	`<h2>Audits</h2>` +
	`<p>A regular technical seo audit uncovers crawl errors quickly. Many teams also review their ` +
	`link building outreach process each quarter to stay competitive.</p>` +
	`<h2>Content</h2>` +
	`<p>Strong content marketing strategy depends on research. Writers should study ` +
	`email marketing automation workflows to nurture new subscribers over many months.</p>`

var multiTargets = []domain.LinkTarget{
	{URL: "/seo-audit", Title: "Technical SEO Audit Checklist"},
	{URL: "/link-building", Title: "Link Building Outreach Playbook"},
	{URL: "/content-strategy", Title: "Content Marketing Strategy Handbook"},
	{URL: "/email", Title: "Email Marketing Automation Workflows"},
	{URL: "/self/", Title: "Some Current Page Title"},
	{URL: "/short", Title: "Short"},
	{URL: "/untitled", Title: "Untitled Document"},
}

func newInjector(t *testing.T, opts injector.Options, options ...injector.Option) *injector.Injector {
	t.Helper()
	in, err := injector.New(logger.NewNop(), opts, options...)
	require.NoError(t, err)
	return in
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts injector.Options
	}{
		{name: "negative max links", opts: injector.Options{MaxLinks: -1}},
		{name: "negative min links", opts: injector.Options{MinLinks: -3}},
		{name: "relevance above one", opts: injector.Options{MinRelevance: 1.5}},
		{name: "negative distance", opts: injector.Options{MinDistance: -10}},
		{name: "negative section quota", opts: injector.Options{MaxPerSection: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := injector.New(logger.NewNop(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, injector.ErrInvalidOptions))
		})
	}
}

func TestInject_InvalidRequestOptions(t *testing.T) {
	t.Parallel()

	in := newInjector(t, injector.Options{})
	_, err := in.Inject(injector.Request{
		Document: keywordDoc,
		Options:  &injector.Options{MinRelevance: -0.2},
	})
	assert.ErrorIs(t, err, injector.ErrInvalidOptions)
}

func TestOptions_WithDefaults(t *testing.T) {
	t.Parallel()

	got := injector.Options{MaxLinks: 3}.WithDefaults()
	assert.Equal(t, 3, got.MaxLinks)
	assert.Equal(t, injector.DefaultMinLinks, got.MinLinks)
	assert.InDelta(t, injector.DefaultMinRelevance, got.MinRelevance, 1e-9)
	assert.Equal(t, injector.DefaultMinDistance, got.MinDistance)
	assert.Equal(t, injector.DefaultMaxPerSection, got.MaxPerSection)
	assert.Equal(t, injector.DefaultLinkStyle, got.LinkStyle)
}

func TestInject_EmptyInputIsNoOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     injector.Request
		wantDoc string
	}{
		{
			name:    "no destinations",
			req:     injector.Request{Document: keywordDoc},
			wantDoc: keywordDoc,
		},
		{
			name:    "empty destination list",
			req:     injector.Request{Document: keywordDoc, Targets: []domain.LinkTarget{}},
			wantDoc: keywordDoc,
		},
		{
			name: "empty document",
			req:  injector.Request{Targets: multiTargets[:2]},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &fakeRecorder{insertions: map[string]int{}, skips: map[string]int{}}
			in := newInjector(t, injector.Options{MinLinks: 3}, injector.WithRecorder(rec))
			res, err := in.Inject(tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDoc, res.Document)
			assert.NotNil(t, res.Insertions)
			assert.Empty(t, res.Insertions)
			assert.Empty(t, res.Skipped)
			assert.NotContains(t, res.Skipped, injector.SummaryKey)
			assert.Empty(t, res.Warnings)
			assert.Zero(t, rec.underTarget)
			assert.Empty(t, rec.skips)
		})
	}
}

func TestInject_KeywordResearch(t *testing.T) {
	t.Parallel()

	in := newInjector(t, injector.Options{MinLinks: 1})
	res, err := in.Inject(injector.Request{
		Document: keywordDoc,
		Targets:  []domain.LinkTarget{{URL: "/guides/keyword-research", Title: "Keyword Research Fundamentals Guide"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Insertions, 1)
	assert.Empty(t, res.Warnings)

	ins := res.Insertions[0]
	assert.Equal(t, "/guides/keyword-research", ins.URL)
	assert.Equal(t, domain.MatchSemantic, ins.MatchType)
	assert.Contains(t, strings.ToLower(ins.AnchorText), "keyword research")
	words := len(strings.Fields(ins.AnchorText))
	assert.GreaterOrEqual(t, words, 3)
	assert.LessOrEqual(t, words, 6)
	assert.GreaterOrEqual(t, ins.RelevanceScore, injector.DefaultMinRelevance)
	assert.Equal(t, 0, ins.Section)
	assert.True(t, strings.HasPrefix(ins.Context, `semantic: "Effective keyword research"`))
	assert.True(t, strings.HasPrefix(res.Document[ins.InsertedAtOffset:], `<a href="/guides/keyword-research"`))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Document))
	require.NoError(t, err)
	link := doc.Find(`a[data-internal-link="semantic"]`)
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "Effective keyword research", link.Text())
	title, _ := link.Attr("title")
	assert.Equal(t, "Keyword Research Fundamentals Guide", title)
	style, _ := link.Attr("style")
	assert.Equal(t, injector.DefaultLinkStyle, style)
	score, ok := link.Attr("data-score")
	require.True(t, ok)
	assert.Regexp(t, `^0\.5[78]$`, score)
}

func TestInject_Invariants(t *testing.T) {
	t.Parallel()

	opts := injector.Options{MinLinks: 1, MinDistance: 40, MaxPerSection: 1}
	in := newInjector(t, opts)
	res, err := in.Inject(injector.Request{
		Document:   multiSectionDoc,
		Targets:    multiTargets,
		CurrentURL: "/self",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Insertions)

	assert.Equal(t, "self link", res.Skipped["/self/"])
	assert.Equal(t, "title too short", res.Skipped["/short"])
	assert.Equal(t, "generic title", res.Skipped["/untitled"])

	assertInvariants(t, res, opts.WithDefaults())
}

func TestInject_RerunDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	opts := injector.Options{MinLinks: 1, MinDistance: 40, MaxPerSection: 1}
	in := newInjector(t, opts)
	req := injector.Request{Document: multiSectionDoc, Targets: multiTargets, CurrentURL: "/self"}

	first, err := in.Inject(req)
	require.NoError(t, err)

	req.Document = first.Document
	second, err := in.Inject(req)
	require.NoError(t, err)

	firstURLs := make(map[string]bool)
	for _, ins := range first.Insertions {
		firstURLs[ins.URL] = true
	}
	for _, ins := range second.Insertions {
		assert.False(t, firstURLs[ins.URL], "url %s linked twice", ins.URL)
	}
	assert.LessOrEqual(t, len(second.Insertions), opts.WithDefaults().MaxLinks)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(second.Document))
	require.NoError(t, err)
	hrefs := make(map[string]bool)
	texts := make(map[string]bool)
	doc.Find(`a[data-internal-link="semantic"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		assert.False(t, hrefs[href], "duplicate href %s", href)
		hrefs[href] = true
		text := lexicon.Normalize(s.Text())
		assert.False(t, texts[text], "duplicate anchor %q", text)
		texts[text] = true
	})
	assert.Zero(t, doc.Find("a a").Length())
}

func TestInject_NeverNestsLinks(t *testing.T) {
	t.Parallel()

	doc := `<p>Read our <a href="/old">technical seo audit checklist</a> before every launch of a new website section.</p>`
	in := newInjector(t, injector.Options{MinLinks: 1})
	res, err := in.Inject(injector.Request{
		Document: doc,
		Targets:  []domain.LinkTarget{{URL: "/seo-audit", Title: "Technical SEO Audit Checklist"}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Insertions)
	assert.Equal(t, doc, res.Document)
}

func TestInject_MaxLinksCap(t *testing.T) {
	t.Parallel()

	in := newInjector(t, injector.Options{MinLinks: 1, MaxLinks: 1, MinDistance: 40, MaxPerSection: 1})
	res, err := in.Inject(injector.Request{Document: multiSectionDoc, Targets: multiTargets[:4]})
	require.NoError(t, err)

	require.Len(t, res.Insertions, 1)
	capped := 0
	for _, reason := range res.Skipped {
		if reason == "link cap reached" {
			capped++
		}
	}
	assert.Equal(t, 3, capped)
}

func TestInject_UnderTargetWarning(t *testing.T) {
	t.Parallel()

	in := newInjector(t, injector.Options{MinLinks: 5})
	res, err := in.Inject(injector.Request{
		Document: keywordDoc,
		Targets:  []domain.LinkTarget{{URL: "/guides/keyword-research", Title: "Keyword Research Fundamentals Guide"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Insertions, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "only 1 of minimum 5")
	assert.Equal(t, res.Warnings[0], res.Skipped[injector.SummaryKey])
}

func TestInject_DuplicateDestinationLinkedOnce(t *testing.T) {
	t.Parallel()

	in := newInjector(t, injector.Options{MinLinks: 1})
	target := domain.LinkTarget{URL: "/guides/keyword-research", Title: "Keyword Research Fundamentals Guide"}
	res, err := in.Inject(injector.Request{
		Document: keywordDoc,
		Targets:  []domain.LinkTarget{target, target},
	})
	require.NoError(t, err)

	require.Len(t, res.Insertions, 1)
	assert.Equal(t, target.URL, res.Insertions[0].URL)
	assert.NotContains(t, res.Skipped, target.URL)
}

func TestInject_SectionQuotaFull(t *testing.T) {
	t.Parallel()

	doc := `<h2>Channels</h2>` +
		`<p>Our team invested in technical seo audit work to fix crawl errors across the whole site. ` +
		`We also scaled link building outreach campaigns with several partner publications this year. ` +
		`Finally we rebuilt email marketing automation workflows for every new subscriber segment.</p>`
	opts := injector.Options{MinLinks: 1, MinDistance: 1, MaxPerSection: 2, MaxCandidates: 1}
	in := newInjector(t, opts)
	res, err := in.Inject(injector.Request{Document: doc, Targets: []domain.LinkTarget{
		{URL: "/seo-audit", Title: "Technical SEO Audit Checklist"},
		{URL: "/link-building", Title: "Link Building Outreach Playbook"},
		{URL: "/email", Title: "Email Marketing Automation Workflows"},
	}})
	require.NoError(t, err)

	require.Len(t, res.Insertions, 2)
	for _, ins := range res.Insertions {
		assert.Equal(t, 0, ins.Section)
	}
	// Longer titles rank first, so the audit target arrives after the quota is spent.
	assert.Equal(t, "section 0 quota full", res.Skipped["/seo-audit"])
	assertInvariants(t, res, opts.WithDefaults())
}

type fakeRecorder struct {
	runs        int
	insertions  map[string]int
	skips       map[string]int
	underTarget int
}

func (f *fakeRecorder) ObserveRun(time.Duration, int) { f.runs++ }
func (f *fakeRecorder) IncInsertion(t string)         { f.insertions[t]++ }
func (f *fakeRecorder) IncSkip(g string)              { f.skips[g]++ }
func (f *fakeRecorder) IncUnderTarget()               { f.underTarget++ }

func TestInject_RecordsMetrics(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{insertions: map[string]int{}, skips: map[string]int{}}
	in := newInjector(t, injector.Options{MinLinks: 3}, injector.WithRecorder(rec))
	_, err := in.Inject(injector.Request{
		Document: keywordDoc,
		Targets: []domain.LinkTarget{
			{URL: "/guides/keyword-research", Title: "Keyword Research Fundamentals Guide"},
			{URL: "/short", Title: "Short"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, 1, rec.insertions[string(domain.MatchSemantic)])
	assert.Equal(t, 1, rec.skips[injector.GateTarget])
	assert.Equal(t, 1, rec.underTarget)
}

func assertInvariants(t *testing.T, res *domain.Result, opts injector.Options) {
	t.Helper()

	urls := make(map[string]bool)
	texts := make(map[string]bool)
	sections := make(map[int]int)
	p := markup.Build(res.Document)

	for i, ins := range res.Insertions {
		assert.False(t, urls[ins.URL], "duplicate url %s", ins.URL)
		urls[ins.URL] = true
		key := lexicon.Normalize(ins.AnchorText)
		assert.False(t, texts[key], "duplicate anchor %q", key)
		texts[key] = true
		sections[ins.Section]++

		words := len(strings.Fields(ins.AnchorText))
		assert.GreaterOrEqual(t, words, 3)
		assert.LessOrEqual(t, words, 7)

		rest := res.Document[ins.InsertedAtOffset:]
		require.True(t, strings.HasPrefix(rest, `<a href="`+ins.URL+`"`), "insertion %d offset", i)
		end := ins.InsertedAtOffset + strings.Index(rest, "</a>") + len("</a>")
		assert.True(t, p.Boundary(ins.InsertedAtOffset, end), "insertion %d boundary", i)

		for _, other := range res.Insertions[i+1:] {
			d := ins.TextOffset - other.TextOffset
			if d < 0 {
				d = -d
			}
			assert.GreaterOrEqual(t, d, opts.MinDistance)
		}
	}
	for sec, n := range sections {
		assert.LessOrEqual(t, n, opts.MaxPerSection, "section %d", sec)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Document))
	require.NoError(t, err)
	assert.Equal(t, len(res.Insertions), doc.Find(`a[data-internal-link="semantic"]`).Length())
	assert.Zero(t, doc.Find("a a").Length())
}
