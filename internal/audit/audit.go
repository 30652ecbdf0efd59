// Package audit reads injected links back out of a document the way the
// downstream quality checks see them.
package audit

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/interlinker/internal/anchor"
	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
)

var semanticSelector = fmt.Sprintf(`a[%s="%s"]`, markup.ProvenanceAttr, markup.ProvenanceValue)

// Link is one provenance-marked anchor.
type Link struct {
	Href      string             `json:"href"`
	Title     string             `json:"title,omitempty"`
	Text      string             `json:"text"`
	Score     float64            `json:"score"`
	WordCount int                `json:"word_count"`
	Valid     bool               `json:"valid"`
	Tier      domain.QualityTier `json:"tier"`
	Reason    string             `json:"reason,omitempty"`
}

// Report summarises the links of a document.
type Report struct {
	SemanticLinks    []Link   `json:"semantic_links"`
	InternalLinks    int      `json:"internal_links"`
	ExternalLinks    int      `json:"external_links"`
	DuplicateURLs    []string `json:"duplicate_urls,omitempty"`
	DuplicateAnchors []string `json:"duplicate_anchors,omitempty"`
}

// Option configures Read.
type Option func(*reader)

type reader struct {
	siteHost string
}

// WithSiteHost treats absolute links to host as internal.
func WithSiteHost(host string) Option {
	return func(r *reader) {
		r.siteHost = strings.ToLower(host)
	}
}

// Read parses document and reports its links.
func Read(document string, opts ...Option) (*Report, error) {
	r := &reader{}
	for _, o := range opts {
		o(r)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	report := &Report{SemanticLinks: make([]Link, 0)}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch r.classify(href) {
		case linkInternal:
			report.InternalLinks++
		case linkExternal:
			report.ExternalLinks++
		}
	})

	urls := make(map[string]int)
	texts := make(map[string]int)
	doc.Find(semanticSelector).Each(func(_ int, s *goquery.Selection) {
		link := readLink(s)
		report.SemanticLinks = append(report.SemanticLinks, link)
		urls[link.Href]++
		texts[lexicon.Normalize(link.Text)]++
	})

	report.DuplicateURLs = duplicates(urls)
	report.DuplicateAnchors = duplicates(texts)
	return report, nil
}

func readLink(s *goquery.Selection) Link {
	href, _ := s.Attr("href")
	title, _ := s.Attr("title")
	text := strings.Join(strings.Fields(s.Text()), " ")

	var score float64
	if raw, ok := s.Attr(markup.ScoreAttr); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			score = v
		}
	}

	v := anchor.Validate(text, title)
	return Link{
		Href:      href,
		Title:     title,
		Text:      text,
		Score:     score,
		WordCount: len(strings.Fields(text)),
		Valid:     v.Valid,
		Tier:      v.Tier,
		Reason:    v.Reason,
	}
}

type linkKind int

const (
	linkIgnored linkKind = iota
	linkInternal
	linkExternal
)

func (r *reader) classify(href string) linkKind {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return linkIgnored
	}
	u, err := url.Parse(href)
	if err != nil {
		return linkIgnored
	}
	switch u.Scheme {
	case "":
		if u.Host == "" {
			return linkInternal
		}
	case "http", "https":
	default:
		return linkIgnored
	}
	if r.siteHost != "" && strings.EqualFold(u.Hostname(), r.siteHost) {
		return linkInternal
	}
	return linkExternal
}

func duplicates(counts map[string]int) []string {
	var out []string
	for k, n := range counts {
		if n > 1 && k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
