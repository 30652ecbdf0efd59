package injector

import (
	"strings"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
	"github.com/jonesrussell/north-cloud/interlinker/internal/lexicon"
	"github.com/jonesrussell/north-cloud/interlinker/internal/markup"
	"github.com/jonesrussell/north-cloud/interlinker/internal/section"
)

// placementState is the bookkeeping of one run.
type placementState struct {
	urls       map[string]struct{}
	texts      map[string]struct{}
	offsets    []int
	sections   *section.Tracker
	insertions []domain.Insertion
}

// seedState marks every link already in the document as used. Links carrying
// the provenance marker also count towards their section quota.
func seedState(p *markup.Projection, maxPerSection int) *placementState {
	s := &placementState{
		urls:       make(map[string]struct{}),
		texts:      make(map[string]struct{}),
		sections:   section.NewTracker(maxPerSection),
		insertions: make([]domain.Insertion, 0),
	}
	for _, a := range p.Anchors() {
		if u := normalizeURL(a.Href); u != "" {
			s.urls[u] = struct{}{}
		}
		if t := lexicon.Normalize(a.Text); t != "" {
			s.texts[t] = struct{}{}
		}
		s.offsets = append(s.offsets, a.TextStart)
		if a.Semantic {
			s.sections.Record(section.Index(p.HeadingStarts(), a.TextStart))
		}
	}
	return s
}

func (s *placementState) urlUsed(u string) bool {
	_, ok := s.urls[normalizeURL(u)]
	return ok
}

func (s *placementState) textUsed(t string) bool {
	_, ok := s.texts[lexicon.Normalize(t)]
	return ok
}

// record books an insertion whose markup grew the document by delta bytes at
// raw offset at.
func (s *placementState) record(ins domain.Insertion, candidate string, at, delta int) {
	for i := range s.insertions {
		if s.insertions[i].InsertedAtOffset >= at {
			s.insertions[i].InsertedAtOffset += delta
		}
	}
	s.urls[normalizeURL(ins.URL)] = struct{}{}
	s.texts[lexicon.Normalize(candidate)] = struct{}{}
	s.texts[lexicon.Normalize(ins.AnchorText)] = struct{}{}
	s.offsets = append(s.offsets, ins.TextOffset)
	s.sections.Record(ins.Section)
	s.insertions = append(s.insertions, ins)
}

// normalizeURL drops the fragment, surrounding space and a trailing slash.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if len(u) > 1 {
		u = strings.TrimSuffix(u, "/")
	}
	return u
}
