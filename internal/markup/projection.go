// Package markup builds a plain-text projection of an HTML string with a
// byte-exact map back into the raw markup, without building a tree.
package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// TagKind classifies a markup token.
type TagKind int

// Tag kinds.
const (
	TagOpen TagKind = iota
	TagClose
	TagSelfClosing
	TagOther
)

// Tag is a markup token and its raw byte range.
type Tag struct {
	Start int
	End   int
	Name  string
	Kind  TagKind
}

// Anchor is an existing <a> element found in the document.
type Anchor struct {
	Href      string
	Text      string
	TextStart int
	RawStart  int
	RawEnd    int
	Semantic  bool
}

// Provenance attribute written on injected links.
const (
	ProvenanceAttr  = "data-internal-link"
	ProvenanceValue = "semantic"
	ScoreAttr       = "data-score"
)

// BlockSeparator is written into the projection at block element edges.
const BlockSeparator = '\n'

var (
	blockElements = setOf(
		"address", "article", "aside", "blockquote", "br", "dd", "details",
		"div", "dl", "dt", "fieldset", "figcaption", "figure", "footer", "form",
		"h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "li", "main", "nav",
		"ol", "p", "pre", "section", "summary", "table", "tbody", "td", "tfoot",
		"th", "thead", "tr", "ul",
	)
	voidElements = setOf(
		"area", "base", "br", "col", "embed", "hr", "img", "input", "link",
		"meta", "param", "source", "track", "wbr",
	)
	protectedElements = setOf(
		"a", "h1", "h2", "h3", "h4", "h5", "h6", "code", "pre", "button",
		"textarea", "select", "option",
	)
	hiddenElements = setOf("script", "style", "template", "noscript", "title")
)

func setOf(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// IsVoid reports whether name is an element that never takes a close tag.
func IsVoid(name string) bool {
	return has(voidElements, name)
}

// Projection is the plain-text view of a markup string. Every projected byte
// records the raw range it was produced from.
type Projection struct {
	raw      string
	text     []byte
	rawStart []int
	rawEnd   []int
	guarded  []bool
	tags     []Tag
	anchors  []Anchor
	headings []int
}

// Build tokenizes raw in a single pass and returns its projection. Tags are
// dropped, entity references collapse to one character, whitespace runs
// collapse to a single space and block element edges become BlockSeparator.
func Build(raw string) *Projection {
	b := &builder{p: &Projection{raw: raw}}
	z := html.NewTokenizer(strings.NewReader(raw))
	pos := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := pos
		pos += len(z.Raw())
		b.token(z, tt, start, pos)
	}
	b.closeAnchor(pos)
	return b.p
}

// Raw returns the markup the projection was built from.
func (p *Projection) Raw() string { return p.raw }

// Text returns the projected plain text.
func (p *Projection) Text() string { return string(p.text) }

// Len is the projected text length in bytes.
func (p *Projection) Len() int { return len(p.text) }

// Tags returns the markup tokens in document order.
func (p *Projection) Tags() []Tag { return p.tags }

// Anchors returns the existing link elements in document order.
func (p *Projection) Anchors() []Anchor { return p.anchors }

// HeadingStarts returns the projection offsets of level-2 headings.
func (p *Projection) HeadingStarts() []int { return p.headings }

// RawRange returns the raw byte range for projected bytes [start, end).
func (p *Projection) RawRange(start, end int) (int, int, bool) {
	if start < 0 || end > len(p.text) || start >= end {
		return 0, 0, false
	}
	return p.rawStart[start], p.rawEnd[end-1], true
}

// Guarded reports whether any projected byte in [start, end) sits inside a
// protected element such as a link, heading or code block.
func (p *Projection) Guarded(start, end int) bool {
	start = max(start, 0)
	end = min(end, len(p.guarded))
	for i := start; i < end; i++ {
		if p.guarded[i] {
			return true
		}
	}
	return false
}

type builder struct {
	p          *Projection
	guardDepth int
	hidden     int
	anchor     *Anchor
}

func (b *builder) token(z *html.Tokenizer, tt html.TokenType, start, end int) {
	switch tt {
	case html.TextToken:
		if b.hidden == 0 {
			b.text(start, end)
		}
	case html.StartTagToken, html.SelfClosingTagToken:
		b.startTag(z, tt, start, end)
	case html.EndTagToken:
		name, _ := z.TagName()
		b.endTag(string(name), start, end)
	default:
		b.p.tags = append(b.p.tags, Tag{Start: start, End: end, Kind: TagOther})
	}
}

func (b *builder) startTag(z *html.Tokenizer, tt html.TokenType, start, end int) {
	nameBytes, hasAttr := z.TagName()
	name := string(nameBytes)

	var href, provenance string
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		switch string(key) {
		case "href":
			href = string(val)
		case ProvenanceAttr:
			provenance = string(val)
		}
	}

	kind := TagOpen
	if tt == html.SelfClosingTagToken || IsVoid(name) {
		kind = TagSelfClosing
	}
	b.p.tags = append(b.p.tags, Tag{Start: start, End: end, Name: name, Kind: kind})

	if has(blockElements, name) {
		b.separator(start)
	}
	if kind == TagSelfClosing {
		return
	}
	if has(hiddenElements, name) {
		b.hidden++
	}
	if has(protectedElements, name) {
		b.guardDepth++
	}
	switch name {
	case "h2":
		b.p.headings = append(b.p.headings, len(b.p.text))
	case "a":
		b.closeAnchor(start)
		b.anchor = &Anchor{
			Href:      href,
			Semantic:  provenance == ProvenanceValue,
			RawStart:  start,
			TextStart: len(b.p.text),
		}
	}
}

func (b *builder) endTag(name string, start, end int) {
	b.p.tags = append(b.p.tags, Tag{Start: start, End: end, Name: name, Kind: TagClose})
	if has(hiddenElements, name) && b.hidden > 0 {
		b.hidden--
	}
	if has(protectedElements, name) && b.guardDepth > 0 {
		b.guardDepth--
	}
	if name == "a" {
		b.closeAnchor(end)
	}
	if has(blockElements, name) {
		b.separator(start)
	}
}

func (b *builder) closeAnchor(rawEnd int) {
	a := b.anchor
	if a == nil {
		return
	}
	b.anchor = nil
	text := b.p.text[a.TextStart:]
	trimmed := strings.TrimLeft(string(text), " \n")
	a.TextStart += len(text) - len(trimmed)
	a.Text = strings.TrimSpace(trimmed)
	a.RawEnd = rawEnd
	b.p.anchors = append(b.p.anchors, *a)
}

func (b *builder) text(start, end int) {
	raw := b.p.raw[start:end]
	for i := 0; i < len(raw); {
		if raw[i] == '&' {
			if n, decoded, ok := entityAt(raw[i:]); ok {
				b.entity(decoded, start+i, start+i+n)
				i += n
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(raw[i:])
		if isSpace(r) {
			b.space(start+i, start+i+size)
		} else {
			b.emit(raw[i:i+size], start+i, start+i+size)
		}
		i += size
	}
}

func (b *builder) entity(decoded string, start, end int) {
	r, size := utf8.DecodeRuneInString(decoded)
	if size != len(decoded) || isSpace(r) {
		b.space(start, end)
		return
	}
	b.emit(decoded, start, end)
}

func (b *builder) emit(s string, rawStart, rawEnd int) {
	guarded := b.guardDepth > 0
	for i := 0; i < len(s); i++ {
		b.p.text = append(b.p.text, s[i])
		b.p.rawStart = append(b.p.rawStart, rawStart)
		b.p.rawEnd = append(b.p.rawEnd, rawEnd)
		b.p.guarded = append(b.p.guarded, guarded)
	}
}

func (b *builder) last() byte {
	if len(b.p.text) == 0 {
		return 0
	}
	return b.p.text[len(b.p.text)-1]
}

func (b *builder) space(rawStart, rawEnd int) {
	switch b.last() {
	case 0, ' ', BlockSeparator:
		return
	}
	b.emit(" ", rawStart, rawEnd)
}

func (b *builder) separator(at int) {
	switch b.last() {
	case 0, BlockSeparator:
		return
	case ' ':
		b.p.text[len(b.p.text)-1] = BlockSeparator
		return
	}
	b.emit(string(BlockSeparator), at, at)
}

// entityAt decodes a terminated character reference at the start of s.
func entityAt(s string) (int, string, bool) {
	const maxEntityLen = 32
	end := strings.IndexByte(s[:min(len(s), maxEntityLen)], ';')
	if end < 2 {
		return 0, "", false
	}
	ref := s[:end+1]
	if !wellFormedEntity(ref[1:end]) {
		return 0, "", false
	}
	decoded := html.UnescapeString(ref)
	if decoded == ref {
		return 0, "", false
	}
	return len(ref), decoded, true
}

func wellFormedEntity(body string) bool {
	if body[0] == '#' {
		digits := body[1:]
		hex := false
		if digits != "" && (digits[0] == 'x' || digits[0] == 'X') {
			digits, hex = digits[1:], true
		}
		if digits == "" {
			return false
		}
		for i := 0; i < len(digits); i++ {
			c := digits[i]
			isDigit := c >= '0' && c <= '9'
			isHex := (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
			if !isDigit && !(hex && isHex) {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !alpha && !(i > 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
