// Package markdown converts post sources to HTML with goldmark, configured with
// the extensions the site's posts are written against: GitHub flavoured
// markdown, smart punctuation, footnotes, anchored headings and rewriting of
// links to files that sit next to the post.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ExcerptLength is the number of characters an excerpt is pruned to.
const ExcerptLength = 160

var (
	baseKey   = parser.NewContextKey()
	assetsKey = parser.NewContextKey()

	// <Form /> or <Form></Form>; shortcodes are capitalised like components.
	reShortcode = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)\s*(?:/>|>\s*</([A-Z][A-Za-z0-9]*)>)`)
)

// Document is the result of converting one source file.
type Document struct {
	HTML   string
	Text   string   // plain text of the prose, whitespace collapsed
	Assets []string // local files referenced by links and images, relative to the source
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with the site's extension set.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				extension.Footnote,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(linkRewriter{}, 100),
					util.Prioritized(headingAnchors{}, 200),
				),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders src. Relative link and image destinations are rewritten to
// live under base, the URL path the post is published at.
func (r *Renderer) Convert(src []byte, base string) (Document, error) {
	pc := parser.NewContext()
	pc.Set(baseKey, base)
	assets := &[]string{}
	pc.Set(assetsKey, assets)

	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return Document{}, fmt.Errorf("markdown: render: %w", err)
	}
	return Document{
		HTML:   buf.String(),
		Text:   plainText(doc, src),
		Assets: *assets,
	}, nil
}

// linkRewriter points relative links and images at the post's URL and
// records them so the files can be published next to the page.
type linkRewriter struct{}

func (linkRewriter) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	base, _ := pc.Get(baseKey).(string)
	assets, _ := pc.Get(assetsKey).(*[]string)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var dest *[]byte
		switch n := n.(type) {
		case *ast.Link:
			dest = &n.Destination
		case *ast.Image:
			dest = &n.Destination
		default:
			return ast.WalkContinue, nil
		}
		rel, ok := localFile(string(*dest))
		if !ok {
			return ast.WalkContinue, nil
		}
		if assets != nil {
			*assets = append(*assets, rel)
		}
		*dest = []byte(path.Join("/", base, rel))
		return ast.WalkContinue, nil
	})
}

// localFile reports whether dest names a file relative to the source, and
// returns it cleaned. Markdown files are links between posts, not assets.
func localFile(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := path.Clean(u.Path)
	if p == "." || strings.HasPrefix(p, "../") || p == ".." {
		return "", false
	}
	switch strings.ToLower(path.Ext(p)) {
	case "", ".md", ".mdx":
		return "", false
	}
	return p, true
}

// headingAnchors appends a self link after every heading that has an id.
type headingAnchors struct{}

func (headingAnchors) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		v, ok := h.AttributeString("id")
		if !ok {
			return ast.WalkSkipChildren, nil
		}
		id, ok := v.([]byte)
		if !ok || len(id) == 0 {
			return ast.WalkSkipChildren, nil
		}
		// goldmark filters aria attributes off links, so the anchor is raw.
		a := ast.NewString([]byte(`<a href="#` + string(id) + `" class="anchor after" aria-hidden="true">#</a>`))
		a.SetCode(true)
		a.SetAttributeString("anchor", true)
		h.AppendChild(h, a)
		return ast.WalkSkipChildren, nil
	})
}

func plainText(doc ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				b.Write(n.Segment.Value(src))
				if n.SoftLineBreak() || n.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *ast.String:
			if _, anchor := n.AttributeString("anchor"); entering && !anchor {
				b.Write(n.Value)
			}
		}
		if !entering && n.Type() == ast.TypeBlock {
			b.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}

// Prune shortens s to at most n characters, cutting at a word boundary and
// marking the cut with an ellipsis.
func Prune(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if !unicode.IsSpace(r[n]) {
		if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
			cut = cut[:i]
		}
	}
	cut = strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return cut + "…"
}

// Excerpt returns the plain text of a document pruned to ExcerptLength.
func Excerpt(d Document) string {
	return Prune(d.Text, ExcerptLength)
}

// Segment is a run of rendered HTML or a single shortcode.
type Segment struct {
	HTML      string // the raw text of the segment
	Shortcode string // component name, empty for plain HTML
}

// SplitShortcodes cuts rendered HTML around embedded component tags such as
// <Form />, so callers can substitute their own markup for each one.
func SplitShortcodes(s string) []Segment {
	var out []Segment
	for {
		loc := reShortcode.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		name := s[loc[2]:loc[3]]
		if loc[4] >= 0 && s[loc[4]:loc[5]] != name {
			// mismatched closing tag, leave it alone
			out = append(out, Segment{HTML: s[:loc[1]]})
			s = s[loc[1]:]
			continue
		}
		if loc[0] > 0 {
			out = append(out, Segment{HTML: s[:loc[0]]})
		}
		out = append(out, Segment{HTML: s[loc[0]:loc[1]], Shortcode: name})
		s = s[loc[1]:]
	}
	if s != "" {
		out = append(out, Segment{HTML: s})
	}
	return out
}

// JoinSegments is the inverse of SplitShortcodes, with fn applied to every
// plain HTML segment.
func JoinSegments(segs []Segment, fn func(string) string) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Shortcode != "" {
			b.WriteString("<" + s.Shortcode + " />")
			continue
		}
		b.WriteString(fn(s.HTML))
	}
	return b.String()
}
