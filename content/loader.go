package content

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/vedran/blog/markdown"
)

// dateLayouts are tried in order when parsing a front matter date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// frontMatter is the YAML header of a post.
type frontMatter struct {
	Title         string `yaml:"title"`
	Date          string `yaml:"date"`
	Description   string `yaml:"description"`
	FeaturedImage string `yaml:"featuredImage"`
	Draft         bool   `yaml:"draft"`
	Unsafe        bool   `yaml:"unsafe"`
}

// LoadOptions configure Load.
type LoadOptions struct {
	Drafts   bool               // include entries marked draft
	Renderer *markdown.Renderer // nil uses markdown.New()
	Log      *zap.Logger        // nil discards
}

// Load walks fsys for .md and .mdx files and builds the collection. Files
// and directories whose names start with "." or "_" are skipped.
func Load(fsys fs.FS, opts LoadOptions) (*Collection, error) {
	if opts.Renderer == nil {
		opts.Renderer = markdown.New()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	policy := Policy()

	var entries []Entry
	seen := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".md", ".mdx":
		default:
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		e, err := parseEntry(p, src, opts.Renderer, policy)
		if err != nil {
			return err
		}
		if e.Draft && !opts.Drafts {
			opts.Log.Debug("skipping draft", zap.String("path", p))
			return nil
		}
		if e.Slug == "/" {
			return fmt.Errorf("content: %s would publish at / over the home page", p)
		}
		if prev, dup := seen[e.Slug]; dup {
			return fmt.Errorf("content: %s and %s both publish at %s", prev, p, e.Slug)
		}
		seen[e.Slug] = p
		opts.Log.Debug("loaded entry", zap.String("path", p), zap.String("slug", e.Slug))
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCollection(entries), nil
}

// Parse builds a single entry from the source of the file at rel.
func Parse(rel string, src []byte) (Entry, error) {
	return parseEntry(rel, src, markdown.New(), Policy())
}

func parseEntry(rel string, src []byte, r *markdown.Renderer, policy *bluemonday.Policy) (Entry, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		return Entry{}, fmt.Errorf("content: %s: front matter: %w", rel, err)
	}
	date, err := parseDate(fm.Date)
	if err != nil {
		return Entry{}, fmt.Errorf("content: %s: %w", rel, err)
	}

	slug := SlugFor(rel)
	doc, err := r.Convert(body, slug)
	if err != nil {
		return Entry{}, fmt.Errorf("content: %s: %w", rel, err)
	}
	html := doc.HTML
	if !fm.Unsafe {
		html = markdown.JoinSegments(markdown.SplitShortcodes(html), policy.Sanitize)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = TitleFor(rel)
	}
	e := Entry{
		Slug:        slug,
		Title:       title,
		Date:        date,
		DisplayDate: formatDate(date),
		Body:        html,
		Description: strings.TrimSpace(fm.Description),
		Excerpt:     markdown.Excerpt(doc),
		Draft:       fm.Draft,
		SourceDir:   path.Dir(rel),
		Assets:      doc.Assets,
	}
	if img := strings.TrimSpace(fm.FeaturedImage); img != "" {
		if local, ok := localAsset(img); ok {
			e.Assets = append(e.Assets, local)
			img = path.Join(slug, local)
		}
		e.FeaturedImage = img
	}
	return e, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func localAsset(p string) (string, bool) {
	if strings.Contains(p, "://") || strings.HasPrefix(p, "/") {
		return "", false
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, true
}

// Policy returns the sanitiser applied to post bodies: bluemonday's UGC
// policy plus the attributes the markdown renderer emits.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).OnElements("a", "code", "span", "pre", "div", "sup", "li", "section")
	p.AllowAttrs("aria-hidden").Matching(regexp.MustCompile(`^(true|false)$`)).OnElements("a")
	return p
}
