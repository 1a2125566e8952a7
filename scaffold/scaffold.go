// Package scaffold renders new posts from the embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// PostTemplate is the template of a new post.
const PostTemplate = "templates/post.md.tmpl"

// Post describes a post to scaffold.
type Post struct {
	Title       string
	Date        time.Time
	Description string
	Draft       bool
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description,omitempty"`
	Draft       bool   `yaml:"draft,omitempty"`
}

// FrontMatter returns the YAML header of p, without the --- fences.
func FrontMatter(p Post) (string, error) {
	out, err := yaml.Marshal(frontMatter{
		Title:       p.Title,
		Date:        p.Date.UTC().Format(time.RFC3339),
		Description: p.Description,
		Draft:       p.Draft,
	})
	if err != nil {
		return "", fmt.Errorf("scaffold: front matter: %w", err)
	}
	return string(out), nil
}

// Render writes the markdown source of a new post to w.
func Render(w io.Writer, p Post) error {
	fm, err := FrontMatter(p)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(Templates, PostTemplate)
	if err != nil {
		return fmt.Errorf("scaffold: parse template: %w", err)
	}
	return tmpl.Execute(w, struct {
		FrontMatter string
		Description string
	}{fm, p.Description})
}
