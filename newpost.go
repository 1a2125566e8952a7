package blog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vedran/blog/scaffold"
)

// NewPost creates content/blog/<slug>/index.md for a post titled title and
// returns its path. It fails if the post already exists.
func NewPost(contentDir, title string, date time.Time, draft bool) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("blog: title %q has no usable characters", title)
	}
	name := filepath.Join(contentDir, "blog", slug, "index.md")
	if _, err := os.Stat(name); err == nil {
		return "", fmt.Errorf("blog: %s already exists", name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if err := scaffold.Render(f, scaffold.Post{Title: title, Date: date, Draft: draft}); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	return name, f.Close()
}
