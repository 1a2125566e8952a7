package content

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlugFor returns the URL path a source file is published at. rel is the
// slash separated path of the file relative to the content root.
//
//	blog/hello/index.md -> /blog/hello/
//	about.md            -> /about/
//	index.md            -> /
func SlugFor(rel string) string {
	rel = path.Clean(strings.TrimPrefix(rel, "/"))
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(rel) == "index" {
		rel = path.Dir(rel)
	}
	if rel == "." || rel == "" {
		return "/"
	}
	return "/" + rel + "/"
}

// TitleFor derives a title from a file name when the front matter has none.
// For index files the name of the enclosing directory is used.
func TitleFor(rel string) string {
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if stem == "index" {
		if dir := path.Base(path.Dir(rel)); dir != "." && dir != "/" {
			stem = dir
		}
	}
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(stem)
}
