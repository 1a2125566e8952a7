package blog

import (
	"encoding/json"
	"io"
	"strconv"
)

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Display         string         `json:"display"`
	Icons           []manifestIcon `json:"icons"`
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

func (a *App) writeManifest(w io.Writer) error {
	m := a.Config.Manifest
	icons := make([]manifestIcon, 0, len(iconSizes))
	for _, size := range iconSizes {
		s := strconv.Itoa(size)
		icons = append(icons, manifestIcon{Src: iconURL(size), Sizes: s + "x" + s, Type: "image/png"})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(webManifest{
		Name:            m.Name,
		ShortName:       m.ShortName,
		StartURL:        m.StartURL,
		BackgroundColor: m.BackgroundColor,
		ThemeColor:      m.ThemeColor,
		Display:         m.Display,
		Icons:           icons,
	})
}
