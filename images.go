package blog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/vedran/blog/content"
)

const (
	maxImageWidth = 590
	jpegQuality   = 80
	avatarSize    = 50

	// AvatarURL is where the header picture is published.
	AvatarURL = "/avatar.jpg"
)

// iconSizes are the square manifest icons generated from the site icon.
var iconSizes = []int{48, 72, 96, 144, 192, 256, 384, 512}

// iconURL returns the published path of the icon of the given size.
func iconURL(size int) string {
	return fmt.Sprintf("/icons/icon-%dx%d.png", size, size)
}

// processImage decodes an image from src and, if it is wider than maxWidth,
// scales it down keeping the aspect ratio. The result is encoded in the
// format named by ext (".png", anything else is JPEG).
func processImage(src io.Reader, maxWidth int, ext string) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := h * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	return encodeImage(img, ext)
}

// thumbnail crops the centre square of the image in src and scales it to
// size x size.
func thumbnail(src io.Reader, size int, ext string) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)
	return encodeImage(dst, ext)
}

func encodeImage(img image.Image, ext string) ([]byte, error) {
	var buf bytes.Buffer
	if strings.EqualFold(ext, ".png") {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

// writeGeneratedImages renders the avatar and the manifest icons into dst.
// A missing source picture is logged and skipped.
func (a *App) writeGeneratedImages(dst string) error {
	if err := a.generate(a.Config.AvatarPath, filepath.Join(dst, filepath.FromSlash(AvatarURL)), func(r io.Reader) ([]byte, error) {
		return thumbnail(r, avatarSize, ".jpg")
	}); err != nil {
		return err
	}
	for _, size := range iconSizes {
		size := size
		if err := a.generate(a.Config.IconPath, filepath.Join(dst, filepath.FromSlash(iconURL(size))), func(r io.Reader) ([]byte, error) {
			return thumbnail(r, size, ".png")
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) generate(src, dst string, fn func(io.Reader) ([]byte, error)) error {
	f, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		a.Log.Warn("image source missing", zap.String("path", src))
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := fn(f)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	return writeFile(dst, data)
}

// writeAssets publishes the files referenced by each entry next to its page.
// Images wider than the content column are scaled down; everything else is
// copied as is.
func (a *App) writeAssets(dst string, entries []content.Entry) error {
	for _, e := range entries {
		for _, rel := range e.Assets {
			src := filepath.Join(a.Config.ContentDir, filepath.FromSlash(path.Join(e.SourceDir, rel)))
			out := filepath.Join(dst, filepath.FromSlash(path.Join(e.Slug, rel)))
			if err := publishAsset(src, out); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					a.Log.Warn("asset missing", zap.String("entry", e.Slug), zap.String("path", rel))
					continue
				}
				return fmt.Errorf("asset %s of %s: %w", rel, e.Slug, err)
			}
		}
	}
	return nil
}

func publishAsset(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(src))
	if isImage(src) && ext != ".gif" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err == nil && cfg.Width > maxImageWidth {
			if data, err = processImage(bytes.NewReader(data), maxImageWidth, ext); err != nil {
				return err
			}
		}
	}
	return writeFile(dst, data)
}
