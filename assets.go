package inkpress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	coversSubdir = "covers"
	jpegQuality  = 80
)

// processCover decodes an image, scales it down to maxWidth if it is wider,
// and re-encodes it as JPEG. Height keeps the original aspect ratio.
func processCover(src io.Reader, maxWidth int) ([]byte, error) {
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

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCovers generates web-sized JPEG derivatives for every image under
// <static>/covers, writing them to <out>/covers with a .jpg extension.
// Originals stay out of the deployable tree. Returns the number of covers
// written.
func (e *Engine) BuildCovers() (int, error) {
	srcDir := filepath.Join(e.Config.StaticDir, coversSubdir)
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return 0, nil
	}
	outDir := filepath.Join(e.Config.OutputDir, coversSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}

	count := 0
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		data, err := processCover(f, e.Config.CoverMaxWidth)
		f.Close()
		if err != nil {
			return fmt.Errorf("inkpress: cover %s: %w", path, err)
		}

		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		outPath := filepath.Join(outDir, Slugify(stem)+".jpg")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
