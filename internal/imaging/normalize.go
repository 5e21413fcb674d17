package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"extractos/internal/domain"
)

// Normalizer converts an input file (PDF or raster image) into page images.
// A multi-page PDF is collapsed into a single vertically-stacked composite so
// every file yields exactly one image downstream.
type Normalizer struct {
	pdftoppm string
	dpi      int
	runner   Runner
}

// NewNormalizer creates a Normalizer that rasterizes PDFs with the given
// poppler binary at the given DPI.
func NewNormalizer(pdftoppm string, dpi int) *Normalizer {
	return NewNormalizerWithRunner(pdftoppm, dpi, execRunner{})
}

// NewNormalizerWithRunner creates a Normalizer with a custom command runner (for testing).
func NewNormalizerWithRunner(pdftoppm string, dpi int, runner Runner) *Normalizer {
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Normalizer{pdftoppm: pdftoppm, dpi: dpi, runner: runner}
}

// Load produces the ordered page images for a file. The file extension decides
// handling: .pdf is rasterized, .jpg/.jpeg/.png load directly, anything else
// fails with domain.ErrUnsupportedFileType.
func (n *Normalizer) Load(ctx context.Context, path string) ([]image.Image, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s (%s)", domain.ErrUnsupportedFileType, ext, filepath.Base(path))
	}

	if fileType == domain.FileTypePDF {
		img, err := n.renderPDF(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF %s: %w", path, err)
		}
		return []image.Image{img}, nil
	}

	img, err := decodeImageFile(path)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return []image.Image{img}, nil
}

// renderPDF rasterizes every page and stacks multi-page documents into one
// composite image (width = max page width, height = sum of page heights).
func (n *Normalizer) renderPDF(ctx context.Context, path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	pageCount, err := api.PageCount(f, nil)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("reading page count: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	tmpDir, err := os.MkdirTemp("", "extractos-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			log.Printf("imaging.renderPDF: failed to remove temp dir %q: %v", tmpDir, rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := n.runner.Run(ctx, n.pdftoppm, "-r", fmt.Sprintf("%d", n.dpi), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]image.Image, 0, len(matches))
	for _, m := range matches {
		img, err := decodeImageFile(m)
		if err != nil {
			return nil, fmt.Errorf("decoding rendered page %s: %w", filepath.Base(m), err)
		}
		pages = append(pages, img)
	}

	if len(pages) == 1 {
		return pages[0], nil
	}
	return StackVertically(pages), nil
}

// StackVertically concatenates pages top-to-bottom at x=0 onto a canvas whose
// width is the widest page and whose height is the sum of page heights.
func StackVertically(pages []image.Image) image.Image {
	var width, height int
	for _, p := range pages {
		b := p.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	y := 0
	for _, p := range pages {
		b := p.Bounds()
		dst := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, dst, p, b.Min, draw.Src)
		y += b.Dy()
	}
	return canvas
}

// EncodeJPEG encodes an image as JPEG for the wire.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, nil); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return out.Bytes(), nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
