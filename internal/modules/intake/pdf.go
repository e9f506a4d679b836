package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageImage is one extracted page, or the reason it could not be extracted.
type pageImage struct {
	Page int
	Path string
	Err  error
}

// expandPDF turns a PDF into one image per page. The source is optimized
// first with relaxed validation, which repairs most scanner output. Pages
// without an extractable raster image are returned with Err set so the
// caller can surface them without dropping the rest of the file.
func expandPDF(pdfPath, workDir string) ([]pageImage, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	optimized := filepath.Join(workDir, filepath.Base(pdfPath)+".opt.pdf")
	if err := api.OptimizeFile(pdfPath, optimized, conf); err != nil {
		return nil, fmt.Errorf("optimize pdf: %w", err)
	}
	defer os.Remove(optimized)

	pageCount, err := api.PageCountFile(optimized)
	if err != nil {
		return nil, fmt.Errorf("count pdf pages: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([]pageImage, 0, pageCount)
	for p := 1; p <= pageCount; p++ {
		path, err := extractPageImage(optimized, workDir, p, conf)
		pages = append(pages, pageImage{Page: p, Path: path, Err: err})
	}
	return pages, nil
}

// extractPageImage pulls the raster images of a single page into an empty
// scratch directory; extracting page by page keeps the page mapping exact.
// Scanned essays carry one full-page image; when a page has several, the
// largest one is the scan.
func extractPageImage(pdfPath, workDir string, page int, conf *model.Configuration) (string, error) {
	pageDir, err := os.MkdirTemp(workDir, fmt.Sprintf("page-%d-*", page))
	if err != nil {
		return "", err
	}

	if err := api.ExtractImagesFile(pdfPath, pageDir, []string{strconv.Itoa(page)}, conf); err != nil {
		return "", fmt.Errorf("extract page %d: %w", page, err)
	}

	entries, err := os.ReadDir(pageDir)
	if err != nil {
		return "", err
	}

	var best string
	var bestSize int64
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(pageDir, ent.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("page %d carries no extractable image", page)
	}
	return best, nil
}
