package intake

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0x88
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

// buildPDF writes a PDF with one page per entry; each non-nil entry embeds
// that JPEG as the page's image, a nil entry produces a page without any
// raster content. Offsets are computed while assembling, so the file is a
// fully valid PDF.
func buildPDF(t *testing.T, path string, pageJPEGs [][]byte) {
	t.Helper()

	type pageRefs struct{ page, contents, image int }
	refs := make([]pageRefs, len(pageJPEGs))
	next := 3
	for i, jpg := range pageJPEGs {
		refs[i].page = next
		next++
		if jpg != nil {
			refs[i].contents = next
			refs[i].image = next + 1
			next += 2
		}
	}

	kids := make([]string, len(refs))
	for i, r := range refs {
		kids[i] = fmt.Sprintf("%d 0 R", r.page)
	}

	objects := [][]byte{
		[]byte("<< /Type /Catalog /Pages 2 0 R >>"),
		[]byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
			strings.Join(kids, " "), len(refs))),
	}
	for i, r := range refs {
		jpg := pageJPEGs[i]
		if jpg == nil {
			objects = append(objects,
				[]byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] >>"))
			continue
		}
		objects = append(objects, []byte(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << /XObject << /Im0 %d 0 R >> >> /Contents %d 0 R >>",
			r.image, r.contents)))

		content := "q 200 0 0 200 0 0 cm /Im0 Do Q"
		objects = append(objects, []byte(fmt.Sprintf(
			"<< /Length %d >>\nstream\n%s\nendstream", len(content), content)))

		var img bytes.Buffer
		fmt.Fprintf(&img,
			"<< /Type /XObject /Subtype /Image /Width 32 /Height 32 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>\nstream\n",
			len(jpg))
		img.Write(jpg)
		img.WriteString("\nendstream")
		objects = append(objects, img.Bytes())
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(body)
		buf.WriteString("\nendobj\n")
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}

func TestExpandPDFOnePagePerImage(t *testing.T) {
	workDir := t.TempDir()
	jpg := makeJPEG(t)
	pdfPath := filepath.Join(workDir, "essays.pdf")
	buildPDF(t, pdfPath, [][]byte{jpg, jpg})

	pages, err := expandPDF(pdfPath, workDir)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Page != i+1 {
			t.Fatalf("page order broken at %d: %+v", i, page)
		}
		if page.Err != nil {
			t.Fatalf("page %d: %v", page.Page, page.Err)
		}
		info, err := os.Stat(page.Path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("page %d image missing: %v", page.Page, err)
		}
	}
}

func TestExpandPDFPageWithoutImage(t *testing.T) {
	workDir := t.TempDir()
	jpg := makeJPEG(t)
	pdfPath := filepath.Join(workDir, "mixed.pdf")
	buildPDF(t, pdfPath, [][]byte{jpg, nil, jpg})

	pages, err := expandPDF(pdfPath, workDir)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].Err != nil || pages[2].Err != nil {
		t.Fatalf("image pages must extract: %+v", pages)
	}
	// The imageless page fails alone; its neighbors still come through.
	if pages[1].Err == nil {
		t.Fatalf("page without raster content must report an error")
	}
}

func TestExpandPDFCorruptFile(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := expandPDF(path, workDir); err == nil {
		t.Fatalf("expect expansion error")
	}
}
