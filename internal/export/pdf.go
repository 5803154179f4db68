package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// pxToPt converts 96 dpi pixels to PDF points.
const pxToPt = 72.0 / 96.0

// PDFSaver writes the capture as a single page PDF sized to the image.
type PDFSaver struct {
	FileSaver
}

// NewPDFSaver saves PDFs into dir.
func NewPDFSaver(dir string) *PDFSaver {
	return &PDFSaver{FileSaver: FileSaver{Dir: dir}}
}

// Export implements Target.
func (s *PDFSaver) Export(ctx context.Context, p Payload) (Result, error) {
	if p.Image == nil {
		return Result{}, fmt.Errorf("pdf: no image")
	}
	name := strings.TrimSuffix(p.Filename, ".png") + ".pdf"
	path, err := s.resolve(ctx, name)
	if err != nil {
		return Result{}, err
	}
	data, err := renderPDF(p)
	if err != nil {
		return Result{}, err
	}
	if err := writeFile(path, data); err != nil {
		return Result{}, err
	}
	return Result{Action: ActionPDF, Path: path}, nil
}

func renderPDF(p Payload) ([]byte, error) {
	b := p.Image.Bounds()
	w, h := float64(b.Dx())*pxToPt, float64(b.Dy())*pxToPt
	orientation := "P"
	if w > h {
		orientation = "L"
	}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(p.Filename, true)
	doc.SetCreator("snipt", true)
	doc.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(p.Filename, opts, bytes.NewReader(p.PNG))
	doc.ImageOptions(p.Filename, 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
