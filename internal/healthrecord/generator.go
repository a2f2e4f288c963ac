package healthrecord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

const (
	fontFamily = "Helvetica"
	fontSize   = 12
	marginLeft = 30.0
	pageWidth  = 612.0
)

// Generator renders health records to a single PDF path, replacing the
// previous document on every call.
type Generator struct {
	path    string
	metrics PageMetrics
	logger  *logging.Logger

	mu sync.Mutex
}

// NewGenerator returns a generator writing to path.
func NewGenerator(path string, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{path: path, metrics: LetterMetrics, logger: logger}
}

// Path returns the absolute output path.
func (g *Generator) Path() string {
	abs, err := filepath.Abs(g.path)
	if err != nil {
		return g.path
	}
	return abs
}

// Generate draws the record and writes it to disk.
func (g *Generator) Generate(ctx context.Context, rec HealthRecord) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Health Record", true)
	pdf.SetCreator("clinic-tools", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	maxWidth := pageWidth - 2*marginLeft
	var lines []string
	for _, entry := range rec.Lines() {
		lines = append(lines, Wrap(tr(entry), maxWidth, pdf.GetStringWidth)...)
	}

	page := 0
	placements := Layout(lines, g.metrics)
	for _, p := range placements {
		if p.Page != page {
			pdf.AddPage()
			pdf.SetFont(fontFamily, "", fontSize)
			page = p.Page
		}
		pdf.Text(marginLeft, p.Y, p.Text)
	}
	if err := pdf.Error(); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := g.write(pdf); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrRender, err)
	}

	doc := Document{Path: g.Path(), Pages: pdf.PageCount(), Lines: len(placements)}
	g.logger.Info("pdf generated", "path", doc.Path, "pages", doc.Pages, "lines", doc.Lines)
	return doc, nil
}

func (g *Generator) write(pdf *fpdf.Fpdf) error {
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".health-record-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod pdf: %w", err)
	}
	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close pdf: %w", err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace pdf: %w", err)
	}
	return nil
}
