package notes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/anatolykoptev/go_notes/internal/engine"
)

// FileSuffix is appended to the subject name to form the export file name.
const FileSuffix = "_study_notes.pdf"

// Section headings, in document order.
const (
	HeadingNotes     = "Detailed Notes"
	HeadingQuestions = "Placement Aptitude Questions"
)

// Page layout, in millimetres and points.
const (
	pageMargin    = 15.0
	titleWidth    = 200.0
	titleHeight   = 10.0
	lineHeight    = 7.0
	bulletIndent  = 10.0
	titleFontSize = 16.0
	headFontSize  = 14.0
	bodyFontSize  = 12.0
	fontFamily    = "Arial"
)

// ErrBadSubject is returned when a subject name cannot be used as a file name.
var ErrBadSubject = errors.New("subject cannot be used as a file name")

var numberedLineRe = regexp.MustCompile(`^\d+\.`)

// Document describes an exported PDF.
type Document struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Pages    int    `json:"pages"`
	Size     int64  `json:"size"`
}

// ExportFileName returns the PDF file name for a subject.
func ExportFileName(subject string) string {
	return subject + FileSuffix
}

// Exporter lays out notes and questions into a paginated A4 PDF.
type Exporter struct {
	Dir string
}

// NewExporter returns an exporter writing into dir ("" = current directory).
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{Dir: dir}
}

// Export writes "<subject>_study_notes.pdf" into the exporter's directory,
// overwriting any previous file, and validates the result by reading it back.
func (e *Exporter) Export(notesText, questionsText, subject string) (*Document, error) {
	doc, err := e.export(notesText, questionsText, subject)
	if err != nil {
		engine.IncrExportErrors()
		return nil, err
	}
	engine.IncrExports()
	return doc, nil
}

func (e *Exporter) export(notesText, questionsText, subject string) (*Document, error) {
	if strings.TrimSpace(subject) == "" || strings.ContainsAny(subject, `/\`) || strings.Contains(subject, "..") {
		return nil, fmt.Errorf("%w: %q", ErrBadSubject, subject)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}

	name := ExportFileName(subject)
	path := filepath.Join(e.Dir, name)

	pdf := Layout(notesText, questionsText, subject)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	info, err := InspectPDF(path)
	if err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	return &Document{Path: path, FileName: name, Pages: info.Pages, Size: st.Size()}, nil
}

// Layout renders the document without writing it.
//
// Page structure: a centered bold title, the notes section, then the
// questions section. Lines starting with a bullet marker are indented and
// numbered question lines get extra space above them; both are matched on the
// line as written, so "  - x" is not a bullet. Blank lines are skipped and
// long lines wrap.
func Layout(notesText, questionsText, subject string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Study Notes on "+subject, true)
	pdf.SetCreator("go_notes", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.CellFormat(titleWidth, titleHeight, tr("Study Notes on "+subject), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	heading(pdf, HeadingNotes)
	for _, line := range strings.Split(notesText, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isBullet(line) {
			pdf.Cell(bulletIndent, 0, "")
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "", false)
	}

	pdf.Ln(10)
	heading(pdf, HeadingQuestions)
	for _, line := range strings.Split(questionsText, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if numberedLineRe.MatchString(line) {
			pdf.Ln(3)
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "", false)
	}
	return pdf
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont(fontFamily, "B", headFontSize)
	pdf.CellFormat(titleWidth, titleHeight, text, "", 1, "", false, 0, "")
	pdf.Ln(5)
	pdf.SetFont(fontFamily, "", bodyFontSize)
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•")
}
