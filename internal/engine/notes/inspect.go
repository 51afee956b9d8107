package notes

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFInfo summarizes an exported PDF.
type PDFInfo struct {
	Pages int
	Lines []string // shown text strings, in content-stream order
}

var (
	showTextRe    = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*Tj`)
	disableConfig sync.Once
)

// InspectPDF parses the PDF at path and extracts its page count and text runs.
func InspectPDF(path string) (*PDFInfo, error) {
	disableConfig.Do(api.DisableConfigDir)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu: %w", err)
	}

	info := &PDFInfo{Pages: ctx.PageCount}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		for _, m := range showTextRe.FindAllSubmatch(data, -1) {
			info.Lines = append(info.Lines, unescapePDFString(string(m[1])))
		}
	}
	return info, nil
}

// Text joins all extracted lines with newlines.
func (i *PDFInfo) Text() string {
	return strings.Join(i.Lines, "\n")
}

func unescapePDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
