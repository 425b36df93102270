package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/aqua777/go-ragpipe/schema"
)

// PDFReader extracts text from PDF files. With SplitByPage set, each page
// becomes its own document carrying a page_number metadata entry.
type PDFReader struct {
	SplitByPage bool
}

func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// WithSplitByPage enables one document per page.
func (r *PDFReader) WithSplitByPage(split bool) *PDFReader {
	r.SplitByPage = split
	return r
}

func (r *PDFReader) LoadFile(path string) ([]schema.Document, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	numPages := pdfReader.NumPage()
	if r.SplitByPage {
		return r.loadByPage(pdfReader, numPages, path)
	}
	return r.loadWhole(pdfReader, numPages, path)
}

func (r *PDFReader) loadByPage(pdfReader *pdf.Reader, numPages int, path string) ([]schema.Document, error) {
	var docs []schema.Document
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		text := pageText(pdfReader, pageNum)
		if text == "" {
			continue
		}
		doc := schema.NewDocument(text)
		doc.Metadata["source"] = path
		doc.Metadata["file_name"] = filepath.Base(path)
		doc.Metadata["page_number"] = pageNum
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no text content found in %s", path)
	}
	return docs, nil
}

func (r *PDFReader) loadWhole(pdfReader *pdf.Reader, numPages int, path string) ([]schema.Document, error) {
	var sb strings.Builder
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		text := pageText(pdfReader, pageNum)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	full := strings.TrimSpace(sb.String())
	if full == "" {
		return nil, fmt.Errorf("no text content found in %s", path)
	}

	doc := schema.NewDocument(full)
	doc.Metadata["source"] = path
	doc.Metadata["file_name"] = filepath.Base(path)
	return []schema.Document{doc}, nil
}

// pageText extracts plain text from one page, returning "" on any failure
// so a broken page does not sink the whole file.
func pageText(pdfReader *pdf.Reader, pageNum int) string {
	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

var _ Reader = (*PDFReader)(nil)
