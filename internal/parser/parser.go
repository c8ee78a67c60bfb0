// Package parser converts local file artifacts into plain-text documents
// with provenance metadata attached. A parse failure never aborts
// ingestion; it surfaces as an error the pipeline counts.
package parser

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"drive-rag/internal/models"
)

// Extract parses the artifact at path and returns zero or more documents,
// each carrying a copy of meta plus format-specific keys (page, sheet).
// Multi-sheet spreadsheets and multi-page PDFs yield one document per
// sheet or page.
func Extract(path string, meta map[string]string) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return extractPDF(path, meta)
	case ".docx":
		return extractDOCX(path, meta)
	case ".pptx":
		return extractPPTX(path, meta)
	case ".xlsx":
		return extractXLSX(path, meta)
	case ".ods":
		return extractODS(path, meta)
	case ".md":
		return extractMarkdown(path, meta)
	case ".csv":
		return extractCSV(path, meta)
	case ".txt":
		return extractText(path, meta)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func extractPDF(path string, meta map[string]string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not lose the rest of the file.
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		docs = append(docs, newDocument(pageText, meta, "page", strconv.Itoa(i)))
	}
	return docs, nil
}

func extractDOCX(path string, meta map[string]string) ([]models.Document, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var paragraphs []string
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}
	return []models.Document{newDocument(strings.Join(paragraphs, "\n"), meta)}, nil
}

func extractPPTX(path string, meta map[string]string) ([]models.Document, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []models.Document
	slideNum := 0
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		slideNum++
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := extractTextFromXML(string(data))
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		docs = append(docs, newDocument(slideText, meta, "slide", strconv.Itoa(slideNum)))
	}
	return docs, nil
}

func extractXLSX(path string, meta map[string]string) ([]models.Document, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for _, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		empty := true
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				v := cell.String()
				if strings.TrimSpace(v) != "" {
					empty = false
				}
				text.WriteString(v + "\t")
			}
			text.WriteString("\n")
		}
		if empty {
			continue
		}
		docs = append(docs, newDocument(text.String(), meta, "sheet", sheet.Name))
	}
	return docs, nil
}

func extractODS(path string, meta map[string]string) ([]models.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []models.Document
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		empty := true
		for _, row := range rows {
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					empty = false
				}
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if empty {
			continue
		}
		docs = append(docs, newDocument(text.String(), meta, "sheet", sheetName))
	}
	return docs, nil
}

func extractMarkdown(path string, meta map[string]string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root := goldmark.New().Parser().Parse(gtext.NewReader(data))
	var buf bytes.Buffer
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, isBlock := n.(*ast.Paragraph); isBlock {
				buf.WriteByte('\n')
			}
			if _, isHeading := n.(*ast.Heading); isHeading {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Segment.Value(data))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, nil
	}
	return []models.Document{newDocument(text, meta)}, nil
}

func extractCSV(path string, meta map[string]string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var text strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		text.WriteString(strings.Join(record, "\t"))
		text.WriteString("\n")
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, nil
	}
	return []models.Document{newDocument(text.String(), meta)}, nil
}

func extractText(path string, meta map[string]string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []models.Document{newDocument(string(data), meta)}, nil
}

// newDocument copies meta and appends optional key/value pairs.
func newDocument(text string, meta map[string]string, kv ...string) models.Document {
	m := make(map[string]string, len(meta)+len(kv)/2)
	for k, v := range meta {
		m[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return models.Document{Text: text, Metadata: m}
}

// extractTextFromXML pulls the text runs out of a slide's XML.
func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}
