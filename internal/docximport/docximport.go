// Package docximport reads uploaded .docx files: the raw document part for
// conversion, and a plain-text preview for history titles.
package docximport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocumentXML returns the raw word/document.xml part of a .docx package.
// The OOXML is handed straight to the converter, which treats it like
// clipboard markup.
func DocumentXML(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx package: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("read document part: %w", err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("docx package has no word/document.xml")
}

// Preview extracts a title and a short plain-text excerpt. The first
// non-empty paragraph becomes the title.
func Preview(data []byte) (title, excerpt string, err error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("parse docx: %w", err)
	}

	var paras []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := paragraphText(para); text != "" {
			paras = append(paras, text)
		}
	}
	if len(paras) == 0 {
		return "", "", nil
	}

	title = paras[0]
	if len(title) > 80 {
		title = title[:80]
	}
	excerpt = strings.Join(paras, "\n")
	if len(excerpt) > 500 {
		excerpt = excerpt[:500]
	}
	return title, excerpt, nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
