package docximport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml"
            ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>
`

const testRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1"
                Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
                Target="word/document.xml"/>
</Relationships>
`

const testWordRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>
`

const testDocumentFmt = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
            xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">
  <w:body>%s</w:body>
</w:document>
`

// buildDocx zips a minimal four-part package around the given body XML.
func buildDocx(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml":          testContentTypes,
		"_rels/.rels":                  testRels,
		"word/_rels/document.xml.rels": testWordRels,
		"word/document.xml":            fmt.Sprintf(testDocumentFmt, bodyXML),
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create part %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write part %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close package: %v", err)
	}
	return buf.Bytes()
}

func paragraph(text string) string {
	return "<w:p><w:r><w:t>" + text + "</w:t></w:r></w:p>"
}

func TestDocumentXML_ReturnsDocumentPart(t *testing.T) {
	data := buildDocx(t, paragraph("Sample Title"))
	xml, err := DocumentXML(data)
	if err != nil {
		t.Fatalf("DocumentXML failed: %v", err)
	}
	if !strings.Contains(xml, "<w:document") {
		t.Errorf("document root missing: %q", xml)
	}
	if !strings.Contains(xml, "Sample Title") {
		t.Errorf("paragraph text missing: %q", xml)
	}
}

func TestDocumentXML_MissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(testContentTypes))
	zw.Close()

	if _, err := DocumentXML(buf.Bytes()); err == nil {
		t.Fatal("expected error for package without word/document.xml")
	}
}

func TestDocumentXML_NotAZip(t *testing.T) {
	if _, err := DocumentXML([]byte("plain text, not a zip")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestPreview_TitleAndExcerpt(t *testing.T) {
	data := buildDocx(t, paragraph("Sample Title")+paragraph("Body text paragraph."))
	title, excerpt, err := Preview(data)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if title != "Sample Title" {
		t.Errorf("title = %q", title)
	}
	if excerpt != "Sample Title\nBody text paragraph." {
		t.Errorf("excerpt = %q", excerpt)
	}
}

func TestPreview_TruncatesLongTitle(t *testing.T) {
	data := buildDocx(t, paragraph(strings.Repeat("a", 120)))
	title, _, err := Preview(data)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(title) != 80 {
		t.Errorf("title length = %d, want 80", len(title))
	}
}

func TestPreview_NoText(t *testing.T) {
	data := buildDocx(t, "<w:p></w:p>")
	title, excerpt, err := Preview(data)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if title != "" || excerpt != "" {
		t.Errorf("expected empty preview, got %q / %q", title, excerpt)
	}
}
