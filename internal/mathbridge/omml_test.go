package mathbridge

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestStripHTMLTags(t *testing.T) {
	in := `<m:oMath><font face="Cambria Math"><m:r><m:t>x</m:t></m:r></font><br/></m:oMath>`
	out := stripHTMLTags(in)
	if strings.Contains(out, "<font") || strings.Contains(out, "<br") {
		t.Errorf("HTML tags survived: %q", out)
	}
	if !strings.Contains(out, "<m:t>x</m:t>") {
		t.Errorf("OMML content damaged: %q", out)
	}
}

func TestWrapBareText_SynthesizesMT(t *testing.T) {
	in := `<m:oMath><m:r>x+1</m:r></m:oMath>`
	out := wrapBareText(in)
	if !strings.Contains(out, "<m:t>x+1</m:t>") {
		t.Errorf("bare run text was not wrapped: %q", out)
	}
}

func TestWrapBareText_PreservesRunProperties(t *testing.T) {
	in := `<m:r><m:rPr><m:sty m:val="p"/></m:rPr>y</m:r>`
	out := wrapBareText(in)
	if !strings.Contains(out, `<m:rPr><m:sty m:val="p"/></m:rPr>`) {
		t.Errorf("run properties lost: %q", out)
	}
	if !strings.Contains(out, "<m:t>y</m:t>") {
		t.Errorf("text not wrapped after properties: %q", out)
	}
}

func TestWrapBareText_LeavesProperRunsAlone(t *testing.T) {
	in := `<m:r><m:t>already fine</m:t></m:r>`
	if out := wrapBareText(in); out != in {
		t.Errorf("well-formed run was modified:\nwant %q\ngot  %q", in, out)
	}
}

func TestStripNamespaceDecls(t *testing.T) {
	in := `<m:oMath xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"><m:t>x</m:t></m:oMath>`
	out := stripNamespaceDecls(in)
	if strings.Contains(out, "xmlns") {
		t.Errorf("namespace declaration survived: %q", out)
	}
	if !strings.HasPrefix(out, "<m:oMath>") {
		t.Errorf("element damaged: %q", out)
	}
}

func TestRestoreCase_KnownNames(t *testing.T) {
	in := `<m:omathpara><m:omath><m:ssub><m:e/><m:sub/></m:ssub></m:omath></m:omathpara>`
	out := restoreCase(in)
	for _, want := range []string{"<m:oMathPara>", "<m:oMath>", "<m:sSub>", "</m:sSub>", "</m:oMath>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}

func TestRestoreCase_AttributeNames(t *testing.T) {
	in := `<m:sty m:val="p"/>`
	out := restoreCase(in)
	if !strings.Contains(out, `m:val=`) {
		t.Errorf("attribute case wrong: %q", out)
	}
}

func TestRestoreCase_UnknownNamesUntouched(t *testing.T) {
	in := `<m:customthing attr="1"/>`
	if out := restoreCase(in); out != in {
		t.Errorf("unknown name modified:\nwant %q\ngot  %q", in, out)
	}
}

func TestRestoreCase_AlreadyCanonicalRoundTrips(t *testing.T) {
	in := `<m:oMathPara><m:oMath><m:r><m:t>x</m:t></m:r></m:oMath></m:oMathPara>`
	if out := restoreCase(in); out != in {
		t.Errorf("canonical input changed:\nwant %q\ngot  %q", in, out)
	}
}

func TestRepairOMML_FullChain(t *testing.T) {
	in := `<m:omath xmlns:m="http://x"><font><m:r>a+b</m:r></font></m:omath>`
	out := RepairOMML(in)
	if strings.Contains(out, "font") || strings.Contains(out, "xmlns") {
		t.Errorf("repair left junk: %q", out)
	}
	if !strings.Contains(out, "<m:oMath>") {
		t.Errorf("case not restored: %q", out)
	}
	if !strings.Contains(out, "<m:t>a+b</m:t>") {
		t.Errorf("bare text not wrapped: %q", out)
	}
}

func TestBuildPackage_ContainsAllParts(t *testing.T) {
	data, err := BuildPackage(`<m:oMath><m:r><m:t>x</m:t></m:r></m:oMath>`)
	if err != nil {
		t.Fatalf("BuildPackage failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}

	want := map[string]bool{
		"[Content_Types].xml":          false,
		"_rels/.rels":                  false,
		"word/_rels/document.xml.rels": false,
		"word/document.xml":            false,
	}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; ok {
			want[f.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing package part %s", name)
		}
	}
}

func TestBuildPackage_EmbedsFragment(t *testing.T) {
	frag := `<m:oMath><m:r><m:t>E=mc^2</m:t></m:r></m:oMath>`
	data, err := BuildPackage(frag)
	if err != nil {
		t.Fatalf("BuildPackage failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document part: %v", err)
		}
		var buf bytes.Buffer
		buf.ReadFrom(rc)
		rc.Close()
		if !strings.Contains(buf.String(), frag) {
			t.Error("fragment missing from document part")
		}
		if !strings.Contains(buf.String(), `xmlns:m=`) {
			t.Error("math namespace declaration missing from envelope")
		}
		return
	}
	t.Fatal("word/document.xml not found")
}
