// Package mathbridge converts raw OMML fragments to LaTeX by repairing the
// fragment, packaging it into a minimal docx container, and handing it to
// Pandoc. Malformed input degrades to plain-text extraction; it never fails
// the whole conversion.
package mathbridge

import (
	"regexp"
	"strings"
)

// Word mixes presentation HTML (<font>, <span>, <i>, <br>, ...) into
// clipboard OMML. None of it is valid inside a docx part.
var (
	htmlOpenTagRe  = regexp.MustCompile(`(?i)<(?:font|span|i|b|u|em|strong|br|div|img|a)\b[^>]*/?>`)
	htmlCloseTagRe = regexp.MustCompile(`(?i)</(?:font|span|i|b|u|em|strong|br|div|img|a)>`)
)

func stripHTMLTags(xml string) string {
	xml = htmlOpenTagRe.ReplaceAllString(xml, "")
	xml = htmlCloseTagRe.ReplaceAllString(xml, "")
	return xml
}

var (
	mathRunRe = regexp.MustCompile(`(?s)<m:r\b[^>]*>(.*?)</m:r>`)
	rPrRe     = regexp.MustCompile(`(?s)^(<m:rPr\b.*?</m:rPr>)(.*)$`)
)

// wrapBareText synthesizes the <m:t> wrapper around bare text inside <m:r>
// runs. Proper OOXML keeps run text in <m:t>, but clipboard HTML often drops
// it, and Pandoc extracts nothing without it. A leading run-properties
// element is preserved unchanged.
func wrapBareText(xml string) string {
	return mathRunRe.ReplaceAllStringFunc(xml, func(run string) string {
		inner := mathRunRe.FindStringSubmatch(run)[1]
		if strings.Contains(inner, "<m:t>") || strings.Contains(inner, "<m:t ") {
			return run
		}
		if m := rPrRe.FindStringSubmatch(inner); m != nil {
			if text := strings.TrimSpace(m[2]); text != "" {
				return "<m:r>" + m[1] + "<m:t>" + text + "</m:t></m:r>"
			}
			return "<m:r>" + m[1] + "</m:r>"
		}
		if text := strings.TrimSpace(inner); text != "" {
			return "<m:r><m:t>" + text + "</m:t></m:r>"
		}
		return "<m:r></m:r>"
	})
}

// The container document declares every namespace once, globally.
var xmlnsAttrRe = regexp.MustCompile(`\s+xmlns:\w+="[^"]*"`)

func stripNamespaceDecls(xml string) string {
	return xmlnsAttrRe.ReplaceAllString(xml, "")
}

// Canonical mixed-case spellings for OMML (m:) and WordprocessingML (w:)
// names. Generic HTML parsers lowercase every tag and attribute name, which
// Pandoc's docx reader rejects. Names not in the table keep their received
// case untouched: fragments that were never mangled must round-trip.
var ommlNameCase = map[string]string{
	"m:omath":       "m:oMath",
	"m:omathpara":   "m:oMathPara",
	"m:r":           "m:r",
	"m:t":           "m:t",
	"m:f":           "m:f",
	"m:fpr":         "m:fPr",
	"m:num":         "m:num",
	"m:den":         "m:den",
	"m:e":           "m:e",
	"m:sub":         "m:sub",
	"m:sup":         "m:sup",
	"m:ssub":        "m:sSub",
	"m:ssup":        "m:sSup",
	"m:ssubsup":     "m:sSubSup",
	"m:nary":        "m:nary",
	"m:narypr":      "m:naryPr",
	"m:chr":         "m:chr",
	"m:limloc":      "m:limLoc",
	"m:limlow":      "m:limLow",
	"m:limupp":      "m:limUpp",
	"m:lim":         "m:lim",
	"m:rad":         "m:rad",
	"m:radpr":       "m:radPr",
	"m:deghide":     "m:degHide",
	"m:deg":         "m:deg",
	"m:func":        "m:func",
	"m:funcpr":      "m:funcPr",
	"m:fname":       "m:fName",
	"m:d":           "m:d",
	"m:dpr":         "m:dPr",
	"m:begchr":      "m:begChr",
	"m:endchr":      "m:endChr",
	"m:eqarr":       "m:eqArr",
	"m:m":           "m:m",
	"m:mr":          "m:mr",
	"m:mpr":         "m:mPr",
	"m:mcs":         "m:mcs",
	"m:mc":          "m:mc",
	"m:mcpr":        "m:mcPr",
	"m:count":       "m:count",
	"m:mcjc":        "m:mcJc",
	"m:ctrlpr":      "m:ctrlPr",
	"m:rpr":         "m:rPr",
	"m:sty":         "m:sty",
	"m:brk":         "m:brk",
	"m:aln":         "m:aln",
	"m:bar":         "m:bar",
	"m:barpr":       "m:barPr",
	"m:pos":         "m:pos",
	"m:box":         "m:box",
	"m:boxpr":       "m:boxPr",
	"m:acc":         "m:acc",
	"m:accpr":       "m:accPr",
	"m:groupchr":    "m:groupChr",
	"m:groupchrpr":  "m:groupChrPr",
	"m:borderbox":   "m:borderBox",
	"m:borderboxpr": "m:borderBoxPr",
	"m:phantom":     "m:phantom",
	"m:phantpr":     "m:phantPr",
	"m:val":         "m:val",
	"w:rpr":         "w:rPr",
	"w:rfonts":      "w:rFonts",
	"w:ascii":       "w:ascii",
	"w:i":           "w:i",
	"w:b":           "w:b",
}

// RE2 has no lookahead, so the delimiter after the name is captured and
// re-emitted instead of asserted.
var (
	ommlTagRe  = regexp.MustCompile(`(</?)([mw]:[a-zA-Z]+)([\s/>])`)
	ommlAttrRe = regexp.MustCompile(`(\s)([mw]:[a-zA-Z]+)(=)`)
)

// restoreCase rewrites known OMML names to their canonical case.
func restoreCase(xml string) string {
	xml = ommlTagRe.ReplaceAllStringFunc(xml, func(match string) string {
		m := ommlTagRe.FindStringSubmatch(match)
		if proper, ok := ommlNameCase[strings.ToLower(m[2])]; ok {
			return m[1] + proper + m[3]
		}
		return match
	})
	xml = ommlAttrRe.ReplaceAllStringFunc(xml, func(match string) string {
		m := ommlAttrRe.FindStringSubmatch(match)
		if proper, ok := ommlNameCase[strings.ToLower(m[2])]; ok {
			return m[1] + proper + m[3]
		}
		return match
	})
	return xml
}

// RepairOMML applies the full repair chain to a raw fragment. The input is
// never mutated structurally beyond these textual fixes; the original
// fragment string stays untouched on its node.
func RepairOMML(xml string) string {
	xml = stripHTMLTags(xml)
	xml = wrapBareText(xml)
	xml = stripNamespaceDecls(xml)
	xml = restoreCase(xml)
	return xml
}
