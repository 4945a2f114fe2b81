package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Word gates OMML equations behind conditional comments so that older
// consumers see a fallback image instead. The equation itself lives in
// <!--[if gte msEquation 12]> ... <![endif]-->.
var (
	ommlConditionalRe     = regexp.MustCompile(`(?is)<!--\[if\s+gte\s+msEquation\s+\d+\]>(.*?)<!\[endif\]-->`)
	fallbackConditionalRe = regexp.MustCompile(`(?is)<!--\[if\s+!msEquation\]>.*?<!\[endif\]-->`)
	// Everything else (VML images, supportedlists metadata, ...) carries no
	// content we need downstream.
	remainingConditionalRe = regexp.MustCompile(`(?s)<!--\[if\s[^\]]*\]>.*?<!\[endif\]-->`)
)

// unwrapConditionals keeps the OMML inside equation conditional comments and
// strips every other conditional block.
func unwrapConditionals(html string) string {
	html = ommlConditionalRe.ReplaceAllString(html, "$1")
	html = fallbackConditionalRe.ReplaceAllString(html, "")
	html = remainingConditionalRe.ReplaceAllString(html, "")
	return html
}

// OMML fragment boundaries. Display math first: oMathPara contains oMath, so
// the standalone-oMath pass only sees inline equations.
var (
	oMathParaRe = regexp.MustCompile(`(?is)(<m:oMathPara\b[^>]*>.*?</m:oMathPara>)`)
	oMathRe     = regexp.MustCompile(`(?is)(<m:oMath\b[^>]*>.*?</m:oMath>)`)
)

const (
	displayPlaceholderTag = "omml-display"
	inlinePlaceholderTag  = "omml-inline"
)

// extractMathBlocks replaces every OMML fragment with an opaque placeholder
// element before the HTML parser can normalize tag case, reorder attributes,
// or rewrite self-closing syntax — any of which breaks Pandoc later. The
// returned tables map placeholder id → original fragment text, verbatim.
func extractMathBlocks(html string) (cleaned string, display, inline map[string]string) {
	display = make(map[string]string)
	inline = make(map[string]string)
	counter := 0

	html = oMathParaRe.ReplaceAllStringFunc(html, func(m string) string {
		id := strconv.Itoa(counter)
		counter++
		display[id] = m
		return `<` + displayPlaceholderTag + ` data-id="` + id + `"></` + displayPlaceholderTag + `>`
	})
	html = oMathRe.ReplaceAllStringFunc(html, func(m string) string {
		id := strconv.Itoa(counter)
		counter++
		inline[id] = m
		return `<` + inlinePlaceholderTag + ` data-id="` + id + `"></` + inlinePlaceholderTag + `>`
	})

	return html, display, inline
}

var oMathCountRe = regexp.MustCompile(`(?i)<m:oMath\b`)
var matrixRe = regexp.MustCompile(`(?i)<m:m\b`)

// detectMathEnv classifies the layout of a raw OMML fragment. Purely textual:
// it runs before (and instead of) any XML parsing of the fragment.
func detectMathEnv(xml string) string {
	if strings.Contains(strings.ToLower(xml), "<m:eqarr") {
		return "aligned"
	}
	// Multiple oMath roots inside one oMathPara = multi-line display block.
	if len(oMathCountRe.FindAllStringIndex(xml, -1)) > 1 {
		return "multiline"
	}
	if matrixRe.MatchString(xml) {
		return "pmatrix"
	}
	return ""
}
