// Package postprocess repairs predictable artifacts in Pandoc's LaTeX math
// output. Every pass is total and idempotent on its own output class; order
// matters and is fixed in LaTeX.
package postprocess

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LaTeX runs the full repair chain over a bare math string.
func LaTeX(latex string) string {
	latex = unwrapMultilineGroups(latex)
	latex = unwrapArray(latex)
	latex = collapseNestedAligned(latex)
	latex = addAlignmentMarkers(latex)
	latex = fixBoldMathVars(latex)
	latex = fixLogSubscript(latex)
	latex = fixWhitespace(latex)
	latex = fixCommonQuirks(latex)
	latex = fixNumberUnitSpacing(latex)
	return strings.TrimSpace(latex)
}

type braceGroup struct {
	start, end int // indexes of the braces themselves
	content    string
}

// topLevelGroups splits the string into consecutive depth-0 brace groups.
func topLevelGroups(latex string) []braceGroup {
	var groups []braceGroup
	depth := 0
	start := -1
	for i, ch := range latex {
		switch {
		case ch == '{' && depth == 0:
			start = i
			depth = 1
		case ch == '{':
			depth++
		case ch == '}' && depth > 0:
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, braceGroup{start, i, latex[start+1 : i]})
				start = -1
			}
		}
	}
	return groups
}

// unwrapMultilineGroups rewrites Pandoc's multi-oMath output — a bare
// sequence of top-level brace groups — as backslash-separated rows.
//
// Disambiguation from two-argument commands like \frac{a}{b}: three or more
// consecutive groups are always rows; any group with an internal line break
// is always rows; exactly two groups are rows only when both carry more than
// five characters of trimmed content. Two short legitimate rows will
// misclassify; that threshold is a known heuristic limit, not tunable without
// a labeled corpus.
func unwrapMultilineGroups(latex string) string {
	groups := topLevelGroups(latex)
	if len(groups) < 2 {
		return latex
	}

	// The entire string must be nothing but the groups.
	for i := 0; i < len(groups)-1; i++ {
		if strings.TrimSpace(latex[groups[i].end+1:groups[i+1].start]) != "" {
			return latex
		}
	}
	if strings.TrimSpace(latex[:groups[0].start]) != "" ||
		strings.TrimSpace(latex[groups[len(groups)-1].end+1:]) != "" {
		return latex
	}

	hasNewline := false
	for _, g := range groups {
		if strings.Contains(g.content, "\n") {
			hasNewline = true
			break
		}
	}
	switch {
	case hasNewline:
	case len(groups) >= 3:
	case len(groups) == 2:
		for _, g := range groups {
			if utf8.RuneCountInString(strings.TrimSpace(g.content)) <= 5 {
				return latex // almost certainly command arguments
			}
		}
	default:
		return latex
	}

	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = strings.TrimSpace(g.content)
	}
	return strings.Join(lines, " \\\\\n")
}

var arrayEnvRe = regexp.MustCompile(`(?s)\\begin\{array\}\{[^}]*\}\s*(.*?)\s*\\end\{array\}`)

// unwrapArray drops a one-column array wrapper left around rows that are
// already separated.
func unwrapArray(latex string) string {
	return arrayEnvRe.ReplaceAllString(latex, "$1")
}

var (
	nestedBeginRe = regexp.MustCompile(`\\begin\{aligned\}\s*\\begin\{aligned\}`)
	nestedEndRe   = regexp.MustCompile(`\\end\{aligned\}\s*\\end\{aligned\}`)
)

// collapseNestedAligned merges immediately-nested identical aligned blocks.
func collapseNestedAligned(latex string) string {
	for nestedBeginRe.MatchString(latex) {
		latex = nestedBeginRe.ReplaceAllString(latex, `\begin{aligned}`)
		latex = nestedEndRe.ReplaceAllString(latex, `\end{aligned}`)
	}
	return latex
}

// relOp is a relation operator candidate for alignment. Command tokens must
// not be followed by a letter (so \le never matches inside \left); bare < >
// must not be escaped.
type relOp struct {
	tok        string
	wordBreak  bool
	notEscaped bool
}

// Ordered by specificity; bare = and < > come last.
var relationOps = []relOp{
	{`\approx`, true, false}, {`\simeq`, true, false}, {`\cong`, true, false},
	{`\equiv`, true, false}, {`\sim`, true, false},
	{`\propto`, true, false}, {`\doteq`, true, false},
	{`\leq`, true, false}, {`\le`, true, false},
	{`\geq`, true, false}, {`\ge`, true, false},
	{`\ll`, true, false}, {`\gg`, true, false},
	{`\neq`, true, false}, {`\ne`, true, false},
	{`\to`, true, false}, {`\rightarrow`, true, false}, {`\leftarrow`, true, false},
	{`\Rightarrow`, true, false}, {`\Leftarrow`, true, false},
	{`\Leftrightarrow`, true, false}, {`\iff`, true, false},
	{"=", false, false},
	{"<", true, true},
	{">", true, true},
}

var rowSplitRe = regexp.MustCompile(`\s*\\\\\s*`)

// addAlignmentMarkers inserts & before each row's leftmost relation operator
// in multi-row content. Runs after multi-line unwrap (it works per row) and
// before whitespace normalization.
func addAlignmentMarkers(latex string) string {
	if !strings.Contains(latex, `\\`) {
		return latex
	}
	lines := rowSplitRe.Split(latex, -1)
	if len(lines) < 2 {
		return latex
	}
	for i, line := range lines {
		lines[i] = insertAlignment(line)
	}
	return strings.Join(lines, " \\\\\n")
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// insertAlignment puts & before the leftmost depth-0 relation operator.
// Rows that already carry a marker, or match no operator, stay untouched.
func insertAlignment(line string) string {
	if strings.Contains(line, "&") {
		return line
	}

	best := -1
	for _, op := range relationOps {
		for _, pos := range opPositions(line, op) {
			if braceDepth(line[:pos]) > 0 {
				continue // inside a brace group
			}
			if best == -1 || pos < best {
				best = pos
			}
			break // first depth-0 match per operator is enough
		}
	}
	if best < 0 {
		return line
	}
	return line[:best] + "&" + line[best:]
}

// opPositions lists occurrences of an operator token, in order, honoring its
// word-break and escape constraints.
func opPositions(line string, op relOp) []int {
	var out []int
	for from := 0; ; {
		i := strings.Index(line[from:], op.tok)
		if i < 0 {
			return out
		}
		pos := from + i
		from = pos + 1
		if op.wordBreak {
			if next := pos + len(op.tok); next < len(line) && isASCIILetter(line[next]) {
				continue
			}
		}
		if op.notEscaped && pos > 0 && line[pos-1] == '\\' {
			continue
		}
		out = append(out, pos)
	}
}

func braceDepth(prefix string) int {
	depth := 0
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

var (
	boldSingleRe = regexp.MustCompile(`\\mathbf\{(\w)\}`)
	boldWordRe   = regexp.MustCompile(`\\mathbf\{(\w+)\}`)
)

// fixBoldMathVars unwraps \mathbf{x} to a bare identifier. Word marks
// equation variables bold-italic as a style flag, which Pandoc renders as
// \mathbf; standard math notation wants the plain italic variable.
func fixBoldMathVars(latex string) string {
	latex = boldSingleRe.ReplaceAllString(latex, "$1")
	latex = boldWordRe.ReplaceAllString(latex, "$1")
	return latex
}

var (
	logSubBraceRe = regexp.MustCompile(`(\\log)\\\s*_\{`)
	logSubBareRe  = regexp.MustCompile(`(\\log)\\\s*_(\w)`)
)

// fixLogSubscript removes the stray backslash-space Pandoc inserts between
// \log and its subscript.
func fixLogSubscript(latex string) string {
	latex = logSubBraceRe.ReplaceAllString(latex, "${1}_{")
	latex = logSubBareRe.ReplaceAllString(latex, "${1}_{${2}}")
	return latex
}

var multiSpaceRe = regexp.MustCompile(`  +`)

func fixWhitespace(latex string) string {
	latex = multiSpaceRe.ReplaceAllString(latex, " ")
	latex = rowSplitRe.ReplaceAllString(latex, " \\\\\n")
	lines := strings.Split(latex, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

var (
	emptyTextRe     = regexp.MustCompile(`\\text\{\s*\}`)
	quadBackslashRe = regexp.MustCompile(`\\\\\\\\`)
	emptyGroupRe    = regexp.MustCompile(`\{\}`)
	leftSpaceRe     = regexp.MustCompile(`\\left\s+`)
	rightSpaceRe    = regexp.MustCompile(`\\right\s+`)
)

func fixCommonQuirks(latex string) string {
	latex = emptyTextRe.ReplaceAllString(latex, " ")
	latex = quadBackslashRe.ReplaceAllString(latex, `\\`)
	latex = emptyGroupRe.ReplaceAllString(latex, "")
	latex = leftSpaceRe.ReplaceAllString(latex, `\left`)
	latex = rightSpaceRe.ReplaceAllString(latex, `\right`)
	return latex
}

var numberUnitRe = regexp.MustCompile(`(\d)\s*(\\text\{)`)

// fixNumberUnitSpacing inserts a thin space between a digit run and a
// following \text{...} unit label. Plain space inside math mode renders as
// no gap at all; letter-to-\text patterns (ordinal suffixes) are left alone.
func fixNumberUnitSpacing(latex string) string {
	return numberUnitRe.ReplaceAllString(latex, `${1}\,${2}`)
}
