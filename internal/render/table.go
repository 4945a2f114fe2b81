package render

import (
	"context"
	"regexp"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
)

// cell holds one table cell rendered to all three formats, already forced to
// a single line.
type cell struct {
	latex, md, html string
}

// convertTable renders a table node. Cells are rendered independently per
// format and flattened to one line each — the Markdown pipe syntax cannot
// carry a raw newline inside a cell, so display math inside a cell is
// down-converted to the inline delimiter for that cell only. Row 0 is the
// header row; short rows are padded to the widest row.
func (c *Converter) convertTable(ctx context.Context, n *doctree.Node, warnings *[]string) (latex, md, htmlStr string, err error) {
	var rows [][]cell
	maxCols := 0
	for _, row := range n.Rows {
		var cells []cell
		for _, cellNodes := range row {
			rendered, err := c.convertCell(ctx, cellNodes, warnings)
			if err != nil {
				return "", "", "", err
			}
			cells = append(cells, rendered)
		}
		if len(cells) > maxCols {
			maxCols = len(cells)
		}
		rows = append(rows, cells)
	}
	if maxCols == 0 {
		return "", "", "", nil
	}

	// Pad every row to the widest row found in this table.
	for i := range rows {
		for len(rows[i]) < maxCols {
			rows[i] = append(rows[i], cell{})
		}
	}

	return tableLaTeX(rows, maxCols), tableMarkdown(rows, maxCols), tableHTML(rows), nil
}

// convertCell renders the nodes of one cell and flattens them to one line.
func (c *Converter) convertCell(ctx context.Context, nodes []*doctree.Node, warnings *[]string) (cell, error) {
	var lx, md, ht []string
	for _, n := range nodes {
		switch n.Kind {
		case doctree.KindInlineMath, doctree.KindDisplayMath:
			math, err := c.convertMath(ctx, n, warnings)
			if err != nil {
				return cell{}, err
			}
			if math == "" {
				continue
			}
			lx = append(lx, "$"+math+"$")
			md = append(md, "$"+math+"$")
			ht = append(ht, `<span class="math inline">\(`+math+`\)</span>`)
		default:
			var nl, nm, nh []string
			if err := c.convertNode(ctx, n, &nl, &nm, &nh, warnings); err != nil {
				return cell{}, err
			}
			lx = append(lx, nl...)
			md = append(md, nm...)
			ht = append(ht, nh...)
		}
	}
	return cell{
		latex: singleLine(joinInline(lx)),
		md:    escapePipes(singleLine(joinInline(md))),
		html:  singleLine(joinInline(ht)),
	}, nil
}

var lineWhitespaceRe = regexp.MustCompile(`\s+`)

func singleLine(s string) string {
	return strings.TrimSpace(lineWhitespaceRe.ReplaceAllString(s, " "))
}

// escapePipes protects the Markdown table delimiter inside cell content.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func tableLaTeX(rows [][]cell, cols int) string {
	var buf strings.Builder
	buf.WriteString("\\begin{tabular}{" + strings.Repeat("l", cols) + "}\n")
	for i, row := range rows {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = c.latex
		}
		buf.WriteString(strings.Join(parts, " & ") + " \\\\\n")
		if i == 0 {
			buf.WriteString("\\hline\n")
		}
	}
	buf.WriteString("\\end{tabular}")
	return buf.String()
}

func tableMarkdown(rows [][]cell, cols int) string {
	var lines []string
	writeRow := func(row []cell) {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = c.md
		}
		lines = append(lines, "| "+strings.Join(parts, " | ")+" |")
	}

	writeRow(rows[0])
	sep := make([]string, cols)
	for j := range sep {
		sep[j] = "---"
	}
	lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.Join(lines, "\n")
}

func tableHTML(rows [][]cell) string {
	var buf strings.Builder
	buf.WriteString("<table>")
	for i, row := range rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		buf.WriteString("<tr>")
		for _, c := range row {
			buf.WriteString("<" + tag + ">" + c.html + "</" + tag + ">")
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</table>")
	return buf.String()
}
