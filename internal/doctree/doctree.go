package doctree

// Kind identifies what a Node represents.
type Kind string

const (
	KindText        Kind = "text"
	KindInlineMath  Kind = "inline_math"
	KindDisplayMath Kind = "display_math"
	KindHeading     Kind = "heading"
	KindList        Kind = "list"
	KindParagraph   Kind = "paragraph"
	KindTable       Kind = "table"
)

// Math environments classified from the raw OMML before conversion.
const (
	EnvAligned   = "aligned"
	EnvMultiline = "multiline"
	EnvPmatrix   = "pmatrix"
)

// Node is a structural unit of the extracted document. The Kind decides
// which fields are populated; everything else stays at its zero value.
type Node struct {
	Kind     Kind
	Content  string  // plain text (headings, text runs)
	Level    int     // heading level or list nesting
	Children []*Node // paragraph/list children; order is significant

	RawHTML string // original inline-formatting markup for a text run
	MathXML string // raw OMML fragment, opaque to everything but the math bridge
	MathEnv string // "", "aligned", "multiline", "pmatrix"

	Ordered bool // list nodes only

	// Rows → cells → nodes. Cells may hold paragraphs or math but never
	// nested tables. Rows are not padded here; renderers pad per format.
	Rows [][][]*Node
}

// Flatten returns the nodes and all descendants in document order.
func Flatten(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		out = append(out, n)
		if len(n.Children) > 0 {
			out = append(out, Flatten(n.Children)...)
		}
	}
	return out
}
