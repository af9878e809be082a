package render

// Document is the laid-out questionnaire, ready to be serialised as markup.
type Document struct {
	Title    Title
	Sections []Section
	Footer   Footer
}

type Title struct {
	Product      string
	Subtitle     string
	SubmittedAt  string
	SearcherName string
}

type Footer struct {
	Product     string
	GeneratedAt string
}

// Section is one numbered part of the questionnaire. PageBreakBefore asks the
// paginator to start the section on a new page.
type Section struct {
	Number          int
	Title           string
	PageBreakBefore bool
	Blocks          []Block
}

type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindField     BlockKind = "field"
	KindList      BlockKind = "list"
	KindTable     BlockKind = "table"
	KindChecklist BlockKind = "checklist"
	KindChoice    BlockKind = "choice"
	KindNote      BlockKind = "note"
)

// Block is a single element of a section. Which fields are meaningful depends
// on Kind.
type Block struct {
	Kind    BlockKind
	Label   string
	Value   string
	Empty   bool
	Items   []string
	Ordered bool
	Table   *Table
	Checks  []Check
	Options []Option
}

type Table struct {
	Headers []string
	Rows    [][]string
	Footer  *TableFooter
}

// TableFooter is a summary row: Label spans the first Span columns and Value
// fills the last one.
type TableFooter struct {
	Label string
	Span  int
	Value string
}

type Check struct {
	Label   string
	Checked bool
}

type Option struct {
	Label    string
	Selected bool
}
