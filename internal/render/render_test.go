package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torchlight-intake/internal/form"
)

var fixedTime = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func sectionByNumber(t *testing.T, doc Document, n int) Section {
	t.Helper()
	for _, s := range doc.Sections {
		if s.Number == n {
			return s
		}
	}
	t.Fatalf("section %d not rendered", n)
	return Section{}
}

func blocksOfKind(s Section, kind BlockKind) []Block {
	var out []Block
	for _, b := range s.Blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

func TestRenderEmptySubmissionHasTwelveSections(t *testing.T) {
	doc := Render(form.Submission{}, fixedTime)

	require.Len(t, doc.Sections, 12)
	for i, s := range doc.Sections {
		assert.Equal(t, i+1, s.Number)
		assert.NotEmpty(t, s.Blocks, "section %d has no blocks", s.Number)
		assert.Equal(t, s.Number >= 3, s.PageBreakBefore, "section %d page break", s.Number)
	}
	assert.Equal(t, "Torchlight", doc.Title.Product)
	assert.Equal(t, "2024-03-09 14:30:00", doc.Title.SubmittedAt)
	assert.Empty(t, doc.Title.SearcherName)

	out, err := HTML(doc)
	require.NoError(t, err)
	html := string(out)
	assert.Equal(t, 12, strings.Count(html, `data-section="`))
	assert.Equal(t, 10, strings.Count(html, `page-break"`))
	assert.NotContains(t, html, "undefined")
	assert.NotContains(t, html, "<no value>")
	assert.NotContains(t, html, "%!")
}

func TestRenderSectionOrder(t *testing.T) {
	doc := Render(form.Submission{}, fixedTime)

	var titles []string
	for _, s := range doc.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{
		"Contact Information",
		"Quick Summary",
		"Background & Edge",
		"Personal Deal Scorecard",
		"Priorities & Non-Negotiables",
		"Search Constraints",
		"Right-to-Win Mechanics",
		"Sub-Niche Identification",
		"Deal Flow Sufficiency Test",
		"Operating Plan Hooks",
		"Funnel & KPI",
		"Decision Gate",
	}, titles)
}

func TestRenderEmptyFieldsUsePlaceholder(t *testing.T) {
	doc := Render(form.Submission{}, fixedTime)

	contact := sectionByNumber(t, doc, 1)
	require.Len(t, contact.Blocks, 1)
	assert.Equal(t, Block{Kind: KindField, Label: "Email Address", Value: EmptyPlaceholder, Empty: true}, contact.Blocks[0])

	// empty lists are dropped, not rendered as empty lists
	quick := sectionByNumber(t, doc, 2)
	assert.Empty(t, blocksOfKind(quick, KindList))

	// the scorecard section has nothing but its empty-state note
	scorecard := sectionByNumber(t, doc, 4)
	require.Len(t, scorecard.Blocks, 1)
	assert.Equal(t, KindNote, scorecard.Blocks[0].Kind)
	assert.Equal(t, EmptySection, scorecard.Blocks[0].Value)
}

func TestRenderListsDropBlankEntries(t *testing.T) {
	sub := form.Submission{QuickSummary: form.QuickSummary{RightToWin: []string{"", "  ", ""}, NonNegotiables: []string{"no debt", ""}}}

	lists := blocksOfKind(sectionByNumber(t, Render(sub, fixedTime), 2), KindList)
	require.Len(t, lists, 1)
	assert.Equal(t, "Non-Negotiables", lists[0].Label)
	assert.Equal(t, []string{"no debt"}, lists[0].Items)
}

func TestRenderEscapesMarkup(t *testing.T) {
	sub := form.Submission{
		Email:        `"evil"@example.com`,
		QuickSummary: form.QuickSummary{SearcherName: `<script>alert("x")</script>`, RightToWin: []string{"A & B <b>"}},
		Scorecard:    form.Scorecard{{ID: "x", Name: "<img src=x onerror=alert(1)>", Weight: form.Num(5)}},
	}

	out, err := HTML(Render(sub, fixedTime))
	require.NoError(t, err)
	html := string(out)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img src=x")
	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.Contains(t, html, "A &amp; B &lt;b&gt;")
	assert.Contains(t, html, "&#34;evil&#34;@example.com")
}

func TestRenderScorecardTotal(t *testing.T) {
	sub := form.Submission{Scorecard: form.Scorecard{
		{ID: "a", Name: "A", Weight: form.Num(10)},
		{ID: "b", Name: ""},
		{ID: "c", Name: "C", Definition: "d", Weight: form.Num(25.5)},
	}}

	tables := blocksOfKind(sectionByNumber(t, Render(sub, fixedTime), 4), KindTable)
	require.Len(t, tables, 1)
	table := tables[0].Table

	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"A", "No definition", "10%"}, table.Rows[0])
	assert.Equal(t, []string{"Untitled", "No definition", "0%"}, table.Rows[1])
	assert.Equal(t, []string{"C", "d", "25.5%"}, table.Rows[2])
	require.NotNil(t, table.Footer)
	assert.Equal(t, "35.5%", table.Footer.Value)
	assert.Equal(t, 2, table.Footer.Span)

	out, err := HTML(Render(sub, fixedTime))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<td>35.5%</td>")
}

func TestRenderPriorityOrder(t *testing.T) {
	sub := form.Submission{PrioritiesNonNegotiables: form.PrioritiesNonNegotiables{
		PriorityStack: form.PriorityStack{GrowthRate: form.Num(2), Profitability: form.Num(1)},
	}}

	lists := blocksOfKind(sectionByNumber(t, Render(sub, fixedTime), 5), KindList)
	require.NotEmpty(t, lists)
	assert.True(t, lists[0].Ordered)
	assert.Equal(t, []string{
		"Profitability",
		"Growth Rate",
		"Recurring Revenue",
		"Low People Intensity",
		"Reg Simplicity",
		"Owner Succession Timing",
		"Geography",
		"Mission/Values",
	}, lists[0].Items)
}

func TestRenderSearchConstraintRanges(t *testing.T) {
	sub := form.Submission{SearchConstraints: form.SearchConstraints{
		RevenueMin:      form.Num(1),
		RevenueMax:      form.Num(5),
		EbitdaMarginMin: form.Num(15),
		HeadcountMax:    form.Num(40),
	}}

	fields := blocksOfKind(sectionByNumber(t, Render(sub, fixedTime), 6), KindField)
	values := map[string]string{}
	for _, f := range fields {
		values[f.Label] = f.Value
	}
	assert.Equal(t, "$1M - $5M", values["Revenue Range"])
	assert.Equal(t, "$0M - $∞M (15% - ∞% margin)", values["EBITDA Range"])
	assert.Equal(t, "0 - 40", values["Headcount Range"])
}

func TestRenderChoiceMarksSelection(t *testing.T) {
	sub := form.Submission{DecisionGate: form.DecisionGate{FitVerdict: "fix-reevaluate"}}

	choices := blocksOfKind(sectionByNumber(t, Render(sub, fixedTime), 12), KindChoice)
	require.Len(t, choices, 1)
	assert.Equal(t, []Option{
		{Label: "Proceed"},
		{Label: "Fix & Re-evaluate", Selected: true},
		{Label: "Pass"},
	}, choices[0].Options)
}

func TestRenderIsDeterministic(t *testing.T) {
	sub := form.Submission{
		Email:     "a@b.co",
		Scorecard: form.NewScorecard(),
		PrioritiesNonNegotiables: form.PrioritiesNonNegotiables{
			PriorityStack: form.PriorityStack{Geography: form.Num(1), MissionValues: form.Num(1)},
		},
	}

	first, err := HTML(Render(sub, fixedTime))
	require.NoError(t, err)
	second, err := HTML(Render(sub, fixedTime))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderSearcherNameInTitle(t *testing.T) {
	doc := Render(form.Submission{QuickSummary: form.QuickSummary{SearcherName: " Jordan "}}, fixedTime)
	assert.Equal(t, "Jordan", doc.Title.SearcherName)
}
