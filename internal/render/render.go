package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/uniplaces/carbon"

	"torchlight-intake/internal/form"
)

const (
	ProductName      = "Torchlight"
	Subtitle         = "Operating System for ETA - Onboarding Form"
	EmptyPlaceholder = "Not provided"
	EmptySection     = "No information provided."

	// first section that starts on its own page
	firstPagedSection = 3
)

const teamNotice = "The following four sections (Deal Flow Sufficiency Test, Operating Plan Hooks, " +
	"Funnel & KPI, and Decision Gate) are primarily the responsibility of the Torchlight team. " +
	"However, you may fill in information if you have relevant insights or preferences."

type sectionFunc func(b *builder, sub form.Submission)

var sections = []struct {
	title string
	build sectionFunc
}{
	{"Contact Information", contactSection},
	{"Quick Summary", quickSummarySection},
	{"Background & Edge", backgroundSection},
	{"Personal Deal Scorecard", scorecardSection},
	{"Priorities & Non-Negotiables", prioritiesSection},
	{"Search Constraints", searchConstraintsSection},
	{"Right-to-Win Mechanics", rightToWinSection},
	{"Sub-Niche Identification", subNicheSection},
	{"Deal Flow Sufficiency Test", dealFlowSection},
	{"Operating Plan Hooks", operatingPlanSection},
	{"Funnel & KPI", funnelSection},
	{"Decision Gate", decisionGateSection},
}

// Render lays out a submission. It never fails: absent data renders as
// placeholders. generatedAt is the only input that is not part of sub.
func Render(sub form.Submission, generatedAt time.Time) Document {
	stamp := carbon.NewCarbon(generatedAt).DateTimeString()

	doc := Document{
		Title: Title{
			Product:      ProductName,
			Subtitle:     Subtitle,
			SubmittedAt:  stamp,
			SearcherName: strings.TrimSpace(sub.QuickSummary.SearcherName),
		},
		Footer: Footer{
			Product:     ProductName + " - Operating System for ETA",
			GeneratedAt: stamp,
		},
	}

	for i, s := range sections {
		b := &builder{}
		s.build(b, sub)
		if len(b.blocks) == 0 {
			b.note(EmptySection)
		}
		doc.Sections = append(doc.Sections, Section{
			Number:          i + 1,
			Title:           s.title,
			PageBreakBefore: i+1 >= firstPagedSection,
			Blocks:          b.blocks,
		})
	}
	return doc
}

type builder struct {
	blocks []Block
}

func (b *builder) heading(text string) {
	b.blocks = append(b.blocks, Block{Kind: KindHeading, Label: text})
}

func (b *builder) note(text string) {
	b.blocks = append(b.blocks, Block{Kind: KindNote, Value: text})
}

func (b *builder) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		b.blocks = append(b.blocks, Block{Kind: KindField, Label: label, Value: EmptyPlaceholder, Empty: true})
		return
	}
	b.blocks = append(b.blocks, Block{Kind: KindField, Label: label, Value: value})
}

func (b *builder) number(label string, n form.Number) {
	b.field(label, n.String())
}

// list is omitted entirely when no entry has content.
func (b *builder) list(label string, items []string, ordered bool) {
	populated := form.Populated(items)
	if len(populated) == 0 {
		return
	}
	b.blocks = append(b.blocks, Block{Kind: KindList, Label: label, Items: populated, Ordered: ordered})
}

func (b *builder) table(label string, t Table) {
	if len(t.Rows) == 0 {
		return
	}
	b.blocks = append(b.blocks, Block{Kind: KindTable, Label: label, Table: &t})
}

func (b *builder) checklist(label string, checks ...Check) {
	b.blocks = append(b.blocks, Block{Kind: KindChecklist, Label: label, Checks: checks})
}

func (b *builder) choice(label, selected string, options ...[2]string) {
	opts := make([]Option, 0, len(options))
	for _, o := range options {
		opts = append(opts, Option{Label: o[1], Selected: o[0] == selected})
	}
	b.blocks = append(b.blocks, Block{Kind: KindChoice, Label: label, Options: opts})
}

// FormatWeight formats a percentage the way the scorecard shows it.
func FormatWeight(w float64) string {
	return form.Num(w).String() + "%"
}

// FormatTotal formats the scorecard total with one decimal place.
func FormatTotal(total float64) string {
	return fmt.Sprintf("%.1f%%", total)
}

func bound(n form.Number, open string) string {
	if !n.Set {
		return open
	}
	return n.String()
}

func moneyRange(lo, hi form.Number) string {
	if !lo.Set && !hi.Set {
		return ""
	}
	return "$" + bound(lo, "0") + "M - $" + bound(hi, "∞") + "M"
}

func percentRange(lo, hi form.Number) string {
	if !lo.Set && !hi.Set {
		return ""
	}
	return bound(lo, "0") + "% - " + bound(hi, "∞") + "%"
}

func countRange(lo, hi form.Number) string {
	if !lo.Set && !hi.Set {
		return ""
	}
	return bound(lo, "0") + " - " + bound(hi, "∞")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
