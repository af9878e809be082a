package render

import (
	"strconv"

	"torchlight-intake/internal/form"
)

func contactSection(b *builder, sub form.Submission) {
	b.field("Email Address", sub.Email)
}

func quickSummarySection(b *builder, sub form.Submission) {
	qs := sub.QuickSummary
	b.field("Searcher Name", qs.SearcherName)
	b.field("Home Base", qs.HomeBase)
	b.field("Target Close Window", qs.TargetCloseWindow)
	b.field("Primary Thesis (1-2 lines)", qs.PrimaryThesis)
	b.list("Right-to-Win (3 bullets)", qs.RightToWin, false)
	b.list("Non-Negotiables", qs.NonNegotiables, false)
	b.choice("Go / No-Go", qs.GoNoGo,
		[2]string{"go", "Go"},
		[2]string{"conditional", "Conditional"},
		[2]string{"no-go", "No-Go"},
	)
}

func backgroundSection(b *builder, sub form.Submission) {
	em := sub.BackgroundEdge.ExperienceMap
	ca := sub.BackgroundEdge.CredibilityAnchors

	b.heading("Experience Map")
	b.field("Functional Strengths", em.FunctionalStrengths)
	b.number("Industry Familiarity (1-5)", em.IndustryFamiliarity)
	b.field("Deal Exposure (if any)", em.DealExposure)
	b.list("Operating Superpowers", em.OperatingSuperpowers, false)
	b.list("Known Gaps", em.KnownGaps, false)

	b.heading("Credibility Anchors")
	b.field("Logos / Roles That Open Doors", ca.LogosRoles)
	b.field("Regulatory or Technical Domains", ca.RegulatoryDomains)
	b.field("Audience Where You're Already Trusted", ca.AudienceTrusted)
}

func scorecardSection(b *builder, sub form.Submission) {
	t := Table{Headers: []string{"Factor", "Definition", "Weight (%)"}}
	for _, f := range sub.Scorecard {
		t.Rows = append(t.Rows, []string{
			orDefault(f.Name, "Untitled"),
			orDefault(f.Definition, "No definition"),
			FormatWeight(f.Weight.Float()),
		})
	}
	t.Footer = &TableFooter{Label: "TOTAL:", Span: 2, Value: FormatTotal(sub.Scorecard.TotalWeight())}
	b.table("Scorecard", t)
}

func prioritiesSection(b *builder, sub form.Submission) {
	pn := sub.PrioritiesNonNegotiables

	var labels []string
	for _, p := range pn.PriorityStack.Ordered() {
		labels = append(labels, p.Label)
	}
	b.heading("Priority Stack")
	b.list("Priority Order", labels, true)

	nn := pn.NonNegotiables
	b.heading("Non-Negotiables (Hard Stops)")
	b.list("Industry/Vertical Exclusions", nn.IndustryExclusions, false)
	b.list("Business Model Exclusions", nn.BusinessModelExclusions, false)
	b.list("Customer Mix Exclusions", nn.CustomerMixExclusions, false)
	b.list("Contract/Revenue Exclusions", nn.ContractRevExclusions, false)
	b.list("People Risk Exclusions", nn.PeopleRiskExclusions, false)
}

func searchConstraintsSection(b *builder, sub form.Submission) {
	sc := sub.SearchConstraints

	b.field("Revenue Range", moneyRange(sc.RevenueMin, sc.RevenueMax))
	ebitda := moneyRange(sc.EbitdaMin, sc.EbitdaMax)
	if margin := percentRange(sc.EbitdaMarginMin, sc.EbitdaMarginMax); margin != "" {
		if ebitda == "" {
			ebitda = "$0M - $∞M"
		}
		ebitda += " (" + margin + " margin)"
	}
	b.field("EBITDA Range", ebitda)
	b.field("Headcount Range", countRange(sc.HeadcountMin, sc.HeadcountMax))
	b.list("Geography: Must-Have", sc.GeographyMustHave, false)
	b.list("Geography: Nice-to-Have", sc.GeographyNiceToHave, false)
	b.field("Owner Age / Profile", sc.OwnerAge)
	b.field("Owner Intent", sc.OwnerIntent)

	ds := sc.DealStructures
	b.checklist("Deal Structures OK",
		Check{Label: "SBA", Checked: bool(ds.SBA)},
		Check{Label: "Cash", Checked: bool(ds.Cash)},
		Check{Label: "Seller Note", Checked: bool(ds.SellerNote)},
		Check{Label: "Earnout", Checked: bool(ds.Earnout)},
		Check{Label: "Minority", Checked: bool(ds.Minority)},
	)
}

func rightToWinSection(b *builder, sub form.Submission) {
	rtw := sub.RightToWinMechanics
	b.field("Existing Channels & Communities", rtw.ExistingChannels)
	b.field("Referrers / Advisors You Already Have", rtw.ReferrersAdvisors)
	b.field("Proof Points (Case Studies, Ops Wins)", rtw.ProofPoints)
	b.field("Synergies with Current Platform/Team", rtw.Synergies)
	b.field("90-Day Post-Close Advantages (Be Concrete)", rtw.NinetyDayAdvantages)
}

func subNicheSection(b *builder, sub form.Submission) {
	sn := sub.SubNicheIdentification

	b.list("Core Niche Candidates (top 3)", sn.CoreNicheCandidates, true)

	matrix := Table{Headers: []string{"Sub-Niche", "Same Buyer", "Same Deliverable", "Same Channel", "Margin Upside", "Priority"}}
	for _, row := range sn.AdjacencyMatrix {
		matrix.Rows = append(matrix.Rows, []string{
			row.SubNiche,
			mark(row.SameBuyer),
			mark(row.SameDeliverable),
			mark(row.SameChannel),
			mark(row.MarginUpside),
			row.Priority,
		})
	}
	b.table("Adjacency Matrix", matrix)

	b.field("Keyword Cluster A", sn.KeywordClusterA)
	b.field("Keyword Cluster B", sn.KeywordClusterB)
	b.list(`"Similar to" Seed List (5-10 anchors)`, sn.SimilarToSeedList, false)
}

func dealFlowSection(b *builder, sub form.Submission) {
	dfs := sub.DealFlowSufficiency
	qr := dfs.QueryReadiness
	vq := dfs.VolumeQuality
	rm := dfs.Remediation

	b.note(teamNotice)

	b.heading("Query Readiness")
	b.checklist("Query Readiness",
		Check{Label: "Clear keyword set?", Checked: bool(qr.ClearKeywordSet)},
		Check{Label: "Exclusions defined?", Checked: bool(qr.ExclusionsDefined)},
		Check{Label: "NAICS/SIC mapped?", Checked: bool(qr.NaicsSicMapped)},
		Check{Label: "Geo focus workable?", Checked: bool(qr.GeoFocusWorkable)},
	)

	b.heading("Volume & Quality")
	b.field("Est. TAM (companies in band)", vq.EstTAM)
	b.field("Qualifying after exclusions", vq.QualifyingAfterExclusions)
	b.field(`Top-quartile "fit" count`, vq.TopQuartileFitCount)
	b.choice("Conclusion", vq.Conclusion,
		[2]string{"sufficient", "Sufficient"},
		[2]string{"borderline", "Borderline"},
		[2]string{"insufficient", "Insufficient"},
	)

	b.heading("Remediation")
	b.checklist("Remediation",
		Check{Label: "Widen geography", Checked: bool(rm.WidenGeo)},
		Check{Label: "Expand adjacencies", Checked: bool(rm.ExpandAdjacencies)},
		Check{Label: "Loosen revenue band", Checked: bool(rm.LoosenRevenueBand)},
		Check{Label: "Add channels / partners", Checked: bool(rm.AddChannelsPartners)},
	)
}

func operatingPlanSection(b *builder, sub form.Submission) {
	oph := sub.OperatingPlanHooks

	// the plan always has three slots, filled or not
	for i := 0; i < 3; i++ {
		var move string
		if i < len(oph.HundredDayValuePlan) {
			move = oph.HundredDayValuePlan[i]
		}
		b.field("100-Day Value Plan: Move "+strconv.Itoa(i+1), move)
	}
	b.field("Retention Plan for Key Staff", oph.RetentionPlan)
	b.field("Pricing/Uplift Levers", oph.PricingUpliftLevers)
	b.field("Cross-Sell with Existing Assets", oph.CrossSellAssets)
}

func funnelSection(b *builder, sub form.Submission) {
	s := sub.FunnelKPI.SearchKPIs
	p := sub.FunnelKPI.PostCloseKPIs

	b.heading("Search KPIs")
	b.number("Weekly Targets Added", s.WeeklyTargetsAdded)
	b.number("New Convos/Week", s.NewConvosPerWeek)
	b.number("IOIs/Month", s.IOIsPerMonth)

	b.heading("Post-Close KPIs")
	b.number("MRR/Retainer %", p.MRRRetainerPercent)
	b.number("Gross Margin (%)", p.GrossMargin)
	b.number("Utilization (%)", p.Utilization)
	b.number("NRR/Expansion (%)", p.NRRExpansion)
	b.number("Pipeline Coverage (× months)", p.PipelineCoverageMonths)
}

func decisionGateSection(b *builder, sub form.Submission) {
	dg := sub.DecisionGate
	b.choice("Fit Verdict", dg.FitVerdict,
		[2]string{"proceed", "Proceed"},
		[2]string{"fix-reevaluate", "Fix & Re-evaluate"},
		[2]string{"pass", "Pass"},
	)
	b.field("Rationale", dg.Rationale)
	b.field("Next Actions", dg.NextActions)
}

func mark(v form.Flag) string {
	if v {
		return "✓"
	}
	return "✗"
}
