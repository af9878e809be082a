package form

// Scorecard is the ordered list of factors; order is display order.
type Scorecard []ScorecardFactor

// TotalWeight sums the weight of every factor. Factors without a weight count
// as zero, they are never skipped.
func (s Scorecard) TotalWeight() float64 {
	var total float64
	for _, f := range s {
		total += f.Weight.Float()
	}
	return total
}

// SeedScorecardFactors is the list a new questionnaire starts from.
var SeedScorecardFactors = []ScorecardFactor{
	{ID: "right-to-win", Name: "Right-to-Win", Definition: "Clear advantage vs. other buyers (relationships, domain, ops playbook)"},
	{ID: "market-health", Name: "Market Health", Definition: "Growing niche, fragmentation, budget durability"},
	{ID: "quality-of-revenue", Name: "Quality of Revenue", Definition: "Recurring, multi-year contracts, low churn, prepay"},
	{ID: "service-productization", Name: "Service Productization", Definition: "Repeatable scope, templates, SOPs, automation potential"},
	{ID: "customer-concentration", Name: "Customer Concentration", Definition: "Top client < 20% revenue; diversified ICP"},
	{ID: "margin-unit-economics", Name: "Margin & Unit Economics", Definition: "20–30% EBITDA typical; pricing power"},
	{ID: "sales-engine-fit", Name: "Sales Engine Fit", Definition: "Can your sales motion 2–3× qualified pipeline in 12 months?"},
	{ID: "integration-risk", Name: "Integration Risk", Definition: "Team retention, IP portability, tooling, data access"},
	{ID: "reg-compliance-simplicity", Name: "Reg/Compliance Simplicity", Definition: "Licensing, data handling, contracts risk"},
	{ID: "exit-path-clarity", Name: "Exit Path Clarity", Definition: "PE roll-up, strategic adjacency, 4–6×+ EBITDA potential"},
}

// NewScorecard returns a copy of the seed factors with no weights.
func NewScorecard() Scorecard {
	s := make(Scorecard, len(SeedScorecardFactors))
	copy(s, SeedScorecardFactors)
	return s
}
