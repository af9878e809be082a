package form

import (
	"encoding/json"
	"strings"
)

// Submission is the onboarding questionnaire payload. Every section is a value
// so a partially filled (or completely empty) payload is still a usable value.
type Submission struct {
	Email                    string                   `json:"email"`
	QuickSummary             QuickSummary             `json:"quickSummary"`
	BackgroundEdge           BackgroundEdge           `json:"backgroundEdge"`
	Scorecard                Scorecard                `json:"scorecard"`
	PrioritiesNonNegotiables PrioritiesNonNegotiables `json:"prioritiesNonNegotiables"`
	SearchConstraints        SearchConstraints        `json:"searchConstraints"`
	RightToWinMechanics      RightToWinMechanics      `json:"rightToWinMechanics"`
	ICPBuyingMotion          ICPBuyingMotion          `json:"icpBuyingMotion"`
	RiskMitigations          []RiskMitigation         `json:"riskMitigations"`
	SubNicheIdentification   SubNicheIdentification   `json:"subNicheIdentification"`
	DealFlowSufficiency      DealFlowSufficiency      `json:"dealFlowSufficiency"`
	OperatingPlanHooks       OperatingPlanHooks       `json:"operatingPlanHooks"`
	FunnelKPI                FunnelKPI                `json:"funnelKPI"`
	DecisionGate             DecisionGate             `json:"decisionGate"`

	// Raw holds the payload exactly as it was received.
	Raw json.RawMessage `json:"-"`
	// Dropped names fields that were present but could not be read. The
	// decoder reports the first one it meets.
	Dropped []string `json:"-"`
}

// Payload returns the JSON document stored as the record blob. The received
// bytes win over a re-encoding so unknown client fields survive.
func (s Submission) Payload() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(s)
}

type QuickSummary struct {
	SearcherName      string `json:"searcherName"`
	HomeBase          string `json:"homeBase"`
	TargetCloseWindow string `json:"targetCloseWindow"`
	PrimaryThesis     string `json:"primaryThesis"`
	RightToWin        List   `json:"rightToWin"`
	NonNegotiables    List   `json:"nonNegotiables"`
	GoNoGo            string `json:"goNoGo"`
}

type ExperienceMap struct {
	FunctionalStrengths  string `json:"functionalStrengths"`
	IndustryFamiliarity  Number `json:"industryFamiliarity"`
	DealExposure         string `json:"dealExposure"`
	OperatingSuperpowers List   `json:"operatingSuperpowers"`
	KnownGaps            List   `json:"knownGaps"`
}

type CredibilityAnchors struct {
	LogosRoles        string `json:"logosRoles"`
	RegulatoryDomains string `json:"regulatoryDomains"`
	AudienceTrusted   string `json:"audienceTrusted"`
}

type BackgroundEdge struct {
	ExperienceMap      ExperienceMap      `json:"experienceMap"`
	CredibilityAnchors CredibilityAnchors `json:"credibilityAnchors"`
}

// ScorecardFactor is one weighted criterion. Weight is a percentage; the
// weights of a scorecard are not required to add up to 100.
type ScorecardFactor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Weight     Number `json:"weight"`
	Score      Number `json:"score"`
	Weighted   Number `json:"weighted"`
}

type NonNegotiables struct {
	IndustryExclusions      List `json:"industryExclusions"`
	BusinessModelExclusions List `json:"businessModelExclusions"`
	CustomerMixExclusions   List `json:"customerMixExclusions"`
	ContractRevExclusions   List `json:"contractRevExclusions"`
	PeopleRiskExclusions    List `json:"peopleRiskExclusions"`
}

type PrioritiesNonNegotiables struct {
	PriorityStack  PriorityStack  `json:"priorityStack"`
	NonNegotiables NonNegotiables `json:"nonNegotiables"`
}

type DealStructures struct {
	SBA        Flag `json:"sba"`
	Cash       Flag `json:"cash"`
	SellerNote Flag `json:"sellerNote"`
	Earnout    Flag `json:"earnout"`
	Minority   Flag `json:"minority"`
}

// Enabled lists the accepted structures in display order.
func (d DealStructures) Enabled() []string {
	var out []string
	for _, s := range []struct {
		on    Flag
		label string
	}{
		{d.SBA, "SBA"},
		{d.Cash, "Cash"},
		{d.SellerNote, "Seller Note"},
		{d.Earnout, "Earnout"},
		{d.Minority, "Minority"},
	} {
		if s.on {
			out = append(out, s.label)
		}
	}
	return out
}

type SearchConstraints struct {
	RevenueMin          Number         `json:"revenueMin"`
	RevenueMax          Number         `json:"revenueMax"`
	EbitdaMin           Number         `json:"ebitdaMin"`
	EbitdaMax           Number         `json:"ebitdaMax"`
	EbitdaMarginMin     Number         `json:"ebitdaMarginMin"`
	EbitdaMarginMax     Number         `json:"ebitdaMarginMax"`
	HeadcountMin        Number         `json:"headcountMin"`
	HeadcountMax        Number         `json:"headcountMax"`
	GeographyMustHave   List           `json:"geographyMustHave"`
	GeographyNiceToHave List           `json:"geographyNiceToHave"`
	OwnerAge            string         `json:"ownerAge"`
	OwnerIntent         string         `json:"ownerIntent"`
	DealStructures      DealStructures `json:"dealStructures"`
}

type RightToWinMechanics struct {
	ExistingChannels    string `json:"existingChannels"`
	ReferrersAdvisors   string `json:"referrersAdvisors"`
	ProofPoints         string `json:"proofPoints"`
	Synergies           string `json:"synergies"`
	NinetyDayAdvantages string `json:"ninetyDayAdvantages"`
}

// ICPBuyingMotion and RiskMitigation are collected by the client and kept in
// the stored payload; the printable document does not show them.
type ICPBuyingMotion struct {
	PrimaryICP       string `json:"primaryICP"`
	BudgetOwners     string `json:"budgetOwners"`
	BuyingTriggers   string `json:"buyingTriggers"`
	WhereTheyHangOut string `json:"whereTheyHangOut"`
	SalesCycleLength string `json:"salesCycleLength"`
}

type RiskMitigation struct {
	Risk         string `json:"risk"`
	HowItShowsUp string `json:"howItShowsUp"`
	Likelihood   string `json:"likelihood"`
	Impact       string `json:"impact"`
	Mitigation   string `json:"mitigation"`
}

type AdjacencyMatrixRow struct {
	SubNiche        string `json:"subNiche"`
	SameBuyer       Flag   `json:"sameBuyer"`
	SameDeliverable Flag   `json:"sameDeliverable"`
	SameChannel     Flag   `json:"sameChannel"`
	MarginUpside    Flag   `json:"marginUpside"`
	Priority        string `json:"priority"`
}

type SubNicheIdentification struct {
	CoreNicheCandidates List                 `json:"coreNicheCandidates"`
	AdjacencyMatrix     []AdjacencyMatrixRow `json:"adjacencyMatrix"`
	KeywordClusterA     string               `json:"keywordClusterA"`
	KeywordClusterB     string               `json:"keywordClusterB"`
	SimilarToSeedList   List                 `json:"similarToSeedList"`
}

type QueryReadiness struct {
	ClearKeywordSet   Flag `json:"clearKeywordSet"`
	ExclusionsDefined Flag `json:"exclusionsDefined"`
	NaicsSicMapped    Flag `json:"naicsSicMapped"`
	GeoFocusWorkable  Flag `json:"geoFocusWorkable"`
}

type VolumeQuality struct {
	EstTAM                    string `json:"estTAM"`
	QualifyingAfterExclusions string `json:"qualifyingAfterExclusions"`
	TopQuartileFitCount       string `json:"topQuartileFitCount"`
	Conclusion                string `json:"conclusion"`
}

type Remediation struct {
	WidenGeo            Flag `json:"widenGeo"`
	ExpandAdjacencies   Flag `json:"expandAdjacencies"`
	LoosenRevenueBand   Flag `json:"loosenRevenueBand"`
	AddChannelsPartners Flag `json:"addChannelsPartners"`
}

type DealFlowSufficiency struct {
	QueryReadiness QueryReadiness `json:"queryReadiness"`
	VolumeQuality  VolumeQuality  `json:"volumeQuality"`
	Remediation    Remediation    `json:"remediation"`
}

type OperatingPlanHooks struct {
	HundredDayValuePlan List   `json:"hundredDayValuePlan"`
	RetentionPlan       string `json:"retentionPlan"`
	PricingUpliftLevers string `json:"pricingUpliftLevers"`
	CrossSellAssets     string `json:"crossSellAssets"`
}

type SearchKPIs struct {
	WeeklyTargetsAdded Number `json:"weeklyTargetsAdded"`
	NewConvosPerWeek   Number `json:"newConvosPerWeek"`
	IOIsPerMonth       Number `json:"ioIsPerMonth"`
}

type PostCloseKPIs struct {
	MRRRetainerPercent     Number `json:"mrrRetainerPercent"`
	GrossMargin            Number `json:"grossMargin"`
	Utilization            Number `json:"utilization"`
	NRRExpansion           Number `json:"nrrExpansion"`
	PipelineCoverageMonths Number `json:"pipelineCoverageMonths"`
}

type FunnelKPI struct {
	SearchKPIs    SearchKPIs    `json:"searchKPIs"`
	PostCloseKPIs PostCloseKPIs `json:"postCloseKPIs"`
}

type DecisionGate struct {
	FitVerdict  string `json:"fitVerdict"`
	Rationale   string `json:"rationale"`
	NextActions string `json:"nextActions"`
}

// Populated returns the non-blank entries of a free-text list.
func Populated(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, item)
		}
	}
	return out
}
