package form

import "sort"

// PriorityStack holds the rank the searcher gave each dimension, 1 being the
// most important. A missing or non-positive rank means "not ranked".
type PriorityStack struct {
	GrowthRate            Number `json:"growthRate"`
	Profitability         Number `json:"profitability"`
	RecurringRevenue      Number `json:"recurringRevenue"`
	LowPeopleIntensity    Number `json:"lowPeopleIntensity"`
	RegSimplicity         Number `json:"regSimplicity"`
	OwnerSuccessionTiming Number `json:"ownerSuccessionTiming"`
	Geography             Number `json:"geography"`
	MissionValues         Number `json:"missionValues"`
}

type PriorityDimension struct {
	Key   string
	Label string
}

// PriorityDimensions is the canonical dimension order. It breaks rank ties.
var PriorityDimensions = []PriorityDimension{
	{Key: "growthRate", Label: "Growth Rate"},
	{Key: "profitability", Label: "Profitability"},
	{Key: "recurringRevenue", Label: "Recurring Revenue"},
	{Key: "lowPeopleIntensity", Label: "Low People Intensity"},
	{Key: "regSimplicity", Label: "Reg Simplicity"},
	{Key: "ownerSuccessionTiming", Label: "Owner Succession Timing"},
	{Key: "geography", Label: "Geography"},
	{Key: "missionValues", Label: "Mission/Values"},
}

type RankedPriority struct {
	PriorityDimension
	Rank Number
}

func (r RankedPriority) ranked() bool {
	return r.Rank.Set && r.Rank.Value > 0
}

func (p PriorityStack) ranks() []Number {
	return []Number{
		p.GrowthRate,
		p.Profitability,
		p.RecurringRevenue,
		p.LowPeopleIntensity,
		p.RegSimplicity,
		p.OwnerSuccessionTiming,
		p.Geography,
		p.MissionValues,
	}
}

// Ordered returns every dimension sorted by rank ascending. Unranked
// dimensions go last; equal ranks keep the canonical order.
func (p PriorityStack) Ordered() []RankedPriority {
	ranks := p.ranks()
	out := make([]RankedPriority, len(PriorityDimensions))
	for i, d := range PriorityDimensions {
		out[i] = RankedPriority{PriorityDimension: d, Rank: ranks[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ranked() && b.ranked():
			return a.Rank.Value < b.Rank.Value
		case a.ranked():
			return true
		default:
			return false
		}
	})
	return out
}
