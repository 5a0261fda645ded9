package scan

import "sort"

// RankByOutperformance orders outcomes descending by the strategy's
// annualized outperformance over buy-and-hold. Failed runs sort last,
// in their original order.
func RankByOutperformance(outcomes []Outcome) []Outcome {
	ranked := make([]Outcome, len(outcomes))
	copy(ranked, outcomes)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Report, ranked[j].Report
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return ri.OutperformancePct > rj.OutperformancePct
	})
	return ranked
}
