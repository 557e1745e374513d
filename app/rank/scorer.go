package rank

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/minhokang/trendsnap/app/match"
	"github.com/minhokang/trendsnap/app/sources"
)

const (
	recencyHalfHours = 36.0
	frequencyCap     = 10.0

	weightRecency   = 0.45
	weightFrequency = 0.20
	weightAuthority = 0.20
	weightInternal  = 0.15

	noveltyBonus = 0.15
)

// Scores holds the per-factor components of a keyword's total, all in
// [0,1] except a bonus-adjusted total.
type Scores struct {
	Recency   float64
	Frequency float64
	Authority float64
	Internal  float64
	Total     float64
}

// RankedKeyword is a candidate with its final rank and delta against the
// most recent prior snapshot containing the same keyword ID.
type RankedKeyword struct {
	Candidate match.Candidate
	Scores    Scores
	Rank      int
	DeltaRank int
	IsNew     bool
}

// Score computes the weighted components for one candidate.
func Score(candidate match.Candidate, now time.Time) Scores {
	ageHours := now.Sub(candidate.LatestAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	s := Scores{
		Recency:   math.Exp(-ageHours / recencyHalfHours),
		Frequency: math.Min(1, float64(len(candidate.Domains))/frequencyCap),
		Authority: tierAuthority(candidate.Tier),
		Internal:  0,
	}
	s.Total = weightRecency*s.Recency + weightFrequency*s.Frequency +
		weightAuthority*s.Authority + weightInternal*s.Internal
	return s
}

func tierAuthority(tier sources.Tier) float64 {
	switch tier {
	case sources.TierP0Curated, sources.TierP0Releases:
		return 1.0
	case sources.TierP1Context:
		return 0.6
	case sources.TierP2Raw:
		return 0.3
	default:
		return 0.2
	}
}

type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Run scores and orders candidates, slices the top limit, applies the
// novelty bonus for keywords absent from prior snapshots, and renumbers
// ranks densely. prevRanks maps keyword ID to the rank in the most recent
// prior snapshot containing it.
func (r *Ranker) Run(candidates []match.Candidate, prevRanks map[string]int, limit int, now time.Time) []RankedKeyword {
	ranked := make([]RankedKeyword, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, RankedKeyword{
			Candidate: candidate,
			Scores:    Score(candidate, now),
		})
	}

	sortByTotal(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for i := range ranked {
		_, existed := prevRanks[ranked[i].Candidate.Keyword.ID]
		if !existed {
			ranked[i].IsNew = true
			ranked[i].Scores.Total += noveltyBonus
		}
	}

	sortByTotal(ranked)

	newCount := 0
	for i := range ranked {
		ranked[i].Rank = i + 1
		if ranked[i].IsNew {
			newCount++
			continue
		}
		ranked[i].DeltaRank = prevRanks[ranked[i].Candidate.Keyword.ID] - ranked[i].Rank
	}

	slog.Info("Ranking completed", "candidates", len(candidates), "ranked", len(ranked), "new", newCount)
	return ranked
}

// sortByTotal orders by total descending with the keyword text as a
// deterministic tie-break.
func sortByTotal(ranked []RankedKeyword) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Scores.Total != ranked[j].Scores.Total {
			return ranked[i].Scores.Total > ranked[j].Scores.Total
		}
		return ranked[i].Candidate.Keyword.Text < ranked[j].Candidate.Keyword.Text
	})
}

// Round4 rounds a score component for persistence.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
