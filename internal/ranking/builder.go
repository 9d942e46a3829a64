package ranking

import (
	"sort"

	"trawl/internal/items"
)

// Batch is one topic's surviving candidates plus the topic's rank weight.
type Batch struct {
	TopicSlug string
	Weight    float64
	Items     []items.Candidate
}

// Ranked is a candidate with its batch provenance and effective rank key.
type Ranked struct {
	items.Candidate
	TopicSlug string
	RankScore float64
}

// Build flattens all batches into one list ordered by score × weight,
// descending, and truncates to maxSize. The sort is stable so ties keep
// batch and arrival order. A weight of zero is treated as 1 so an
// unconfigured topic ranks neutrally. Nothing mutates the list after this.
func Build(batches []Batch, maxSize int) []Ranked {
	var out []Ranked
	for _, b := range batches {
		weight := b.Weight
		if weight == 0 {
			weight = 1
		}
		for _, c := range b.Items {
			out = append(out, Ranked{
				Candidate: c,
				TopicSlug: b.TopicSlug,
				RankScore: c.Score * weight,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RankScore > out[j].RankScore
	})

	if maxSize > 0 && len(out) > maxSize {
		out = out[:maxSize]
	}
	return out
}
