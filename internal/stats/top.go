package stats

import (
	"sort"

	"github.com/verte-zerg/shortcut/internal/model"
)

// Difficult is one row of the difficult-shortcut ranking.
type Difficult struct {
	Key       model.Key
	Box       int
	Correct   int
	Incorrect int
}

// TopDifficult returns up to n entries with at least one miss, most missed
// first. Ties are ordered by key.
func TopDifficult(progress model.Progress, n int) []Difficult {
	if n <= 0 || len(progress) == 0 {
		return nil
	}
	items := make([]Difficult, 0, len(progress))
	for key, e := range progress {
		if e.IncorrectCount <= 0 {
			continue
		}
		items = append(items, Difficult{
			Key:       key,
			Box:       e.Box,
			Correct:   e.CorrectCount,
			Incorrect: e.IncorrectCount,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Incorrect == items[j].Incorrect {
			return items[i].Key.String() < items[j].Key.String()
		}
		return items[i].Incorrect > items[j].Incorrect
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
