package importer

import (
	"sort"

	"github.com/examstack/exam-service/internal/models"
)

// MergeNumbering merges freshly parsed questions into an existing
// collection, keeping numbers unique within it. An incoming number that
// collides with one already taken is reassigned max(taken)+1; the running
// max advances as numbers are claimed. The merged collection is returned
// sorted ascending by number.
//
// Incoming questions are renumbered in place; the existing slice is not
// modified.
func MergeNumbering(existing, incoming []*models.Question) []*models.Question {
	taken := make(map[int]struct{}, len(existing)+len(incoming))
	maxNumber := 0
	for _, q := range existing {
		taken[q.Number] = struct{}{}
		if q.Number > maxNumber {
			maxNumber = q.Number
		}
	}

	for _, q := range incoming {
		if _, collision := taken[q.Number]; collision {
			maxNumber++
			q.Number = maxNumber
		} else if q.Number > maxNumber {
			maxNumber = q.Number
		}
		taken[q.Number] = struct{}{}
	}

	merged := make([]*models.Question, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Number < merged[j].Number
	})
	return merged
}
