package importer

import (
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(numbers ...int) []*models.Question {
	qs := make([]*models.Question, len(numbers))
	for i, n := range numbers {
		qs[i] = &models.Question{Number: n}
	}
	return qs
}

func numbersOf(qs []*models.Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.Number
	}
	return out
}

func TestMergeNumbering(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		incoming []int
		want     []int
	}{
		{
			name:     "no collisions keeps numbers",
			existing: []int{1, 2},
			incoming: []int{3, 4},
			want:     []int{1, 2, 3, 4},
		},
		{
			name:     "collision gets max plus one",
			existing: []int{1, 2, 5},
			incoming: []int{2},
			want:     []int{1, 2, 5, 6},
		},
		{
			name:     "running max advances per collision",
			existing: []int{1, 2, 3},
			incoming: []int{1, 2},
			want:     []int{1, 2, 3, 4, 5},
		},
		{
			name:     "repeated incoming numbers each get a fresh slot",
			existing: []int{1},
			incoming: []int{1, 2, 2},
			want:     []int{1, 2, 3, 4},
		},
		{
			name:     "empty existing",
			existing: nil,
			incoming: []int{3, 1},
			want:     []int{1, 3},
		},
		{
			name:     "empty incoming",
			existing: []int{2, 1},
			incoming: nil,
			want:     []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeNumbering(numbered(tt.existing...), numbered(tt.incoming...))
			assert.Equal(t, tt.want, numbersOf(merged))
		})
	}
}

func TestMergeNumbering_DoesNotMutateExisting(t *testing.T) {
	existing := numbered(1, 2)
	MergeNumbering(existing, numbered(1))

	assert.Equal(t, []int{1, 2}, numbersOf(existing))
}

func TestMergeNumbering_IncomingRenumberedInPlace(t *testing.T) {
	incoming := numbered(1)
	MergeNumbering(numbered(1, 2), incoming)

	require.Len(t, incoming, 1)
	assert.Equal(t, 3, incoming[0].Number)
}
