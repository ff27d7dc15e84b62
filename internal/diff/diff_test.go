package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type player struct {
	Username string
	Score    int
}

func pkey(p player) string    { return p.Username }
func pequal(a, b player) bool { return a == b }

func names(ps []player) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Username
	}
	return out
}

func kinds(edits []Edit[player]) map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range edits {
		counts[e.Kind]++
	}
	return counts
}

func TestDiff_UpdateAndInsert(t *testing.T) {
	old := []player{{Username: "A", Score: 0}}
	new := []player{{Username: "A", Score: 5}, {Username: "B", Score: 0}}

	edits := Diff(old, new, pkey, pequal)

	counts := kinds(edits)
	assert.Equal(t, 1, counts[Update], "score change must be an update, not remove+insert")
	assert.Equal(t, 1, counts[Insert])
	assert.Zero(t, counts[Remove])
	assert.Zero(t, counts[Move])
	assert.Equal(t, new, Apply(old, edits))
}

func TestDiff_PureAppendFastPath(t *testing.T) {
	old := []player{{Username: "m1"}}
	new := []player{{Username: "m1"}, {Username: "m2"}}

	edits := Diff(old, new, pkey, pequal)

	assert.Len(t, edits, 1)
	assert.Equal(t, Insert, edits[0].Kind)
	assert.Equal(t, 1, edits[0].To)
	assert.Equal(t, new, Apply(old, edits))
}

func TestDiff_EmptyOldIsAllInserts(t *testing.T) {
	new := []player{{Username: "A"}, {Username: "B"}}
	edits := Diff(nil, new, pkey, pequal)

	assert.Len(t, edits, 2)
	for _, e := range edits {
		assert.Equal(t, Insert, e.Kind)
	}
	assert.Equal(t, new, Apply(nil, edits))
}

func TestDiff_Remove(t *testing.T) {
	old := []player{{Username: "A"}, {Username: "B"}, {Username: "C"}}
	new := []player{{Username: "A"}, {Username: "C"}}

	edits := Diff(old, new, pkey, pequal)

	assert.Len(t, edits, 1)
	assert.Equal(t, Remove, edits[0].Kind)
	assert.Equal(t, 1, edits[0].From)
	assert.Equal(t, new, Apply(old, edits))
}

func TestDiff_MoveOnReorder(t *testing.T) {
	old := []player{{Username: "A"}, {Username: "B"}, {Username: "C"}}
	new := []player{{Username: "B"}, {Username: "C"}, {Username: "A"}}

	edits := Diff(old, new, pkey, pequal)

	counts := kinds(edits)
	assert.Zero(t, counts[Remove])
	assert.Zero(t, counts[Insert])
	assert.Equal(t, 1, counts[Move], "a rank reshuffle is a move, not churn")
	assert.Equal(t, names(new), names(Apply(old, edits)))
}

func TestDiff_WholesaleReplace(t *testing.T) {
	old := []player{{Username: "A"}, {Username: "B"}}
	new := []player{{Username: "X"}, {Username: "Y"}, {Username: "Z"}}

	edits := Diff(old, new, pkey, pequal)
	assert.Equal(t, new, Apply(old, edits))
}

func TestDiff_MovedAndUpdated(t *testing.T) {
	old := []player{{Username: "A", Score: 1}, {Username: "B", Score: 2}}
	new := []player{{Username: "B", Score: 7}, {Username: "A", Score: 1}}

	edits := Diff(old, new, pkey, pequal)
	assert.Equal(t, new, Apply(old, edits))

	counts := kinds(edits)
	assert.Equal(t, 1, counts[Move])
	assert.Equal(t, 1, counts[Update])
}

func TestDiff_NoChanges(t *testing.T) {
	list := []player{{Username: "A"}, {Username: "B"}}
	assert.Empty(t, Diff(list, list, pkey, pequal))
}

func TestWorker_OrderedResults(t *testing.T) {
	results := make(chan Result[player], 8)
	w := NewWorker(pkey, pequal, func(r Result[player]) { results <- r })

	w.Submit([]player{{Username: "A"}})
	w.Submit([]player{{Username: "A"}, {Username: "B"}})
	w.Submit([]player{{Username: "B"}})
	w.Close()
	close(results)

	var snapshots [][]string
	for r := range results {
		snapshots = append(snapshots, names(r.Items))
	}
	assert.Equal(t, [][]string{{"A"}, {"A", "B"}, {"B"}}, snapshots)
}

func TestWorker_SubmitAfterCloseIsNoop(t *testing.T) {
	w := NewWorker(pkey, pequal, func(Result[player]) {})
	w.Close()
	w.Submit([]player{{Username: "A"}}) // must not panic
}
