// Package diff computes minimal edit scripts between successive list
// snapshots, keyed by a stable identity with structural equality deciding
// updates. It backs the roster and chat views.
package diff

// Kind classifies one edit operation.
type Kind int

const (
	Insert Kind = iota
	Remove
	Move
	Update
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Move:
		return "move"
	case Update:
		return "update"
	}
	return "unknown"
}

// Edit is one operation of an edit script. From indexes the old list
// (Remove, Move), To indexes the new list (Insert, Move, Update), Item is
// the new element (Insert, Move, Update).
type Edit[T any] struct {
	Kind Kind
	From int
	To   int
	Item T
}

// Diff computes an ordered edit script turning old into new. Identity is
// decided by key (keys are assumed unique within a list, e.g. usernames),
// content changes by equal. An element present in both lists with changed
// content yields an Update, never a Remove+Insert pair; an element whose
// position changed yields a Move.
//
// The script is ordered for direct application: Removes in descending old
// index, then Inserts and Moves in ascending new index, then Updates.
func Diff[T any](old, new []T, key func(T) string, equal func(a, b T) bool) []Edit[T] {
	if edits, ok := appendFastPath(old, new, key, equal); ok {
		return edits
	}

	oldIndex := make(map[string]int, len(old))
	for i, item := range old {
		oldIndex[key(item)] = i
	}
	newIndex := make(map[string]int, len(new))
	for j, item := range new {
		newIndex[key(item)] = j
	}

	matched := lcsPairs(old, new, key)

	var edits []Edit[T]
	for i := len(old) - 1; i >= 0; i-- {
		if _, ok := newIndex[key(old[i])]; !ok {
			edits = append(edits, Edit[T]{Kind: Remove, From: i})
		}
	}
	for j, item := range new {
		i, inOld := oldIndex[key(item)]
		if !inOld {
			edits = append(edits, Edit[T]{Kind: Insert, To: j, Item: item})
			continue
		}
		if _, onLCS := matched[i]; !onLCS {
			edits = append(edits, Edit[T]{Kind: Move, From: i, To: j, Item: item})
		}
	}
	for j, item := range new {
		if i, inOld := oldIndex[key(item)]; inOld && !equal(old[i], item) {
			edits = append(edits, Edit[T]{Kind: Update, To: j, Item: item})
		}
	}
	return edits
}

// appendFastPath detects the common chat-log case where the old list is an
// unchanged prefix of the new one, avoiding the quadratic pass.
func appendFastPath[T any](old, new []T, key func(T) string, equal func(a, b T) bool) ([]Edit[T], bool) {
	if len(old) > len(new) {
		return nil, false
	}
	for i, item := range old {
		if key(item) != key(new[i]) || !equal(item, new[i]) {
			return nil, false
		}
	}
	edits := make([]Edit[T], 0, len(new)-len(old))
	for j := len(old); j < len(new); j++ {
		edits = append(edits, Edit[T]{Kind: Insert, To: j, Item: new[j]})
	}
	return edits, true
}

// lcsPairs returns, for each old index on the longest common subsequence of
// keys, the new index it is matched with. Elements off the subsequence are
// absent and get reported as Moves by Diff.
func lcsPairs[T any](old, new []T, key func(T) string) map[int]int {
	n, m := len(old), len(new)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if key(old[i]) == key(new[j]) {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	matched := make(map[int]int)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case key(old[i]) == key(new[j]):
			matched[i] = j
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return matched
}

// Apply executes an edit script produced by Diff against old and returns
// the resulting list. Used by consumers that maintain incremental views and
// by tests asserting the script actually reproduces the new snapshot.
func Apply[T any](old []T, edits []Edit[T]) []T {
	result := append([]T(nil), old...)

	// Removes and move-sources leave the list first, highest index first.
	drop := make([]int, 0, len(edits))
	for _, e := range edits {
		if e.Kind == Remove || e.Kind == Move {
			drop = append(drop, e.From)
		}
	}
	for i := 0; i < len(drop); i++ {
		for j := i + 1; j < len(drop); j++ {
			if drop[j] > drop[i] {
				drop[i], drop[j] = drop[j], drop[i]
			}
		}
	}
	for _, idx := range drop {
		result = append(result[:idx], result[idx+1:]...)
	}

	// Inserts and move-targets re-enter in ascending new index.
	for _, e := range edits {
		if e.Kind != Insert && e.Kind != Move {
			continue
		}
		if e.To >= len(result) {
			result = append(result, e.Item)
			continue
		}
		result = append(result[:e.To+1], result[e.To:]...)
		result[e.To] = e.Item
	}

	for _, e := range edits {
		if e.Kind == Update && e.To < len(result) {
			result[e.To] = e.Item
		}
	}
	return result
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
