package media

import "github.com/spacedrop/spacedrop/client/internal/types"

// DefaultGroupBudget is the character budget for one gateway write. The
// server rejects larger payloads, so a multi-photo submission is split into
// as many entries as the budget requires.
const DefaultGroupBudget = 4_500_000

// Group is one upload batch of encoded image payloads.
type Group []string

// Payload renders the group in its wire form: a single photo for one item,
// a JSON photo set for two or more.
func (g Group) Payload() types.Payload {
	if len(g) == 1 {
		return types.Payload{Kind: types.PayloadPhoto, Data: g[0]}
	}
	return types.Payload{Kind: types.PayloadPhotoSet, Photos: g}
}

// PartitionByBudget splits items, in order, into groups whose cumulative
// character length stays within budget. A single item larger than the whole
// budget still forms its own group rather than being dropped, so the
// flattened output always reproduces the input exactly: no loss, no
// reordering, no duplication.
func PartitionByBudget(items []string, budget int) []Group {
	if budget <= 0 {
		budget = DefaultGroupBudget
	}

	var groups []Group
	var current Group
	size := 0
	for _, item := range items {
		if len(current) > 0 && size+len(item) > budget {
			groups = append(groups, current)
			current = nil
			size = 0
		}
		current = append(current, item)
		size += len(item)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
