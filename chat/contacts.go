package chat

import "github.com/careermate/messenger/contract"

// contactKeys derives the distinct conversation partners from the user's
// message stream: every "to" value, deduplicated, in first-seen order. A
// user who never sent a message derives an empty set.
func contactKeys(msgs []contract.Message) []string {
	seen := make(map[string]struct{}, len(msgs))
	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.To]; ok {
			continue
		}
		seen[m.To] = struct{}{}
		keys = append(keys, m.To)
	}
	return keys
}
