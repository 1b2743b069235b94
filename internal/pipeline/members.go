package pipeline

import (
	"sort"
	"strings"

	"github.com/riskibarqy/fantasy-history/internal/domain/member"
)

// UniqueMembers returns one member per owner across seasons. Rows are
// de-duplicated by id, then by name; the earliest season wins.
func UniqueMembers(roster []member.RosterEntry) []member.Member {
	ordered := append([]member.RosterEntry(nil), roster...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Season < ordered[j].Season })

	seenIDs := make(map[string]struct{}, len(ordered))
	seenNames := make(map[string]struct{}, len(ordered))
	out := make([]member.Member, 0)
	for _, entry := range ordered {
		id := normalizeOwnerID(entry.OwnerID)
		if id == "" {
			continue
		}
		if _, ok := seenIDs[id]; ok {
			continue
		}
		seenIDs[id] = struct{}{}

		name := strings.ToLower(strings.TrimSpace(entry.OwnerFullName))
		if name != "" {
			if _, ok := seenNames[name]; ok {
				continue
			}
			seenNames[name] = struct{}{}
		}
		out = append(out, entry.Member())
	}
	return out
}
