package activity

import (
	"fmt"
	"sort"

	"github.com/onnwee/guildxp/store"
)

// Entry is one leaderboard row.
type Entry struct {
	UserID string
	Record store.UserRecord
}

// TopN returns up to n users ordered by total XP descending. The sort is
// stable over first-seen order, so tied users keep their insertion order.
func (s *Service) TopN(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		if rec, ok := s.users[id]; ok {
			entries = append(entries, Entry{UserID: id, Record: *rec})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Record.TotalXP > entries[j].Record.TotalXP
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// RankBadge returns the display marker for a zero-based leaderboard
// position: medals for the podium, ordinal numbers below it.
func RankBadge(position int) string {
	switch position {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", position+1)
	}
}
