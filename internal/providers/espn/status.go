package espn

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

func mapStatus(s *statusResponse) stats.GameStatus {
	if s == nil {
		return stats.StatusScheduled
	}
	switch {
	case s.Type.Completed:
		return stats.StatusFinal
	case s.Type.State == "in":
		return stats.StatusInProgress
	default:
		return stats.StatusScheduled
	}
}

// statusLabel renders "Final" for completed games, a period or inning
// indicator for live ones and the raw description otherwise.
func statusLabel(s *statusResponse, sport string) string {
	if s == nil {
		return ""
	}
	switch mapStatus(s) {
	case stats.StatusFinal:
		return "Final"
	case stats.StatusInProgress:
		return periodLabel(s, sport)
	default:
		if s.Type.Description != "" {
			return s.Type.Description
		}
		return s.Type.Detail
	}
}

func periodLabel(s *statusResponse, sport string) string {
	p := s.Period
	switch sport {
	case stats.SportBaseball:
		// ESPN's short detail already carries the half inning ("Top 5th").
		if d := s.Type.ShortDetail; hasInningPrefix(d) {
			return d
		}
		if p > 0 {
			return ordinal(p)
		}
	case stats.SportBasketball, stats.SportFootball:
		if p > 4 {
			if p == 5 {
				return "OT"
			}
			return fmt.Sprintf("%dOT", p-4)
		}
		if p > 0 {
			return fmt.Sprintf("Q%d", p)
		}
	case stats.SportHockey:
		if p > 3 {
			return "OT"
		}
		if p > 0 {
			return ordinal(p)
		}
	}
	if s.Type.ShortDetail != "" {
		return s.Type.ShortDetail
	}
	return s.Type.Description
}

func hasInningPrefix(detail string) bool {
	for _, prefix := range []string{"Top ", "Bot ", "Bottom ", "Mid ", "Middle ", "End "} {
		if strings.HasPrefix(detail, prefix) {
			return true
		}
	}
	return false
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
