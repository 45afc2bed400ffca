package formula

import "strings"

// Kind identifies a grading formula. It is stored on a prop as formula_key.
type Kind string

const (
	KindWhoWins            Kind = "who_wins"
	KindStatOverUnder      Kind = "stat_over_under"
	KindPlayerH2H          Kind = "player_h2h"
	KindTeamStatH2H        Kind = "team_stat_h2h"
	KindPlayerMultiStatOU  Kind = "player_multi_stat_ou"
	KindTeamMultiStatOU    Kind = "team_multi_stat_ou"
	KindPlayerMultiStatH2H Kind = "player_multi_stat_h2h"
	KindTeamMultiStatH2H   Kind = "team_multi_stat_h2h"
)

// ParseKind normalizes a stored formula key.
func ParseKind(raw string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(raw)))
}
