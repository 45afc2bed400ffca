package stats

import "strings"

// Metric is a canonical stat key, e.g. "points" or "passing_yards".
// Group-qualified keys ("pitching.strikeouts") disambiguate stats that appear
// in more than one statistic group.
type Metric string

// Qualified reports whether the metric carries a group prefix.
func (m Metric) Qualified() bool {
	return strings.Contains(string(m), ".")
}

// Split separates a qualified metric into its group and bare metric.
func (m Metric) Split() (group string, bare Metric) {
	g, b, ok := strings.Cut(string(m), ".")
	if !ok {
		return "", m
	}
	return g, Metric(b)
}

// Sport families share one vocabulary across leagues.
const (
	SportBasketball = "basketball"
	SportFootball   = "football"
	SportBaseball   = "baseball"
	SportHockey     = "hockey"
)

var leagueSports = map[string]string{
	"nba":   SportBasketball,
	"wnba":  SportBasketball,
	"ncaam": SportBasketball,
	"ncaaw": SportBasketball,
	"nfl":   SportFootball,
	"cfb":   SportFootball,
	"mlb":   SportBaseball,
	"nhl":   SportHockey,
}

// SportOf returns the sport family for a league tag.
func SportOf(league string) (string, bool) {
	s, ok := leagueSports[strings.ToLower(strings.TrimSpace(league))]
	return s, ok
}

// Vocabulary is the controlled set of metric names for one sport.
type Vocabulary struct {
	Sport    string
	Score    Metric
	aliases  map[string]Metric
	opposing map[string]bool
}

// Opposing reports whether a statistic group records what the other team did
// against this one, e.g. hits allowed by pitchers. Such values belong to the
// player but never to the team's own totals.
func (v Vocabulary) Opposing(group string) bool {
	return v.opposing[strings.ToLower(strings.TrimSpace(group))]
}

// Resolve maps a provider-native or user-supplied key to its canonical metric.
// Unknown keys pass through lower-cased. A group prefix is resolved on both
// halves, so "Pitching.K" becomes "pitching.strikeouts".
func (v Vocabulary) Resolve(raw string) Metric {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if m, ok := v.aliases[key]; ok {
		return m
	}
	if group, stat, ok := strings.Cut(key, "."); ok && group != "" && stat != "" {
		return Metric(group + "." + string(v.resolveBare(stat)))
	}
	return v.resolveBare(key)
}

// Qualify returns the group-qualified form of a metric.
func (v Vocabulary) Qualify(group, raw string) Metric {
	group = strings.ToLower(strings.TrimSpace(group))
	m := v.resolveBare(strings.ToLower(strings.TrimSpace(raw)))
	if group == "" {
		return m
	}
	return Metric(group + "." + string(m))
}

func (v Vocabulary) resolveBare(key string) Metric {
	if m, ok := v.aliases[key]; ok {
		return m
	}
	return Metric(key)
}

// VocabularyFor returns the vocabulary for a league, falling back to a
// pass-through vocabulary with "points" as the score metric.
func VocabularyFor(league string) Vocabulary {
	sport, ok := SportOf(league)
	if !ok {
		return Vocabulary{Score: "points"}
	}
	return vocabularies[sport]
}

func newVocabulary(sport string, score Metric, table map[Metric][]string, opposing ...string) Vocabulary {
	aliases := make(map[string]Metric)
	for canonical, names := range table {
		aliases[string(canonical)] = canonical
		for _, n := range names {
			aliases[strings.ToLower(n)] = canonical
		}
	}
	against := make(map[string]bool, len(opposing))
	for _, g := range opposing {
		against[g] = true
	}
	return Vocabulary{Sport: sport, Score: score, aliases: aliases, opposing: against}
}

var vocabularies = map[string]Vocabulary{
	SportBasketball: newVocabulary(SportBasketball, "points", map[Metric][]string{
		"points":              {"pts", "score"},
		"rebounds":            {"reb", "totalrebounds"},
		"offensive_rebounds":  {"oreb", "offensiverebounds"},
		"defensive_rebounds":  {"dreb", "defensiverebounds"},
		"assists":             {"ast"},
		"steals":              {"stl"},
		"blocks":              {"blk"},
		"turnovers":           {"to", "tov", "turnover"},
		"fouls":               {"pf", "personalfouls"},
		"minutes":             {"min"},
		"three_pointers_made": {"3pm", "fg3m", "threepointfieldgoalsmade"},
		"field_goals_made":    {"fgm", "fieldgoalsmade"},
		"free_throws_made":    {"ftm", "freethrowsmade"},
		"plus_minus":          {"+/-", "plusminus"},
	}),
	SportFootball: newVocabulary(SportFootball, "points", map[Metric][]string{
		"points":               {"pts", "score"},
		"passing_yards":        {"passingyards", "pass_yds", "passyds"},
		"passing_touchdowns":   {"passingtouchdowns", "pass_td"},
		"interceptions":        {"int", "interceptionsthrown"},
		"completions":          {"cmp"},
		"rushing_attempts":     {"rushingattempts", "car", "carries"},
		"rushing_yards":        {"rushingyards", "rush_yds", "rushyds"},
		"rushing_touchdowns":   {"rushingtouchdowns", "rush_td"},
		"receptions":           {"rec"},
		"receiving_yards":      {"receivingyards", "rec_yds", "recyds"},
		"receiving_touchdowns": {"receivingtouchdowns", "rec_td"},
		"targets":              {"receivingtargets", "tgts"},
		"sacks":                {"sk"},
		"total_tackles":        {"totaltackles", "tackles", "tot"},
		"field_goals_made":     {"fieldgoalsmade", "fgm"},
		"total_yards":          {"totalyards", "yds"},
	}),
	SportBaseball: newVocabulary(SportBaseball, "runs", map[Metric][]string{
		"runs":            {"r"},
		"hits":            {"h"},
		"errors":          {"e"},
		"rbi":             {"rbis", "runsbattedin"},
		"home_runs":       {"hr", "homeruns"},
		"walks":           {"bb", "baseonballs"},
		"strikeouts":      {"k", "so"},
		"at_bats":         {"ab", "atbats"},
		"stolen_bases":    {"sb", "stolenbases"},
		"earned_runs":     {"er", "earnedruns"},
		"total_bases":     {"tb", "totalbases"},
		"doubles":         {"2b"},
		"triples":         {"3b"},
		"pitches":         {"pc", "pitchcount"},
		"innings_pitched": {"ip", "fullinnings.partinnings", "inningspitched"},
	}, "pitching"),
	SportHockey: newVocabulary(SportHockey, "goals", map[Metric][]string{
		"goals":           {"g"},
		"assists":         {"a"},
		"points":          {"pts"},
		"shots":           {"s", "sog", "shotstotal", "shotsongoal"},
		"saves":           {"sv"},
		"hits":            {"ht"},
		"blocked_shots":   {"bs", "blockedshots"},
		"penalty_minutes": {"pim", "penaltyminutes"},
		"plus_minus":      {"+/-", "plusminus"},
	}),
}
