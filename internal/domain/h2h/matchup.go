package h2h

import (
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

// Status is the lifecycle state of a matchup.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusFinal    Status = "final"
)

// TiePolicy decides the bonus split when neither participant wins.
type TiePolicy string

const (
	TieSplit TiePolicy = "split"
	TieBoth  TiePolicy = "both"
	TieNone  TiePolicy = "none"
)

// ParseTiePolicy defaults an empty value to split.
func ParseTiePolicy(raw string) (TiePolicy, bool) {
	switch TiePolicy(raw) {
	case "", TieSplit:
		return TieSplit, true
	case TieBoth:
		return TieBoth, true
	case TieNone:
		return TieNone, true
	}
	return "", false
}

// Matchup is a two-participant side competition over one pack.
type Matchup struct {
	ID           string     `json:"id"`
	Token        string     `json:"token"`
	PackID       string     `json:"packId"`
	ParticipantA string     `json:"participantA"`
	ParticipantB string     `json:"participantB,omitempty"`
	Status       Status     `json:"status"`
	Bonus        int64      `json:"bonus"`
	TiePolicy    TiePolicy  `json:"tiePolicy"`
	CorrectA     int        `json:"correctA"`
	CorrectB     int        `json:"correctB"`
	TokensA      int64      `json:"tokensA"`
	TokensB      int64      `json:"tokensB"`
	WinnerID     string     `json:"winnerId,omitempty"`
	BonusA       int64      `json:"bonusA"`
	BonusB       int64      `json:"bonusB"`
	CreatedAt    time.Time  `json:"createdAt"`
	FinalizedAt  *time.Time `json:"finalizedAt,omitempty"`
}

// Ready reports whether both participants are set.
func (m Matchup) Ready() bool {
	return m.ParticipantA != "" && m.ParticipantB != ""
}

// Tally is one participant's derived score.
type Tally struct {
	Correct int   `json:"correct"`
	Tokens  int64 `json:"tokens"`
}

// TallyFor counts won predictions and sums points over every latest
// prediction the owner holds in the pack, graded or not.
func TallyFor(owner string, preds []props.Prediction) Tally {
	var t Tally
	for _, p := range preds {
		if p.OwnerID != owner || p.Status != props.PredictionLatest {
			continue
		}
		if p.Result == props.ResultWon {
			t.Correct++
		}
		t.Tokens += p.Points
	}
	return t
}

// Outcome is the result of settling a matchup.
type Outcome struct {
	A, B     Tally
	WinnerID string
	BonusA   int64
	BonusB   int64
}

// Settle picks a winner by correct count, then tokens, and splits the bonus.
func Settle(m Matchup, a, b Tally) Outcome {
	out := Outcome{A: a, B: b}
	switch {
	case a.Correct > b.Correct, a.Correct == b.Correct && a.Tokens > b.Tokens:
		out.WinnerID = m.ParticipantA
		out.BonusA = m.Bonus
	case b.Correct > a.Correct, a.Correct == b.Correct && b.Tokens > a.Tokens:
		out.WinnerID = m.ParticipantB
		out.BonusB = m.Bonus
	default:
		out.BonusA, out.BonusB = SplitTie(m.Bonus, m.TiePolicy)
	}
	return out
}

// SplitTie applies a tie policy. split floors the half to A and gives the
// remainder to B.
func SplitTie(bonus int64, policy TiePolicy) (int64, int64) {
	switch policy {
	case TieBoth:
		return bonus, bonus
	case TieNone:
		return 0, 0
	default:
		half := bonus / 2
		return half, bonus - half
	}
}

// Apply writes an outcome onto the matchup, overwriting any earlier result.
func (m Matchup) Apply(out Outcome, at time.Time) Matchup {
	m.CorrectA, m.TokensA = out.A.Correct, out.A.Tokens
	m.CorrectB, m.TokensB = out.B.Correct, out.B.Tokens
	m.WinnerID = out.WinnerID
	m.BonusA, m.BonusB = out.BonusA, out.BonusB
	m.Status = StatusFinal
	m.FinalizedAt = &at
	return m
}
