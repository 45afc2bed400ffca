package props

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a prop.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusGradedA Status = "gradedA"
	StatusGradedB Status = "gradedB"
	StatusPush    Status = "push"
)

// Terminal reports whether the prop has been graded.
func (s Status) Terminal() bool {
	return s == StatusGradedA || s == StatusGradedB || s == StatusPush
}

// GradingMode selects who decides a prop's outcome.
type GradingMode string

const (
	ModeManual GradingMode = "manual"
	ModeAuto   GradingMode = "auto"
)

// Side is the option a user takes on a prop.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide accepts "A"/"B" in any case.
func ParseSide(raw string) (Side, bool) {
	switch raw {
	case "A", "a":
		return SideA, true
	case "B", "b":
		return SideB, true
	}
	return "", false
}

// Winner is the outcome of a verdict.
type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerPush Winner = "push"
)

// Verdict is what a formula decides for a prop.
type Verdict struct {
	Winner     Winner `json:"winner"`
	ResultText string `json:"resultText"`
}

// Status maps the verdict onto the terminal prop status it produces.
func (v Verdict) Status() Status {
	switch v.Winner {
	case WinnerA:
		return StatusGradedA
	case WinnerB:
		return StatusGradedB
	default:
		return StatusPush
	}
}

// Valid reports whether the winner is one of the known outcomes.
func (v Verdict) Valid() bool {
	return v.Winner == WinnerA || v.Winner == WinnerB || v.Winner == WinnerPush
}

// Event is the real-world game a prop is tied to.
type Event struct {
	ID             string    `json:"id"`
	League         string    `json:"league"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	UpstreamGameID string    `json:"upstreamGameId,omitempty"`
	HomeTeam       string    `json:"homeTeam,omitempty"`
	AwayTeam       string    `json:"awayTeam,omitempty"`
}

// Prop is a binary-outcome statement users take a side on.
type Prop struct {
	ID            string          `json:"id"`
	PackID        string          `json:"packId,omitempty"`
	EventID       string          `json:"eventId,omitempty"`
	SideALabel    string          `json:"sideALabel"`
	SideBLabel    string          `json:"sideBLabel"`
	SideAValue    int64           `json:"sideAValue"`
	SideBValue    int64           `json:"sideBValue"`
	GradingMode   GradingMode     `json:"gradingMode"`
	FormulaKey    string          `json:"formulaKey,omitempty"`
	FormulaParams json.RawMessage `json:"formulaParams,omitempty"`
	Status        Status          `json:"status"`
	ResultText    string          `json:"resultText,omitempty"`
	GradedAt      *time.Time      `json:"gradedAt,omitempty"`
}

// Payout returns the points awarded for a winning take on side.
func (p Prop) Payout(side Side) int64 {
	if side == SideB {
		return p.SideBValue
	}
	return p.SideAValue
}

// PredictionStatus marks whether a prediction is the owner's current take.
type PredictionStatus string

const (
	PredictionLatest      PredictionStatus = "latest"
	PredictionOverwritten PredictionStatus = "overwritten"
)

// Result is the graded outcome of a prediction.
type Result string

const (
	ResultPending Result = "pending"
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
	ResultPush    Result = "push"
)

// Prediction is one user's take on a prop.
type Prediction struct {
	ID        string           `json:"id"`
	PropID    string           `json:"propId"`
	PackID    string           `json:"packId,omitempty"`
	OwnerID   string           `json:"ownerId"`
	Side      Side             `json:"side"`
	Status    PredictionStatus `json:"status"`
	Result    Result           `json:"result"`
	Points    int64            `json:"points"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Grade recomputes result and points for a verdict. pushPoints is awarded
// on a push regardless of side.
func (p Prediction) Grade(prop Prop, verdict Verdict, pushPoints int64) Prediction {
	switch verdict.Winner {
	case WinnerPush:
		p.Result = ResultPush
		p.Points = pushPoints
	case Winner(p.Side):
		p.Result = ResultWon
		p.Points = prop.Payout(p.Side)
	default:
		p.Result = ResultLost
		p.Points = 0
	}
	return p
}

// PackStatus is the lifecycle state of a pack.
type PackStatus string

const (
	PackDraft        PackStatus = "draft"
	PackComingSoon   PackStatus = "coming-soon"
	PackActive       PackStatus = "active"
	PackOpen         PackStatus = "open"
	PackLive         PackStatus = "live"
	PackClosed       PackStatus = "closed"
	PackPendingGrade PackStatus = "pending-grade"
	PackGraded       PackStatus = "graded"
)

// Pack groups props that close and grade together.
type Pack struct {
	ID     string     `json:"id"`
	Title  string     `json:"title,omitempty"`
	Status PackStatus `json:"status"`
}

// PackComplete reports whether every member prop is terminal. An empty pack
// is never complete.
func PackComplete(members []Prop) bool {
	if len(members) == 0 {
		return false
	}
	for _, p := range members {
		if !p.Status.Terminal() {
			return false
		}
	}
	return true
}
