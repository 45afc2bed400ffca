package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

type eventRow struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	League         string    `gorm:"column:league;type:varchar(16);not null"`
	ScheduledAt    time.Time `gorm:"column:scheduled_at;type:timestamptz;index"`
	UpstreamGameID string    `gorm:"column:upstream_game_id;type:varchar(64)"`
	HomeTeam       string    `gorm:"column:home_team;type:varchar(16)"`
	AwayTeam       string    `gorm:"column:away_team;type:varchar(16)"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamptz"`
}

type propRow struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	PackID        string         `gorm:"column:pack_id;type:varchar(64);index"`
	EventID       string         `gorm:"column:event_id;type:varchar(64)"`
	SideALabel    string         `gorm:"column:side_a_label;type:varchar(64)"`
	SideBLabel    string         `gorm:"column:side_b_label;type:varchar(64)"`
	SideAValue    int64          `gorm:"column:side_a_value;default:0"`
	SideBValue    int64          `gorm:"column:side_b_value;default:0"`
	GradingMode   string         `gorm:"column:grading_mode;type:varchar(8);not null;default:manual"`
	FormulaKey    string         `gorm:"column:formula_key;type:varchar(32)"`
	FormulaParams datatypes.JSON `gorm:"column:formula_params;type:jsonb"`
	Status        string         `gorm:"column:status;type:varchar(16);not null;index"`
	ResultText    string         `gorm:"column:result_text;type:text"`
	GradedAt      *time.Time     `gorm:"column:graded_at;type:timestamptz"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamptz"`
}

type packRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Title     string    `gorm:"column:title;type:varchar(256)"`
	Status    string    `gorm:"column:status;type:varchar(16);not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz"`
}

type predictionRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	PropID    string    `gorm:"column:prop_id;type:varchar(64);not null;index"`
	PackID    string    `gorm:"column:pack_id;type:varchar(64);index"`
	OwnerID   string    `gorm:"column:owner_id;type:varchar(64);not null"`
	Side      string    `gorm:"column:side;type:varchar(1);not null"`
	Status    string    `gorm:"column:status;type:varchar(16);not null"`
	Result    string    `gorm:"column:result;type:varchar(16);not null;default:pending"`
	Points    int64     `gorm:"column:points;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz"`
}

type matchupRow struct {
	ID           string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	Token        string     `gorm:"column:token;type:varchar(64);uniqueIndex;not null"`
	PackID       string     `gorm:"column:pack_id;type:varchar(64);not null"`
	ParticipantA string     `gorm:"column:participant_a;type:varchar(64);not null"`
	ParticipantB string     `gorm:"column:participant_b;type:varchar(64)"`
	Status       string     `gorm:"column:status;type:varchar(16);not null"`
	Bonus        int64      `gorm:"column:bonus;default:0"`
	TiePolicy    string     `gorm:"column:tie_policy;type:varchar(8);not null;default:split"`
	CorrectA     int        `gorm:"column:correct_a;default:0"`
	CorrectB     int        `gorm:"column:correct_b;default:0"`
	TokensA      int64      `gorm:"column:tokens_a;default:0"`
	TokensB      int64      `gorm:"column:tokens_b;default:0"`
	WinnerID     string     `gorm:"column:winner_id;type:varchar(64)"`
	BonusA       int64      `gorm:"column:bonus_a;default:0"`
	BonusB       int64      `gorm:"column:bonus_b;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz"`
	FinalizedAt  *time.Time `gorm:"column:finalized_at;type:timestamptz"`
}

func (eventRow) TableName() string      { return "events" }
func (propRow) TableName() string       { return "props" }
func (packRow) TableName() string       { return "packs" }
func (predictionRow) TableName() string { return "predictions" }
func (matchupRow) TableName() string    { return "h2h_matchups" }

func toEventRow(e props.Event) eventRow {
	return eventRow{
		ID:             e.ID,
		League:         e.League,
		ScheduledAt:    e.ScheduledAt,
		UpstreamGameID: e.UpstreamGameID,
		HomeTeam:       e.HomeTeam,
		AwayTeam:       e.AwayTeam,
	}
}

func (r eventRow) domain() props.Event {
	return props.Event{
		ID:             r.ID,
		League:         r.League,
		ScheduledAt:    r.ScheduledAt,
		UpstreamGameID: r.UpstreamGameID,
		HomeTeam:       r.HomeTeam,
		AwayTeam:       r.AwayTeam,
	}
}

func toPropRow(p props.Prop) propRow {
	row := propRow{
		ID:          p.ID,
		PackID:      p.PackID,
		EventID:     p.EventID,
		SideALabel:  p.SideALabel,
		SideBLabel:  p.SideBLabel,
		SideAValue:  p.SideAValue,
		SideBValue:  p.SideBValue,
		GradingMode: string(p.GradingMode),
		FormulaKey:  p.FormulaKey,
		Status:      string(p.Status),
		ResultText:  p.ResultText,
		GradedAt:    p.GradedAt,
	}
	if len(p.FormulaParams) > 0 {
		row.FormulaParams = datatypes.JSON(p.FormulaParams)
	}
	return row
}

func (r propRow) domain() props.Prop {
	p := props.Prop{
		ID:          r.ID,
		PackID:      r.PackID,
		EventID:     r.EventID,
		SideALabel:  r.SideALabel,
		SideBLabel:  r.SideBLabel,
		SideAValue:  r.SideAValue,
		SideBValue:  r.SideBValue,
		GradingMode: props.GradingMode(r.GradingMode),
		FormulaKey:  r.FormulaKey,
		Status:      props.Status(r.Status),
		ResultText:  r.ResultText,
		GradedAt:    r.GradedAt,
	}
	if len(r.FormulaParams) > 0 {
		p.FormulaParams = json.RawMessage(r.FormulaParams)
	}
	return p
}

func toPackRow(p props.Pack) packRow {
	return packRow{ID: p.ID, Title: p.Title, Status: string(p.Status)}
}

func (r packRow) domain() props.Pack {
	return props.Pack{ID: r.ID, Title: r.Title, Status: props.PackStatus(r.Status)}
}

func toPredictionRow(p props.Prediction) predictionRow {
	return predictionRow{
		ID:        p.ID,
		PropID:    p.PropID,
		PackID:    p.PackID,
		OwnerID:   p.OwnerID,
		Side:      string(p.Side),
		Status:    string(p.Status),
		Result:    string(p.Result),
		Points:    p.Points,
		CreatedAt: p.CreatedAt,
	}
}

func (r predictionRow) domain() props.Prediction {
	return props.Prediction{
		ID:        r.ID,
		PropID:    r.PropID,
		PackID:    r.PackID,
		OwnerID:   r.OwnerID,
		Side:      props.Side(r.Side),
		Status:    props.PredictionStatus(r.Status),
		Result:    props.Result(r.Result),
		Points:    r.Points,
		CreatedAt: r.CreatedAt,
	}
}

func toMatchupRow(m h2h.Matchup) matchupRow {
	return matchupRow{
		ID:           m.ID,
		Token:        m.Token,
		PackID:       m.PackID,
		ParticipantA: m.ParticipantA,
		ParticipantB: m.ParticipantB,
		Status:       string(m.Status),
		Bonus:        m.Bonus,
		TiePolicy:    string(m.TiePolicy),
		CorrectA:     m.CorrectA,
		CorrectB:     m.CorrectB,
		TokensA:      m.TokensA,
		TokensB:      m.TokensB,
		WinnerID:     m.WinnerID,
		BonusA:       m.BonusA,
		BonusB:       m.BonusB,
		CreatedAt:    m.CreatedAt,
		FinalizedAt:  m.FinalizedAt,
	}
}

func (r matchupRow) domain() h2h.Matchup {
	return h2h.Matchup{
		ID:           r.ID,
		Token:        r.Token,
		PackID:       r.PackID,
		ParticipantA: r.ParticipantA,
		ParticipantB: r.ParticipantB,
		Status:       h2h.Status(r.Status),
		Bonus:        r.Bonus,
		TiePolicy:    h2h.TiePolicy(r.TiePolicy),
		CorrectA:     r.CorrectA,
		CorrectB:     r.CorrectB,
		TokensA:      r.TokensA,
		TokensB:      r.TokensB,
		WinnerID:     r.WinnerID,
		BonusA:       r.BonusA,
		BonusB:       r.BonusB,
		CreatedAt:    r.CreatedAt,
		FinalizedAt:  r.FinalizedAt,
	}
}
