package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

// latestIndex backs the one-latest-prediction invariant in the database.
const latestIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uk_predictions_latest
	ON predictions (prop_id, owner_id) WHERE status = 'latest'`

// SQLStore persists documents in Postgres through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL connects to Postgres and migrates the schema.
func OpenSQL(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing gorm handle.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates or updates every table and the partial unique index.
func (s *SQLStore) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&eventRow{}, &propRow{}, &packRow{}, &predictionRow{}, &matchupRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(latestIndex).Error; err != nil {
		return fmt.Errorf("create latest index: %w", err)
	}
	return nil
}

// InTx runs fn inside a database transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sqlTx{sqlReader: sqlReader{db: tx}})
	})
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) reader() sqlReader {
	return sqlReader{db: s.db}
}

func (s *SQLStore) GetProp(ctx context.Context, id string) (props.Prop, error) {
	return s.reader().GetProp(ctx, id)
}

func (s *SQLStore) GetEvent(ctx context.Context, id string) (props.Event, error) {
	return s.reader().GetEvent(ctx, id)
}

func (s *SQLStore) GetPack(ctx context.Context, id string) (props.Pack, error) {
	return s.reader().GetPack(ctx, id)
}

func (s *SQLStore) ListPackProps(ctx context.Context, packID string) ([]props.Prop, error) {
	return s.reader().ListPackProps(ctx, packID)
}

func (s *SQLStore) ListPredictions(ctx context.Context, propID string) ([]props.Prediction, error) {
	return s.reader().ListPredictions(ctx, propID)
}

func (s *SQLStore) ListLatestPredictionsForPack(ctx context.Context, packID string) ([]props.Prediction, error) {
	return s.reader().ListLatestPredictionsForPack(ctx, packID)
}

func (s *SQLStore) ListAutoGradable(ctx context.Context, startedBefore time.Time) ([]props.Prop, error) {
	return s.reader().ListAutoGradable(ctx, startedBefore)
}

func (s *SQLStore) GetMatchup(ctx context.Context, token string) (h2h.Matchup, error) {
	return s.reader().GetMatchup(ctx, token)
}

type sqlReader struct {
	db *gorm.DB
}

func first[T any](ctx context.Context, db *gorm.DB, where string, arg any) (T, error) {
	var row T
	err := db.WithContext(ctx).Where(where, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrNotFound
	}
	return row, err
}

func (r sqlReader) GetProp(ctx context.Context, id string) (props.Prop, error) {
	row, err := first[propRow](ctx, r.db, "id = ?", id)
	if err != nil {
		return props.Prop{}, err
	}
	return row.domain(), nil
}

func (r sqlReader) GetEvent(ctx context.Context, id string) (props.Event, error) {
	row, err := first[eventRow](ctx, r.db, "id = ?", id)
	if err != nil {
		return props.Event{}, err
	}
	return row.domain(), nil
}

func (r sqlReader) GetPack(ctx context.Context, id string) (props.Pack, error) {
	row, err := first[packRow](ctx, r.db, "id = ?", id)
	if err != nil {
		return props.Pack{}, err
	}
	return row.domain(), nil
}

func (r sqlReader) GetMatchup(ctx context.Context, token string) (h2h.Matchup, error) {
	row, err := first[matchupRow](ctx, r.db, "token = ?", token)
	if err != nil {
		return h2h.Matchup{}, err
	}
	return row.domain(), nil
}

func (r sqlReader) ListPackProps(ctx context.Context, packID string) ([]props.Prop, error) {
	var rows []propRow
	if err := r.db.WithContext(ctx).Where("pack_id = ?", packID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return propsFromRows(rows), nil
}

func (r sqlReader) ListPredictions(ctx context.Context, propID string) ([]props.Prediction, error) {
	var rows []predictionRow
	if err := r.db.WithContext(ctx).Where("prop_id = ?", propID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return predictionsFromRows(rows), nil
}

func (r sqlReader) ListLatestPredictionsForPack(ctx context.Context, packID string) ([]props.Prediction, error) {
	var rows []predictionRow
	err := r.db.WithContext(ctx).
		Where("pack_id = ? AND status = ?", packID, string(props.PredictionLatest)).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return predictionsFromRows(rows), nil
}

func (r sqlReader) ListAutoGradable(ctx context.Context, startedBefore time.Time) ([]props.Prop, error) {
	var rows []propRow
	err := r.db.WithContext(ctx).
		Joins("JOIN events ON events.id = props.event_id").
		Where("props.grading_mode = ? AND props.status = ? AND events.scheduled_at <= ?",
			string(props.ModeAuto), string(props.StatusClosed), startedBefore).
		Order("props.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return propsFromRows(rows), nil
}

func propsFromRows(rows []propRow) []props.Prop {
	out := make([]props.Prop, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out
}

func predictionsFromRows(rows []predictionRow) []props.Prediction {
	out := make([]props.Prediction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out
}

type sqlTx struct {
	sqlReader
	savepoints int
}

func (t *sqlTx) SaveEvent(ctx context.Context, e props.Event) error {
	row := toEventRow(e)
	return t.db.WithContext(ctx).Save(&row).Error
}

func (t *sqlTx) SaveProp(ctx context.Context, p props.Prop) error {
	row := toPropRow(p)
	return t.db.WithContext(ctx).Save(&row).Error
}

func (t *sqlTx) SavePack(ctx context.Context, p props.Pack) error {
	row := toPackRow(p)
	return t.db.WithContext(ctx).Save(&row).Error
}

func (t *sqlTx) SavePrediction(ctx context.Context, p props.Prediction) error {
	row := toPredictionRow(p)
	return predictionSaveError(t.db.WithContext(ctx).Save(&row).Error)
}

// predictionSaveError maps a unique violation, which on predictions can only
// come from the partial latest index, to ErrLatestConflict.
func predictionSaveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrLatestConflict, err)
	}
	return err
}

func (t *sqlTx) SaveMatchup(ctx context.Context, m h2h.Matchup) error {
	row := toMatchupRow(m)
	return t.db.WithContext(ctx).Save(&row).Error
}

// BestEffort wraps fn in a savepoint and rolls back to it on failure, leaving
// the surrounding transaction intact.
func (t *sqlTx) BestEffort(ctx context.Context, fn func(Tx) error) error {
	t.savepoints++
	name := fmt.Sprintf("best_effort_%d", t.savepoints)
	if err := t.db.WithContext(ctx).SavePoint(name).Error; err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(t); err != nil {
		if rbErr := t.db.WithContext(ctx).RollbackTo(name).Error; rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	return nil
}
