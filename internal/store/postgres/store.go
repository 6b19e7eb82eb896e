// Package postgres is the PostgreSQL implementation of core.Repository.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/liftlog/internal/core"
)

//go:embed schema.sql
var schema string

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens a pool and verifies the database is reachable.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database",
		"database", DatabaseName(cfg.URL),
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)
	return pool, nil
}

// DatabaseName extracts the database name from a connection URL for logging.
func DatabaseName(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "unknown"
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "unknown"
	}
	return name
}

// Store is a core.Repository backed by PostgreSQL. Every method runs as its
// own statement; ReorderDays is the only multi-statement transaction.
type Store struct {
	pool *pgxpool.Pool
	q    *Queries
}

var _ core.Repository = (*Store)(nil)

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: New(pool)}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// ----------------------------------------------------------------------------
// Workout groups
// ----------------------------------------------------------------------------

func (s *Store) CreateWorkoutGroup(ctx context.Context, g core.WorkoutGroup) (core.WorkoutGroup, error) {
	row, err := s.q.CreateWorkoutGroup(ctx, g.Name, g.Notes)
	if err != nil {
		return core.WorkoutGroup{}, mapError("postgres.create_workout_group", "workout group", g.ID, err)
	}
	return toWorkoutGroup(row), nil
}

func (s *Store) InsertWorkoutGroup(ctx context.Context, g core.WorkoutGroup) error {
	const op = "postgres.insert_workout_group"
	if err := checkNewID(op, "workout group", g.ID); err != nil {
		return err
	}
	if err := s.q.InsertWorkoutGroup(ctx, WorkoutGroup{ID: g.ID, Name: g.Name, Notes: g.Notes}); err != nil {
		return mapError(op, "workout group", g.ID, err)
	}
	return s.syncSequence(ctx, op, "workout_groups")
}

func (s *Store) GetWorkoutGroup(ctx context.Context, id int64) (core.WorkoutGroup, error) {
	row, err := s.q.GetWorkoutGroup(ctx, id)
	if err != nil {
		return core.WorkoutGroup{}, mapError("postgres.get_workout_group", "workout group", id, err)
	}
	return toWorkoutGroup(row), nil
}

func (s *Store) ListWorkoutGroups(ctx context.Context) ([]core.WorkoutGroup, error) {
	rows, err := s.q.ListWorkoutGroups(ctx)
	if err != nil {
		return nil, mapError("postgres.list_workout_groups", "workout group", 0, err)
	}
	out := make([]core.WorkoutGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, toWorkoutGroup(r))
	}
	return out, nil
}

func (s *Store) UpdateWorkoutGroup(ctx context.Context, g core.WorkoutGroup) error {
	n, err := s.q.UpdateWorkoutGroup(ctx, WorkoutGroup{ID: g.ID, Name: g.Name, Notes: g.Notes})
	return affected("postgres.update_workout_group", "workout group", g.ID, n, err)
}

func (s *Store) DeleteWorkoutGroup(ctx context.Context, id int64) error {
	n, err := s.q.DeleteWorkoutGroup(ctx, id)
	return affected("postgres.delete_workout_group", "workout group", id, n, err)
}

// ----------------------------------------------------------------------------
// Exercises
// ----------------------------------------------------------------------------

func (s *Store) CreateExercise(ctx context.Context, e core.Exercise) (core.Exercise, error) {
	row, err := s.q.CreateExercise(ctx, e.WorkoutGroupID, e.Name, e.Notes)
	if err != nil {
		return core.Exercise{}, mapError("postgres.create_exercise", "exercise", e.ID, err)
	}
	return toExercise(row), nil
}

func (s *Store) InsertExercise(ctx context.Context, e core.Exercise) error {
	const op = "postgres.insert_exercise"
	if err := checkNewID(op, "exercise", e.ID); err != nil {
		return err
	}
	if err := s.q.InsertExercise(ctx, fromExercise(e)); err != nil {
		return mapError(op, "exercise", e.ID, err)
	}
	return s.syncSequence(ctx, op, "exercises")
}

func (s *Store) GetExercise(ctx context.Context, id int64) (core.Exercise, error) {
	row, err := s.q.GetExercise(ctx, id)
	if err != nil {
		return core.Exercise{}, mapError("postgres.get_exercise", "exercise", id, err)
	}
	return toExercise(row), nil
}

func (s *Store) ListExercises(ctx context.Context) ([]core.Exercise, error) {
	rows, err := s.q.ListExercises(ctx)
	if err != nil {
		return nil, mapError("postgres.list_exercises", "exercise", 0, err)
	}
	out := make([]core.Exercise, 0, len(rows))
	for _, r := range rows {
		out = append(out, toExercise(r))
	}
	return out, nil
}

func (s *Store) UpdateExercise(ctx context.Context, e core.Exercise) error {
	n, err := s.q.UpdateExercise(ctx, fromExercise(e))
	return affected("postgres.update_exercise", "exercise", e.ID, n, err)
}

func (s *Store) DeleteExercise(ctx context.Context, id int64) error {
	n, err := s.q.DeleteExercise(ctx, id)
	return affected("postgres.delete_exercise", "exercise", id, n, err)
}

// ----------------------------------------------------------------------------
// Days
// ----------------------------------------------------------------------------

func (s *Store) CreateDay(ctx context.Context, d core.Day) (core.Day, error) {
	row, err := s.q.CreateDay(ctx, d.DayName, int32(d.DayOrder), d.Notes)
	if err != nil {
		return core.Day{}, mapError("postgres.create_day", "day", d.ID, err)
	}
	return toDay(row), nil
}

func (s *Store) InsertDay(ctx context.Context, d core.Day) error {
	const op = "postgres.insert_day"
	if err := checkNewID(op, "day", d.ID); err != nil {
		return err
	}
	if err := s.q.InsertDay(ctx, fromDay(d)); err != nil {
		return mapError(op, "day", d.ID, err)
	}
	return s.syncSequence(ctx, op, "days")
}

func (s *Store) GetDay(ctx context.Context, id int64) (core.Day, error) {
	row, err := s.q.GetDay(ctx, id)
	if err != nil {
		return core.Day{}, mapError("postgres.get_day", "day", id, err)
	}
	return toDay(row), nil
}

func (s *Store) ListDays(ctx context.Context) ([]core.Day, error) {
	rows, err := s.q.ListDays(ctx)
	if err != nil {
		return nil, mapError("postgres.list_days", "day", 0, err)
	}
	out := make([]core.Day, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDay(r))
	}
	return out, nil
}

func (s *Store) UpdateDay(ctx context.Context, d core.Day) error {
	n, err := s.q.UpdateDay(ctx, fromDay(d))
	return affected("postgres.update_day", "day", d.ID, n, err)
}

func (s *Store) DeleteDay(ctx context.Context, id int64) error {
	n, err := s.q.DeleteDay(ctx, id)
	return affected("postgres.delete_day", "day", id, n, err)
}

// ReorderDays assigns day orders 1..N following ids in one transaction.
// ids must name every day exactly once.
func (s *Store) ReorderDays(ctx context.Context, ids []int64) error {
	const op = "postgres.reorder_days"

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return core.Errorf(core.KindValidation, op, "day %d listed twice", id)
		}
		seen[id] = true
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Wrap(core.KindInternal, op, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) // No-op if already committed

	txQueries := s.q.WithTx(tx)

	total, err := txQueries.CountDays(ctx)
	if err != nil {
		return mapError(op, "day", 0, err)
	}
	if total != int64(len(ids)) {
		return core.Errorf(core.KindValidation, op, "reorder lists %d days, program has %d", len(ids), total)
	}

	if err := txQueries.DeferDayOrder(ctx); err != nil {
		return mapError(op, "day", 0, err)
	}
	for i, id := range ids {
		n, err := txQueries.SetDayOrder(ctx, id, int32(i+1))
		if err := affected(op, "day", id, n, err); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(op, "day", 0, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Day workout groups
// ----------------------------------------------------------------------------

func (s *Store) CreateDayWorkoutGroup(ctx context.Context, dg core.DayWorkoutGroup) (core.DayWorkoutGroup, error) {
	row, err := s.q.CreateDayWorkoutGroup(ctx, dg.DayID, dg.WorkoutGroupID)
	if err != nil {
		return core.DayWorkoutGroup{}, mapError("postgres.create_day_workout_group", "day workout group", dg.ID, err)
	}
	return toDayWorkoutGroup(row), nil
}

func (s *Store) InsertDayWorkoutGroup(ctx context.Context, dg core.DayWorkoutGroup) error {
	const op = "postgres.insert_day_workout_group"
	if err := checkNewID(op, "day workout group", dg.ID); err != nil {
		return err
	}
	row := DayWorkoutGroup{ID: dg.ID, DayID: dg.DayID, WorkoutGroupID: dg.WorkoutGroupID}
	if err := s.q.InsertDayWorkoutGroup(ctx, row); err != nil {
		return mapError(op, "day workout group", dg.ID, err)
	}
	return s.syncSequence(ctx, op, "day_workout_groups")
}

func (s *Store) ListDayWorkoutGroups(ctx context.Context) ([]core.DayWorkoutGroup, error) {
	rows, err := s.q.ListDayWorkoutGroups(ctx)
	if err != nil {
		return nil, mapError("postgres.list_day_workout_groups", "day workout group", 0, err)
	}
	return toDayWorkoutGroups(rows), nil
}

func (s *Store) DayWorkoutGroups(ctx context.Context, dayID int64) ([]core.DayWorkoutGroup, error) {
	rows, err := s.q.ListDayWorkoutGroupsByDay(ctx, dayID)
	if err != nil {
		return nil, mapError("postgres.day_workout_groups", "day workout group", 0, err)
	}
	return toDayWorkoutGroups(rows), nil
}

func (s *Store) DeleteDayWorkoutGroup(ctx context.Context, id int64) error {
	n, err := s.q.DeleteDayWorkoutGroup(ctx, id)
	return affected("postgres.delete_day_workout_group", "day workout group", id, n, err)
}

// ----------------------------------------------------------------------------
// Workout sets
// ----------------------------------------------------------------------------

func (s *Store) CreateWorkoutSet(ctx context.Context, ws core.WorkoutSet) (core.WorkoutSet, error) {
	row, err := s.q.CreateWorkoutSet(ctx, fromWorkoutSet(ws))
	if err != nil {
		return core.WorkoutSet{}, mapError("postgres.create_workout_set", "workout set", ws.ID, err)
	}
	return toWorkoutSet(row), nil
}

func (s *Store) InsertWorkoutSet(ctx context.Context, ws core.WorkoutSet) error {
	const op = "postgres.insert_workout_set"
	if err := checkNewID(op, "workout set", ws.ID); err != nil {
		return err
	}
	if err := s.q.InsertWorkoutSet(ctx, fromWorkoutSet(ws)); err != nil {
		return mapError(op, "workout set", ws.ID, err)
	}
	return s.syncSequence(ctx, op, "workout_sets")
}

func (s *Store) GetWorkoutSet(ctx context.Context, id int64) (core.WorkoutSet, error) {
	row, err := s.q.GetWorkoutSet(ctx, id)
	if err != nil {
		return core.WorkoutSet{}, mapError("postgres.get_workout_set", "workout set", id, err)
	}
	return toWorkoutSet(row), nil
}

func (s *Store) ListWorkoutSets(ctx context.Context) ([]core.WorkoutSet, error) {
	rows, err := s.q.ListWorkoutSets(ctx)
	if err != nil {
		return nil, mapError("postgres.list_workout_sets", "workout set", 0, err)
	}
	return toWorkoutSets(rows), nil
}

func (s *Store) SetsByDay(ctx context.Context, dayID int64) ([]core.WorkoutSet, error) {
	rows, err := s.q.ListWorkoutSetsByDay(ctx, dayID)
	if err != nil {
		return nil, mapError("postgres.sets_by_day", "workout set", 0, err)
	}
	return toWorkoutSets(rows), nil
}

func (s *Store) UpdateWorkoutSet(ctx context.Context, ws core.WorkoutSet) error {
	n, err := s.q.UpdateWorkoutSet(ctx, fromWorkoutSet(ws))
	return affected("postgres.update_workout_set", "workout set", ws.ID, n, err)
}

func (s *Store) DeleteWorkoutSet(ctx context.Context, id int64) error {
	n, err := s.q.DeleteWorkoutSet(ctx, id)
	return affected("postgres.delete_workout_set", "workout set", id, n, err)
}

// ----------------------------------------------------------------------------
// Maintenance
// ----------------------------------------------------------------------------

// ClearAll truncates every table and restarts the id sequences.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.q.TruncateAll(ctx); err != nil {
		return mapError("postgres.clear_all", "", 0, err)
	}
	return nil
}

// ClearProgramData truncates days, day tags and sets.
func (s *Store) ClearProgramData(ctx context.Context) error {
	if err := s.q.TruncateProgramData(ctx); err != nil {
		return mapError("postgres.clear_program_data", "", 0, err)
	}
	return nil
}

// Persist is a no-op: statements commit as they run.
func (s *Store) Persist(ctx context.Context) error {
	return nil
}

func (s *Store) syncSequence(ctx context.Context, op, table string) error {
	if err := s.q.SyncSequence(ctx, table); err != nil {
		return core.Wrap(core.KindInternal, op, fmt.Errorf("sync %s sequence: %w", table, err))
	}
	return nil
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

// PostgreSQL error codes the store maps onto core kinds.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgNumericOutOfRange   = "22003"
)

// mapError tags a database error with the core kind that describes it.
func mapError(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Errorf(core.KindNotFound, op, "%s %d not found", entity, id)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return core.Wrap(core.KindInternal, op, err)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return &core.Error{Kind: core.KindConflict, Op: op, Message: conflictMessage(pgErr.ConstraintName, entity, id), Err: err}
	case pgForeignKeyViolation:
		return &core.Error{Kind: core.KindIntegrity, Op: op, Message: entity + " references a missing row", Err: err}
	case pgCheckViolation, pgNotNullViolation, pgNumericOutOfRange:
		return &core.Error{Kind: core.KindValidation, Op: op, Message: "invalid " + entity, Err: err}
	default:
		return core.Wrap(core.KindInternal, op, err)
	}
}

func conflictMessage(constraint, entity string, id int64) string {
	switch constraint {
	case "workout_groups_name_key":
		return "workout group name already exists"
	case "days_day_order_key":
		return "day order already in use"
	case "day_workout_groups_pair_key":
		return "day is already tagged with workout group"
	default:
		return fmt.Sprintf("%s id %d already exists", entity, id)
	}
}

// affected turns an :execrows result into NotFound when nothing matched.
func affected(op, entity string, id, n int64, err error) error {
	if err != nil {
		return mapError(op, entity, id, err)
	}
	if n == 0 {
		return core.Errorf(core.KindNotFound, op, "%s %d not found", entity, id)
	}
	return nil
}

func checkNewID(op, entity string, id int64) error {
	if id <= 0 {
		return core.Errorf(core.KindValidation, op, "%s id must be positive, got %d", entity, id)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Conversion helpers
// ----------------------------------------------------------------------------

// ToPgInt4 converts an optional int to pgtype.Int4.
func ToPgInt4(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

// FromPgInt4 converts pgtype.Int4 to an optional int.
func FromPgInt4(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

// ToPgFloat8 converts an optional float to pgtype.Float8.
func ToPgFloat8(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

// FromPgFloat8 converts pgtype.Float8 to an optional float.
func FromPgFloat8(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toWorkoutGroup(r WorkoutGroup) core.WorkoutGroup {
	return core.WorkoutGroup{ID: r.ID, Name: r.Name, Notes: r.Notes}
}

func toExercise(r Exercise) core.Exercise {
	return core.Exercise{ID: r.ID, WorkoutGroupID: r.WorkoutGroupID, Name: r.Name, Notes: r.Notes}
}

func fromExercise(e core.Exercise) Exercise {
	return Exercise{ID: e.ID, WorkoutGroupID: e.WorkoutGroupID, Name: e.Name, Notes: e.Notes}
}

func toDay(r Day) core.Day {
	return core.Day{ID: r.ID, DayName: r.DayName, DayOrder: int(r.DayOrder), Notes: r.Notes}
}

func fromDay(d core.Day) Day {
	return Day{ID: d.ID, DayName: d.DayName, DayOrder: int32(d.DayOrder), Notes: d.Notes}
}

func toDayWorkoutGroup(r DayWorkoutGroup) core.DayWorkoutGroup {
	return core.DayWorkoutGroup{ID: r.ID, DayID: r.DayID, WorkoutGroupID: r.WorkoutGroupID}
}

func toDayWorkoutGroups(rows []DayWorkoutGroup) []core.DayWorkoutGroup {
	out := make([]core.DayWorkoutGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDayWorkoutGroup(r))
	}
	return out
}

func toWorkoutSet(r WorkoutSet) core.WorkoutSet {
	return core.WorkoutSet{
		ID:            r.ID,
		DayID:         r.DayID,
		ExerciseID:    r.ExerciseID,
		ExerciseOrder: int(r.ExerciseOrder),
		SetOrder:      int(r.SetOrder),
		Reps:          FromPgInt4(r.Reps),
		Weight:        FromPgFloat8(r.Weight),
		RIR:           FromPgInt4(r.Rir),
		Notes:         r.Notes,
	}
}

func toWorkoutSets(rows []WorkoutSet) []core.WorkoutSet {
	out := make([]core.WorkoutSet, 0, len(rows))
	for _, r := range rows {
		out = append(out, toWorkoutSet(r))
	}
	return out
}

func fromWorkoutSet(s core.WorkoutSet) WorkoutSet {
	return WorkoutSet{
		ID:            s.ID,
		DayID:         s.DayID,
		ExerciseID:    s.ExerciseID,
		ExerciseOrder: int32(s.ExerciseOrder),
		SetOrder:      int32(s.SetOrder),
		Reps:          ToPgInt4(s.Reps),
		Weight:        ToPgFloat8(s.Weight),
		Rir:           ToPgInt4(s.RIR),
		Notes:         s.Notes,
	}
}
