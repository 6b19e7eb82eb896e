package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// WorkoutGroup is a row of workout_groups.
type WorkoutGroup struct {
	ID    int64
	Name  string
	Notes string
}

// Exercise is a row of exercises.
type Exercise struct {
	ID             int64
	WorkoutGroupID int64
	Name           string
	Notes          string
}

// Day is a row of days.
type Day struct {
	ID       int64
	DayName  string
	DayOrder int32
	Notes    string
}

// DayWorkoutGroup is a row of day_workout_groups.
type DayWorkoutGroup struct {
	ID             int64
	DayID          int64
	WorkoutGroupID int64
}

// WorkoutSet is a row of workout_sets.
type WorkoutSet struct {
	ID            int64
	DayID         int64
	ExerciseID    int64
	ExerciseOrder int32
	SetOrder      int32
	Reps          pgtype.Int4
	Weight        pgtype.Float8
	Rir           pgtype.Int4
	Notes         string
}

// ----------------------------------------------------------------------------
// workout_groups
// ----------------------------------------------------------------------------

const createWorkoutGroup = `-- name: CreateWorkoutGroup :one
INSERT INTO workout_groups (name, notes) VALUES ($1, $2)
RETURNING id, name, notes
`

func (q *Queries) CreateWorkoutGroup(ctx context.Context, name, notes string) (WorkoutGroup, error) {
	var i WorkoutGroup
	err := q.db.QueryRow(ctx, createWorkoutGroup, name, notes).Scan(&i.ID, &i.Name, &i.Notes)
	return i, err
}

const insertWorkoutGroup = `-- name: InsertWorkoutGroup :exec
INSERT INTO workout_groups (id, name, notes) VALUES ($1, $2, $3)
`

func (q *Queries) InsertWorkoutGroup(ctx context.Context, arg WorkoutGroup) error {
	_, err := q.db.Exec(ctx, insertWorkoutGroup, arg.ID, arg.Name, arg.Notes)
	return err
}

const getWorkoutGroup = `-- name: GetWorkoutGroup :one
SELECT id, name, notes FROM workout_groups WHERE id = $1
`

func (q *Queries) GetWorkoutGroup(ctx context.Context, id int64) (WorkoutGroup, error) {
	var i WorkoutGroup
	err := q.db.QueryRow(ctx, getWorkoutGroup, id).Scan(&i.ID, &i.Name, &i.Notes)
	return i, err
}

const listWorkoutGroups = `-- name: ListWorkoutGroups :many
SELECT id, name, notes FROM workout_groups ORDER BY id
`

func (q *Queries) ListWorkoutGroups(ctx context.Context) ([]WorkoutGroup, error) {
	rows, err := q.db.Query(ctx, listWorkoutGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WorkoutGroup
	for rows.Next() {
		var i WorkoutGroup
		if err := rows.Scan(&i.ID, &i.Name, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateWorkoutGroup = `-- name: UpdateWorkoutGroup :execrows
UPDATE workout_groups SET name = $2, notes = $3 WHERE id = $1
`

func (q *Queries) UpdateWorkoutGroup(ctx context.Context, arg WorkoutGroup) (int64, error) {
	result, err := q.db.Exec(ctx, updateWorkoutGroup, arg.ID, arg.Name, arg.Notes)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteWorkoutGroup = `-- name: DeleteWorkoutGroup :execrows
DELETE FROM workout_groups WHERE id = $1
`

func (q *Queries) DeleteWorkoutGroup(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWorkoutGroup, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ----------------------------------------------------------------------------
// exercises
// ----------------------------------------------------------------------------

const createExercise = `-- name: CreateExercise :one
INSERT INTO exercises (workout_group_id, name, notes) VALUES ($1, $2, $3)
RETURNING id, workout_group_id, name, notes
`

func (q *Queries) CreateExercise(ctx context.Context, workoutGroupID int64, name, notes string) (Exercise, error) {
	var i Exercise
	err := q.db.QueryRow(ctx, createExercise, workoutGroupID, name, notes).
		Scan(&i.ID, &i.WorkoutGroupID, &i.Name, &i.Notes)
	return i, err
}

const insertExercise = `-- name: InsertExercise :exec
INSERT INTO exercises (id, workout_group_id, name, notes) VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertExercise(ctx context.Context, arg Exercise) error {
	_, err := q.db.Exec(ctx, insertExercise, arg.ID, arg.WorkoutGroupID, arg.Name, arg.Notes)
	return err
}

const getExercise = `-- name: GetExercise :one
SELECT id, workout_group_id, name, notes FROM exercises WHERE id = $1
`

func (q *Queries) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	var i Exercise
	err := q.db.QueryRow(ctx, getExercise, id).Scan(&i.ID, &i.WorkoutGroupID, &i.Name, &i.Notes)
	return i, err
}

const listExercises = `-- name: ListExercises :many
SELECT id, workout_group_id, name, notes FROM exercises ORDER BY id
`

func (q *Queries) ListExercises(ctx context.Context) ([]Exercise, error) {
	rows, err := q.db.Query(ctx, listExercises)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Exercise
	for rows.Next() {
		var i Exercise
		if err := rows.Scan(&i.ID, &i.WorkoutGroupID, &i.Name, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateExercise = `-- name: UpdateExercise :execrows
UPDATE exercises SET workout_group_id = $2, name = $3, notes = $4 WHERE id = $1
`

func (q *Queries) UpdateExercise(ctx context.Context, arg Exercise) (int64, error) {
	result, err := q.db.Exec(ctx, updateExercise, arg.ID, arg.WorkoutGroupID, arg.Name, arg.Notes)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteExercise = `-- name: DeleteExercise :execrows
DELETE FROM exercises WHERE id = $1
`

func (q *Queries) DeleteExercise(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExercise, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ----------------------------------------------------------------------------
// days
// ----------------------------------------------------------------------------

const createDay = `-- name: CreateDay :one
INSERT INTO days (day_name, day_order, notes) VALUES ($1, $2, $3)
RETURNING id, day_name, day_order, notes
`

func (q *Queries) CreateDay(ctx context.Context, dayName string, dayOrder int32, notes string) (Day, error) {
	var i Day
	err := q.db.QueryRow(ctx, createDay, dayName, dayOrder, notes).
		Scan(&i.ID, &i.DayName, &i.DayOrder, &i.Notes)
	return i, err
}

const insertDay = `-- name: InsertDay :exec
INSERT INTO days (id, day_name, day_order, notes) VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertDay(ctx context.Context, arg Day) error {
	_, err := q.db.Exec(ctx, insertDay, arg.ID, arg.DayName, arg.DayOrder, arg.Notes)
	return err
}

const getDay = `-- name: GetDay :one
SELECT id, day_name, day_order, notes FROM days WHERE id = $1
`

func (q *Queries) GetDay(ctx context.Context, id int64) (Day, error) {
	var i Day
	err := q.db.QueryRow(ctx, getDay, id).Scan(&i.ID, &i.DayName, &i.DayOrder, &i.Notes)
	return i, err
}

const listDays = `-- name: ListDays :many
SELECT id, day_name, day_order, notes FROM days ORDER BY id
`

func (q *Queries) ListDays(ctx context.Context) ([]Day, error) {
	rows, err := q.db.Query(ctx, listDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Day
	for rows.Next() {
		var i Day
		if err := rows.Scan(&i.ID, &i.DayName, &i.DayOrder, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateDay = `-- name: UpdateDay :execrows
UPDATE days SET day_name = $2, day_order = $3, notes = $4 WHERE id = $1
`

func (q *Queries) UpdateDay(ctx context.Context, arg Day) (int64, error) {
	result, err := q.db.Exec(ctx, updateDay, arg.ID, arg.DayName, arg.DayOrder, arg.Notes)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setDayOrder = `-- name: SetDayOrder :execrows
UPDATE days SET day_order = $2 WHERE id = $1
`

func (q *Queries) SetDayOrder(ctx context.Context, id int64, dayOrder int32) (int64, error) {
	result, err := q.db.Exec(ctx, setDayOrder, id, dayOrder)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countDays = `-- name: CountDays :one
SELECT count(*) FROM days
`

func (q *Queries) CountDays(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countDays).Scan(&count)
	return count, err
}

const deferDayOrder = `-- name: DeferDayOrder :exec
SET CONSTRAINTS days_day_order_key DEFERRED
`

// DeferDayOrder postpones the day_order uniqueness check to commit. It only
// has an effect inside a transaction.
func (q *Queries) DeferDayOrder(ctx context.Context) error {
	_, err := q.db.Exec(ctx, deferDayOrder)
	return err
}

const deleteDay = `-- name: DeleteDay :execrows
DELETE FROM days WHERE id = $1
`

func (q *Queries) DeleteDay(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteDay, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ----------------------------------------------------------------------------
// day_workout_groups
// ----------------------------------------------------------------------------

const createDayWorkoutGroup = `-- name: CreateDayWorkoutGroup :one
INSERT INTO day_workout_groups (day_id, workout_group_id) VALUES ($1, $2)
RETURNING id, day_id, workout_group_id
`

func (q *Queries) CreateDayWorkoutGroup(ctx context.Context, dayID, workoutGroupID int64) (DayWorkoutGroup, error) {
	var i DayWorkoutGroup
	err := q.db.QueryRow(ctx, createDayWorkoutGroup, dayID, workoutGroupID).
		Scan(&i.ID, &i.DayID, &i.WorkoutGroupID)
	return i, err
}

const insertDayWorkoutGroup = `-- name: InsertDayWorkoutGroup :exec
INSERT INTO day_workout_groups (id, day_id, workout_group_id) VALUES ($1, $2, $3)
`

func (q *Queries) InsertDayWorkoutGroup(ctx context.Context, arg DayWorkoutGroup) error {
	_, err := q.db.Exec(ctx, insertDayWorkoutGroup, arg.ID, arg.DayID, arg.WorkoutGroupID)
	return err
}

const listDayWorkoutGroups = `-- name: ListDayWorkoutGroups :many
SELECT id, day_id, workout_group_id FROM day_workout_groups ORDER BY id
`

func (q *Queries) ListDayWorkoutGroups(ctx context.Context) ([]DayWorkoutGroup, error) {
	return q.queryDayWorkoutGroups(ctx, listDayWorkoutGroups)
}

const listDayWorkoutGroupsByDay = `-- name: ListDayWorkoutGroupsByDay :many
SELECT id, day_id, workout_group_id FROM day_workout_groups WHERE day_id = $1 ORDER BY id
`

func (q *Queries) ListDayWorkoutGroupsByDay(ctx context.Context, dayID int64) ([]DayWorkoutGroup, error) {
	return q.queryDayWorkoutGroups(ctx, listDayWorkoutGroupsByDay, dayID)
}

func (q *Queries) queryDayWorkoutGroups(ctx context.Context, sql string, args ...interface{}) ([]DayWorkoutGroup, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DayWorkoutGroup
	for rows.Next() {
		var i DayWorkoutGroup
		if err := rows.Scan(&i.ID, &i.DayID, &i.WorkoutGroupID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteDayWorkoutGroup = `-- name: DeleteDayWorkoutGroup :execrows
DELETE FROM day_workout_groups WHERE id = $1
`

func (q *Queries) DeleteDayWorkoutGroup(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteDayWorkoutGroup, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ----------------------------------------------------------------------------
// workout_sets
// ----------------------------------------------------------------------------

const workoutSetColumns = `id, day_id, exercise_id, exercise_order, set_order, reps, weight, rir, notes`

const createWorkoutSet = `-- name: CreateWorkoutSet :one
INSERT INTO workout_sets (day_id, exercise_id, exercise_order, set_order, reps, weight, rir, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + workoutSetColumns

func (q *Queries) CreateWorkoutSet(ctx context.Context, arg WorkoutSet) (WorkoutSet, error) {
	row := q.db.QueryRow(ctx, createWorkoutSet,
		arg.DayID, arg.ExerciseID, arg.ExerciseOrder, arg.SetOrder,
		arg.Reps, arg.Weight, arg.Rir, arg.Notes,
	)
	var i WorkoutSet
	err := row.Scan(&i.ID, &i.DayID, &i.ExerciseID, &i.ExerciseOrder, &i.SetOrder,
		&i.Reps, &i.Weight, &i.Rir, &i.Notes)
	return i, err
}

const insertWorkoutSet = `-- name: InsertWorkoutSet :exec
INSERT INTO workout_sets (` + workoutSetColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (q *Queries) InsertWorkoutSet(ctx context.Context, arg WorkoutSet) error {
	_, err := q.db.Exec(ctx, insertWorkoutSet,
		arg.ID, arg.DayID, arg.ExerciseID, arg.ExerciseOrder, arg.SetOrder,
		arg.Reps, arg.Weight, arg.Rir, arg.Notes,
	)
	return err
}

const getWorkoutSet = `-- name: GetWorkoutSet :one
SELECT ` + workoutSetColumns + ` FROM workout_sets WHERE id = $1
`

func (q *Queries) GetWorkoutSet(ctx context.Context, id int64) (WorkoutSet, error) {
	var i WorkoutSet
	err := q.db.QueryRow(ctx, getWorkoutSet, id).Scan(&i.ID, &i.DayID, &i.ExerciseID,
		&i.ExerciseOrder, &i.SetOrder, &i.Reps, &i.Weight, &i.Rir, &i.Notes)
	return i, err
}

const listWorkoutSets = `-- name: ListWorkoutSets :many
SELECT ` + workoutSetColumns + ` FROM workout_sets ORDER BY id
`

func (q *Queries) ListWorkoutSets(ctx context.Context) ([]WorkoutSet, error) {
	return q.queryWorkoutSets(ctx, listWorkoutSets)
}

const listWorkoutSetsByDay = `-- name: ListWorkoutSetsByDay :many
SELECT ` + workoutSetColumns + ` FROM workout_sets WHERE day_id = $1
ORDER BY exercise_order, set_order, id
`

func (q *Queries) ListWorkoutSetsByDay(ctx context.Context, dayID int64) ([]WorkoutSet, error) {
	return q.queryWorkoutSets(ctx, listWorkoutSetsByDay, dayID)
}

func (q *Queries) queryWorkoutSets(ctx context.Context, sql string, args ...interface{}) ([]WorkoutSet, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WorkoutSet
	for rows.Next() {
		var i WorkoutSet
		if err := rows.Scan(&i.ID, &i.DayID, &i.ExerciseID, &i.ExerciseOrder, &i.SetOrder,
			&i.Reps, &i.Weight, &i.Rir, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateWorkoutSet = `-- name: UpdateWorkoutSet :execrows
UPDATE workout_sets
SET day_id = $2, exercise_id = $3, exercise_order = $4, set_order = $5,
    reps = $6, weight = $7, rir = $8, notes = $9
WHERE id = $1
`

func (q *Queries) UpdateWorkoutSet(ctx context.Context, arg WorkoutSet) (int64, error) {
	result, err := q.db.Exec(ctx, updateWorkoutSet,
		arg.ID, arg.DayID, arg.ExerciseID, arg.ExerciseOrder, arg.SetOrder,
		arg.Reps, arg.Weight, arg.Rir, arg.Notes,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteWorkoutSet = `-- name: DeleteWorkoutSet :execrows
DELETE FROM workout_sets WHERE id = $1
`

func (q *Queries) DeleteWorkoutSet(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWorkoutSet, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ----------------------------------------------------------------------------
// maintenance
// ----------------------------------------------------------------------------

const truncateAll = `-- name: TruncateAll :exec
TRUNCATE workout_sets, day_workout_groups, days, exercises, workout_groups RESTART IDENTITY
`

func (q *Queries) TruncateAll(ctx context.Context) error {
	_, err := q.db.Exec(ctx, truncateAll)
	return err
}

const truncateProgramData = `-- name: TruncateProgramData :exec
TRUNCATE workout_sets, day_workout_groups, days RESTART IDENTITY
`

func (q *Queries) TruncateProgramData(ctx context.Context) error {
	_, err := q.db.Exec(ctx, truncateProgramData)
	return err
}

// syncSequence statements move a table's id sequence past its largest id so
// Create never collides with a row inserted with an explicit id. The sequence
// never moves backwards.
var syncSequence = map[string]string{
	"workout_groups":     syncSequenceSQL("workout_groups"),
	"exercises":          syncSequenceSQL("exercises"),
	"days":               syncSequenceSQL("days"),
	"day_workout_groups": syncSequenceSQL("day_workout_groups"),
	"workout_sets":       syncSequenceSQL("workout_sets"),
}

func syncSequenceSQL(table string) string {
	seq := `pg_get_serial_sequence('` + table + `', 'id')`
	return `SELECT setval(` + seq + `, GREATEST(COALESCE(MAX(id), 0), COALESCE(pg_sequence_last_value(` + seq + `::regclass), 0)) + 1, false) FROM ` + table
}

func (q *Queries) SyncSequence(ctx context.Context, table string) error {
	_, err := q.db.Exec(ctx, syncSequence[table])
	return err
}
